package relay

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const signatureLength = 65

var ErrBadSignatureLength = errors.New("signature must be 65 bytes")

// Digest the sender signs off-chain:
// EIP-191 text hash over keccak256(sender ++ nonce ++ keccak256(callData)).
// The nonce is encoded as a 32 byte big-endian integer, same as the
// contract's abi.encodePacked(uint256).
func MetaTxDigest(from common.Address, nonce int64, data []byte) []byte {
	var nonceBytes [32]byte
	big.NewInt(nonce).FillBytes(nonceBytes[:])

	inner := crypto.Keccak256(from.Bytes(), nonceBytes[:], crypto.Keccak256(data))
	return accounts.TextHash(inner)
}

// Recovers the signer address from a 65 byte [R || S || V] signature.
// Wallets return V as 27/28, SigToPub expects 0/1.
func RecoverSigner(digest, signature []byte) (signer common.Address, err error) {
	if len(signature) != signatureLength {
		err = ErrBadSignatureLength
		return
	}

	sig := make([]byte, signatureLength)
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return
	}

	return crypto.PubkeyToAddress(*pub), nil
}

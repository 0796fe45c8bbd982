package relay

import (
	"crypto/ecdsa"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatureRoundtrip(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	from := crypto.PubkeyToAddress(key.PublicKey)

	data := []byte{0xde, 0xad, 0xbe, 0xef}
	digest := MetaTxDigest(from, 7, data)

	signature, err := crypto.Sign(digest, key)
	require.NoError(t, err)

	signer, err := RecoverSigner(digest, signature)
	require.NoError(t, err)
	assert.Equal(t, from, signer)
}

func TestRecoverSignerNormalizesV(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	from := crypto.PubkeyToAddress(key.PublicKey)

	digest := MetaTxDigest(from, 0, []byte{0x01})
	signature, err := crypto.Sign(digest, key)
	require.NoError(t, err)

	// Wallets add 27 to the recovery id
	signature[64] += 27

	signer, err := RecoverSigner(digest, signature)
	require.NoError(t, err)
	assert.Equal(t, from, signer)
}

func TestRecoverSignerRejectsBadLength(t *testing.T) {
	_, err := RecoverSigner(make([]byte, 32), make([]byte, 64))
	assert.ErrorIs(t, err, ErrBadSignatureLength)
}

func TestDigestBindsAllInputs(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	from := crypto.PubkeyToAddress(key.PublicKey)
	other := crypto.PubkeyToAddress(mustKey(t).PublicKey)

	data := []byte{0x01, 0x02}
	base := MetaTxDigest(from, 1, data)

	assert.NotEqual(t, base, MetaTxDigest(other, 1, data))
	assert.NotEqual(t, base, MetaTxDigest(from, 2, data))
	assert.NotEqual(t, base, MetaTxDigest(from, 1, []byte{0x01, 0x03}))
}

func TestWrongSignerIsDetected(t *testing.T) {
	key := mustKey(t)
	attacker := mustKey(t)
	from := crypto.PubkeyToAddress(key.PublicKey)

	digest := MetaTxDigest(from, 3, []byte{0x05})
	signature, err := crypto.Sign(digest, attacker)
	require.NoError(t, err)

	signer, err := RecoverSigner(digest, signature)
	require.NoError(t, err)
	assert.NotEqual(t, from, signer)
}

func mustKey(t *testing.T) *ecdsa.PrivateKey {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return key
}

package relay

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/finvo/bridge/src/utils/config"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lestrrat-go/jwx/jwa"
	"github.com/lestrrat-go/jwx/jwt"
)

// Validation rejection with the HTTP status it maps to. Messages are
// user-safe, internal detail stays in the logs.
type ValidationError struct {
	Status  int
	Message string
}

func (self *ValidationError) Error() string {
	return self.Message
}

func reject(status int, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// Validated call, ready for submission
type Call struct {
	From      common.Address
	Nonce     int64
	Data      []byte
	Signature []byte
}

// Runs the relay validation pipeline, every step fails closed:
// signature shape, session identity, rate limit, nonce equality,
// signature recovery. Nothing reaches the ledger before all five pass.
type Validator struct {
	relayerConfig *config.Relayer

	limiter *RateLimiter
	nonces  *NonceStore
}

func NewValidator(config *config.Config) (self *Validator) {
	self = new(Validator)
	self.relayerConfig = &config.Relayer
	self.limiter = NewRateLimiter(config.Relayer.RateLimitRequests, config.Relayer.RateLimitWindow)
	return
}

func (self *Validator) WithNonceStore(v *NonceStore) *Validator {
	self.nonces = v
	return self
}

func (self *Validator) Validate(ctx context.Context, authorization string, request *RelayRequest) (call *Call, vErr *ValidationError) {
	// 1. Structural check
	signature, err := hex.DecodeString(strings.TrimPrefix(request.Signature, "0x"))
	if err != nil {
		return nil, reject(http.StatusBadRequest, "signature is not valid hex")
	}
	if len(signature) != signatureLength {
		return nil, reject(http.StatusBadRequest, "signature must be %d bytes", signatureLength)
	}

	data, err := hex.DecodeString(strings.TrimPrefix(request.Request.Data, "0x"))
	if err != nil {
		return nil, reject(http.StatusBadRequest, "call data is not valid hex")
	}

	if !common.IsHexAddress(request.Request.From) {
		return nil, reject(http.StatusBadRequest, "sender is not a valid address")
	}
	from := common.HexToAddress(request.Request.From)

	if request.Request.Nonce < 0 {
		return nil, reject(http.StatusBadRequest, "nonce must not be negative")
	}

	// 2. Identity check, the session must belong to the claimed sender
	sessionAddr, vErr := self.sessionAddress(authorization)
	if vErr != nil {
		return nil, vErr
	}
	if sessionAddr != from {
		return nil, reject(http.StatusForbidden, "sender does not match the authenticated session")
	}

	// 3. Rate limit, rejected before any ledger resource is consumed
	ok, retryAfter := self.limiter.Allow(from.Hex())
	if !ok {
		return nil, reject(http.StatusTooManyRequests, "rate limit exceeded, retry in %s", retryAfter.Round(time.Second))
	}

	// 4. Nonce equality against the stored value
	stored, err := self.nonces.GetNonce(ctx, from.Hex())
	if err != nil {
		return nil, reject(http.StatusInternalServerError, "temporary error, try again")
	}
	if stored != request.Request.Nonce {
		return nil, reject(http.StatusConflict, "invalid nonce, expected %d", stored)
	}

	// 5. Signature verification
	digest := MetaTxDigest(from, request.Request.Nonce, data)
	signer, err := RecoverSigner(digest, signature)
	if err != nil || signer != from {
		return nil, reject(http.StatusUnauthorized, "signature does not match the sender")
	}

	call = &Call{
		From:      from,
		Nonce:     request.Request.Nonce,
		Data:      data,
		Signature: signature,
	}
	return
}

func (self *Validator) sessionAddress(authorization string) (addr common.Address, vErr *ValidationError) {
	if !strings.HasPrefix(authorization, "Bearer ") {
		return addr, reject(http.StatusUnauthorized, "missing session token")
	}
	raw := strings.TrimPrefix(authorization, "Bearer ")

	token, err := jwt.Parse([]byte(raw),
		jwt.WithValidate(true),
		jwt.WithVerify(jwa.HS256, []byte(self.relayerConfig.SessionJwtSecret)),
	)
	if err != nil {
		return addr, reject(http.StatusUnauthorized, "invalid session token")
	}

	claim, ok := token.Get("addr")
	if !ok {
		return addr, reject(http.StatusUnauthorized, "session token has no address claim")
	}

	claimed, ok := claim.(string)
	if !ok || !common.IsHexAddress(claimed) {
		return addr, reject(http.StatusUnauthorized, "session token has no address claim")
	}

	return common.HexToAddress(claimed), nil
}

package eth

import (
	"context"
	"errors"
	"net"
	"strings"
)

var ErrExecutionReverted = errors.New("execution reverted")

// Conditions worth retrying: provider hiccups, nonce races between
// concurrent relayer submissions and underpriced replacements.
// Everything else is surfaced immediately.
var transientMessages = []string{
	"timeout",
	"timed out",
	"connection refused",
	"connection reset",
	"broken pipe",
	"EOF",
	"too many requests",
	"502",
	"503",
	"504",
	"nonce too low",
	"replacement transaction underpriced",
	"already known",
}

func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrExecutionReverted) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := err.Error()
	for _, needle := range transientMessages {
		if strings.Contains(msg, needle) {
			return true
		}
	}

	return false
}

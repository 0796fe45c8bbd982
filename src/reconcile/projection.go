package reconcile

import (
	"time"

	"github.com/finvo/bridge/src/utils/eth"
	"github.com/finvo/bridge/src/utils/model"
)

// Projects the on-chain escrow struct onto the stored status. Pure and
// deterministic, reconciliation converges by re-running it.
//
// A raised dispute always wins, expiry only cancels escrows that are
// neither released nor disputed.
func DeriveEscrowStatus(escrow *eth.EscrowData, now time.Time) model.EscrowStatus {
	status := model.EscrowStatusPaymentPending
	switch {
	case escrow.DisputeRaised:
		status = model.EscrowStatusDisputed
	case escrow.BuyerConfirmed && escrow.SellerConfirmed:
		status = model.EscrowStatusReleased
	case escrow.BuyerConfirmed:
		status = model.EscrowStatusLocked
	}

	if escrow.ExpiresAt > 0 &&
		uint64(now.Unix()) > escrow.ExpiresAt &&
		status != model.EscrowStatusReleased &&
		status != model.EscrowStatusDisputed {
		status = model.EscrowStatusCancelled
	}

	return status
}

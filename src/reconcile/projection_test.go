package reconcile

import (
	"testing"
	"time"

	"github.com/finvo/bridge/src/utils/eth"
	"github.com/finvo/bridge/src/utils/model"

	"github.com/stretchr/testify/assert"
)

func TestDeriveEscrowStatus(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	past := uint64(now.Unix()) - 3600
	future := uint64(now.Unix()) + 3600

	cases := []struct {
		name   string
		escrow eth.EscrowData
		status model.EscrowStatus
	}{
		{
			name:   "nothing confirmed",
			escrow: eth.EscrowData{},
			status: model.EscrowStatusPaymentPending,
		},
		{
			name:   "buyer confirmed",
			escrow: eth.EscrowData{BuyerConfirmed: true},
			status: model.EscrowStatusLocked,
		},
		{
			name:   "both confirmed",
			escrow: eth.EscrowData{BuyerConfirmed: true, SellerConfirmed: true},
			status: model.EscrowStatusReleased,
		},
		{
			name:   "dispute raised",
			escrow: eth.EscrowData{DisputeRaised: true},
			status: model.EscrowStatusDisputed,
		},
		{
			name:   "dispute wins over confirmations",
			escrow: eth.EscrowData{DisputeRaised: true, BuyerConfirmed: true, SellerConfirmed: true},
			status: model.EscrowStatusDisputed,
		},
		{
			name:   "expired and unconfirmed",
			escrow: eth.EscrowData{ExpiresAt: past},
			status: model.EscrowStatusCancelled,
		},
		{
			name:   "expired with buyer confirmation",
			escrow: eth.EscrowData{ExpiresAt: past, BuyerConfirmed: true},
			status: model.EscrowStatusCancelled,
		},
		{
			name:   "expired but released",
			escrow: eth.EscrowData{ExpiresAt: past, BuyerConfirmed: true, SellerConfirmed: true},
			status: model.EscrowStatusReleased,
		},
		{
			name:   "expired but disputed",
			escrow: eth.EscrowData{ExpiresAt: past, DisputeRaised: true},
			status: model.EscrowStatusDisputed,
		},
		{
			name:   "not expired yet",
			escrow: eth.EscrowData{ExpiresAt: future},
			status: model.EscrowStatusPaymentPending,
		},
		{
			name:   "zero expiry never cancels",
			escrow: eth.EscrowData{ExpiresAt: 0, BuyerConfirmed: true},
			status: model.EscrowStatusLocked,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.status, DeriveEscrowStatus(&c.escrow, now))

			// Pure function, re-running converges to the same status
			assert.Equal(t, DeriveEscrowStatus(&c.escrow, now), DeriveEscrowStatus(&c.escrow, now))
		})
	}
}

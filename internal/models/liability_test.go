package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentStatusTransitions(t *testing.T) {
	tests := []struct {
		from    PaymentStatus
		to      PaymentStatus
		allowed bool
	}{
		{PaymentPending, PaymentApplied, true},
		{PaymentPending, PaymentSkipped, true},
		{PaymentPending, PaymentReversed, false},
		{PaymentApplied, PaymentReversed, true},
		{PaymentApplied, PaymentSkipped, false},
		{PaymentApplied, PaymentPending, false},
		{PaymentSkipped, PaymentApplied, false},
		{PaymentSkipped, PaymentPending, false},
		{PaymentReversed, PaymentApplied, false},
		{PaymentReversed, PaymentPending, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestPaymentStatusTerminal(t *testing.T) {
	assert.False(t, PaymentPending.Terminal())
	assert.False(t, PaymentApplied.Terminal())
	assert.True(t, PaymentSkipped.Terminal())
	assert.True(t, PaymentReversed.Terminal())
}

func TestPaymentActive(t *testing.T) {
	assert.True(t, LiabilityPayment{Status: PaymentPending}.Active())
	assert.True(t, LiabilityPayment{Status: PaymentApplied}.Active())
	assert.True(t, LiabilityPayment{Status: PaymentSkipped}.Active())
	assert.False(t, LiabilityPayment{Status: PaymentReversed}.Active())
}

func TestRuleHasMatchField(t *testing.T) {
	assert.False(t, LiabilityPaymentRule{}.HasMatchField())
	assert.True(t, LiabilityPaymentRule{MatchMerchant: "Auto Finance Co"}.HasMatchField())
	assert.True(t, LiabilityPaymentRule{MatchDescription: "LOAN PMT"}.HasMatchField())
	assert.True(t, LiabilityPaymentRule{MatchAccountID: "acct-1"}.HasMatchField())
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRental_CanTransition(t *testing.T) {
	tests := []struct {
		name     string
		from     RentalStatus
		isPaid   bool
		to       RentalStatus
		expected bool
	}{
		{"Approve pending", RentalStatusPending, false, RentalStatusApproved, true},
		{"Decline pending", RentalStatusPending, false, RentalStatusCancelled, true},
		{"Approve twice", RentalStatusApproved, false, RentalStatusApproved, false},
		{"Decline approved", RentalStatusApproved, false, RentalStatusCancelled, false},
		{"Activate unpaid", RentalStatusApproved, false, RentalStatusActive, false},
		{"Activate paid", RentalStatusApproved, true, RentalStatusActive, true},
		{"Activate pending", RentalStatusPending, true, RentalStatusActive, false},
		{"Complete active", RentalStatusActive, true, RentalStatusCompleted, true},
		{"Complete approved", RentalStatusApproved, true, RentalStatusCompleted, false},
		{"Back to pending", RentalStatusApproved, false, RentalStatusPending, false},
		{"Pending to pending", RentalStatusPending, false, RentalStatusPending, false},
		{"Reopen completed", RentalStatusCompleted, true, RentalStatusActive, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := &Rental{Status: tt.from, IsPaid: tt.isPaid}
			assert.Equal(t, tt.expected, rt.CanTransition(tt.to))
		})
	}
}

func TestRental_CancelledIsFinal(t *testing.T) {
	rt := &Rental{Status: RentalStatusCancelled}
	for _, to := range []RentalStatus{RentalStatusPending, RentalStatusApproved, RentalStatusActive, RentalStatusCompleted, RentalStatusCancelled} {
		assert.False(t, rt.CanTransition(to), "cancelled -> %s", to)
	}
	assert.False(t, rt.CanMarkPaid())
	assert.True(t, rt.IsTerminal())
}

func TestRental_CanMarkPaid(t *testing.T) {
	assert.True(t, (&Rental{Status: RentalStatusApproved}).CanMarkPaid())
	assert.False(t, (&Rental{Status: RentalStatusApproved, IsPaid: true}).CanMarkPaid())
	assert.False(t, (&Rental{Status: RentalStatusPending}).CanMarkPaid())
	assert.False(t, (&Rental{Status: RentalStatusActive}).CanMarkPaid())
}

func TestParseStatus(t *testing.T) {
	st, ok := ParseStatus("approved")
	assert.True(t, ok)
	assert.Equal(t, RentalStatusApproved, st)

	_, ok = ParseStatus("APPROVED")
	assert.False(t, ok)
}

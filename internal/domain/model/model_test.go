package model

import "testing"

func TestPaymentStateTransitions(t *testing.T) {
	cases := []struct {
		from    PaymentState
		to      PaymentState
		allowed bool
	}{
		{PaymentStateUnpaid, PaymentStatePendingReview, true},
		{PaymentStateUnpaid, PaymentStatePaid, true},
		{PaymentStateUnpaid, PaymentStateFailed, true},
		{PaymentStatePendingReview, PaymentStatePaid, true},
		{PaymentStatePendingReview, PaymentStateFailed, true},
		{PaymentStatePendingReview, PaymentStateUnpaid, false},
		{PaymentStatePaid, PaymentStateUnpaid, false},
		{PaymentStatePaid, PaymentStatePendingReview, false},
		{PaymentStatePaid, PaymentStateFailed, false},
		{PaymentStateFailed, PaymentStatePaid, false},
		{PaymentStateFailed, PaymentStateUnpaid, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestFulfillmentStateTransitions(t *testing.T) {
	cases := []struct {
		from    FulfillmentState
		to      FulfillmentState
		allowed bool
	}{
		{FulfillmentStateProcessing, FulfillmentStateShipped, true},
		{FulfillmentStateProcessing, FulfillmentStateDelivered, true},
		{FulfillmentStateShipped, FulfillmentStateDelivered, true},
		{FulfillmentStateShipped, FulfillmentStateProcessing, false},
		{FulfillmentStateDelivered, FulfillmentStateShipped, false},
		{FulfillmentStateDelivered, FulfillmentStateProcessing, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestPaymentEvidenceFromGateway(t *testing.T) {
	if (PaymentEvidence{ProofImage: "proof.jpg"}).FromGateway() {
		t.Fatal("proof evidence must not report gateway origin")
	}
	if !(PaymentEvidence{GatewayReference: "NGM-1"}).FromGateway() {
		t.Fatal("gateway evidence must report gateway origin")
	}
}

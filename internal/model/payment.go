package model

import "time"

// Payment records a claimant's mobile money payment for an approved claim.
type Payment struct {
	ID          int64      `json:"id"`
	ClaimID     int64      `json:"claim_id"`
	PayerID     int64      `json:"payer_id"`
	PayerPhone  string     `json:"payer_phone"`
	Amount      int64      `json:"amount"`
	Currency    string     `json:"currency"`
	Method      string     `json:"method"`
	Status      string     `json:"status"`
	ProviderRef string     `json:"provider_ref,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Payment statuses.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Payment methods.
const (
	PaymentMethodMTN    = "mtn"
	PaymentMethodAirtel = "airtel"
)

// Currency is the currency all amounts are expressed in.
const Currency = "RWF"

// DefaultPlatformFee is charged on top of the item incentive.
const DefaultPlatformFee int64 = 1000

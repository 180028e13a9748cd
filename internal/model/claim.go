package model

import "time"

// Claim is a user's assertion that an item belongs to them.
// Item display fields are copied at submission and never follow later item edits.
type Claim struct {
	ID            int64      `json:"id"`
	ItemID        *int64     `json:"item_id,omitempty"`
	ItemName      string     `json:"item_name"`
	ItemOwnerName string     `json:"item_owner_name,omitempty"`
	ItemPhotoRef  string     `json:"item_photo,omitempty"`
	ClaimantID    int64      `json:"claimant_id"`
	ClaimantName  string     `json:"claimant_name"`
	ClaimantPhone string     `json:"claimant_phone,omitempty"`
	PhotoRef      string     `json:"photo,omitempty"`
	Justification string     `json:"justification"`
	Status        string     `json:"status"`
	ReviewedBy    *int64     `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Claim statuses.
const (
	ClaimStatusPending  = "pending"
	ClaimStatusApproved = "approved"
	ClaimStatusRejected = "rejected"
)

// IsTerminal reports whether the claim has been reviewed.
func (c *Claim) IsTerminal() bool {
	return c.Status == ClaimStatusApproved || c.Status == ClaimStatusRejected
}

// CanTransition reports whether a claim may move from one status to another.
// Only pending claims move, and only to approved or rejected.
func CanTransition(from, to string) bool {
	return from == ClaimStatusPending && (to == ClaimStatusApproved || to == ClaimStatusRejected)
}

// ClaimFilter narrows a claim listing. Zero values mean "any".
type ClaimFilter struct {
	Status     string
	ClaimantID int64
	ItemID     int64
}

// ReconcileTask flags an approved claim whose item was not marked terminal.
type ReconcileTask struct {
	ID         int64      `json:"id"`
	ClaimID    int64      `json:"claim_id"`
	ItemID     int64      `json:"item_id"`
	Reason     string     `json:"reason"`
	Attempts   int        `json:"attempts"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

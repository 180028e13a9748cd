package model

import "time"

// Item is a reported lost or found object.
type Item struct {
	ID            int64      `json:"id"`
	Kind          string     `json:"kind"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Category      string     `json:"category"`
	Location      string     `json:"location"`
	EventDate     string     `json:"event_date"`
	PhotoRef      string     `json:"photo,omitempty"`
	ReporterID    int64      `json:"reporter_id"`
	ReporterName  string     `json:"reporter_name"`
	ReporterPhone string     `json:"-"` // disclosed only through the visibility gate
	Reward        *int64     `json:"reward,omitempty"`
	Commission    *int64     `json:"commission,omitempty"`
	Status        string     `json:"status"`
	Verified      bool       `json:"verified"`
	PaymentStatus string     `json:"payment_status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

// Item kinds.
const (
	ItemKindLost  = "lost"
	ItemKindFound = "found"
)

// Item statuses.
const (
	ItemStatusActive   = "active"
	ItemStatusClaimed  = "claimed"
	ItemStatusReturned = "returned"
	ItemStatusVerified = "verified"
)

// Item payment statuses.
const (
	ItemPaymentUnpaid = "unpaid"
	ItemPaymentPaid   = "paid"
)

// IsTerminal reports whether a claim has been approved against the item.
func (i *Item) IsTerminal() bool {
	switch i.Status {
	case ItemStatusClaimed, ItemStatusReturned, ItemStatusVerified:
		return true
	}
	return false
}

// Incentive returns the reward (lost) or commission (found) amount, zero if unset.
func (i *Item) Incentive() int64 {
	switch {
	case i.Kind == ItemKindLost && i.Reward != nil:
		return *i.Reward
	case i.Kind == ItemKindFound && i.Commission != nil:
		return *i.Commission
	}
	return 0
}

// TerminalStatusFor returns the status an item of the given kind takes
// once a claim against it is approved.
func TerminalStatusFor(kind string) string {
	if kind == ItemKindFound {
		return ItemStatusVerified
	}
	return ItemStatusReturned
}

// ItemDraft is the user-supplied part of an item report.
type ItemDraft struct {
	Kind         string `json:"kind" validate:"required,oneof=lost found"`
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"required,max=4000"`
	Category     string `json:"category" validate:"required,max=100"`
	Location     string `json:"location" validate:"required,max=200"`
	EventDate    string `json:"event_date" validate:"required,datetime=2006-01-02"`
	PhotoRef     string `json:"photo" validate:"omitempty,max=500"`
	ContactPhone string `json:"contact_phone" validate:"omitempty,phone"`
	Reward       *int64 `json:"reward" validate:"omitempty,gte=0"`
	Commission   *int64 `json:"commission" validate:"omitempty,gte=0"`
}

// ItemFilter narrows an item listing. Zero values mean "any".
type ItemFilter struct {
	OwnerID  int64
	Kind     string
	Category string
	Status   string
	Search   string
	Limit    int
	Offset   int
}

package model

// PlatformStats summarizes marketplace activity for administrators.
type PlatformStats struct {
	TotalItems        int     `json:"total_items"`
	LostItems         int     `json:"lost_items"`
	FoundItems        int     `json:"found_items"`
	ActiveItems       int     `json:"active_items"`
	ResolvedItems     int     `json:"resolved_items"`
	TotalClaims       int     `json:"total_claims"`
	PendingClaims     int     `json:"pending_claims"`
	ApprovedClaims    int     `json:"approved_claims"`
	RejectedClaims    int     `json:"rejected_claims"`
	CompletedPayments int     `json:"completed_payments"`
	RecoveryRate      float64 `json:"recovery_rate"`
}

// UserStats summarizes a single user's activity.
type UserStats struct {
	ReportedItems  int   `json:"reported_items"`
	ReturnedItems  int   `json:"returned_items"`
	PendingClaims  int   `json:"pending_claims"`
	ApprovedClaims int   `json:"approved_claims"`
	RejectedClaims int   `json:"rejected_claims"`
	TotalEarnings  int64 `json:"total_earnings"`
}

package domain

import "time"

// Counters are the per-(campaign, user) tallies kept by the assignment ledger.
type Counters struct {
	LeadsAssigned     int `json:"leads_assigned" db:"leads_assigned"`
	CallsMade         int `json:"calls_made" db:"calls_made"`
	MeetingsScheduled int `json:"meetings_scheduled" db:"meetings_scheduled"`
}

// CampaignAssignment links a sales user to a campaign. LeadsAssigned must
// equal the number of campaign leads owned by the user once an operation
// has committed.
type CampaignAssignment struct {
	CampaignID string `json:"campaign_id" db:"campaign_id"`
	UserID     string `json:"user_id" db:"user_id"`
	TenantID   string `json:"tenant_id" db:"tenant_id"`
	Counters

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// LedgerDrift describes one assignment whose counter disagrees with the
// actual number of leads the user owns in the campaign.
type LedgerDrift struct {
	UserID   string `json:"user_id"`
	Recorded int    `json:"recorded"`
	Actual   int    `json:"actual"`
}

package domain

import "time"

// Lead is a prospective business or contact record. A lead enters a
// campaign's pool when CampaignID is set and is owned by at most one user
// of that campaign.
type Lead struct {
	ID         string  `json:"id" db:"id"`
	TenantID   string  `json:"tenant_id" db:"tenant_id"`
	DatabaseID *string `json:"database_id,omitempty" db:"database_id"`
	CampaignID *string `json:"campaign_id,omitempty" db:"campaign_id"`
	OwnerID    *string `json:"owner_id,omitempty" db:"owner_id"`

	CompanyName string `json:"company_name" db:"company_name"`
	Email       string `json:"email" db:"email"`
	Phone       string `json:"phone" db:"phone"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsAssigned reports whether the lead has an owning user.
func (l *Lead) IsAssigned() bool {
	return l.OwnerID != nil && *l.OwnerID != ""
}

// InCampaign reports whether the lead belongs to the given campaign pool.
func (l *Lead) InCampaign(campaignID string) bool {
	return l.CampaignID != nil && *l.CampaignID == campaignID
}

// OwnedBy reports whether the lead is owned by userID.
func (l *Lead) OwnedBy(userID string) bool {
	return l.OwnerID != nil && *l.OwnerID == userID
}

// LeadIDs extracts the IDs of leads, preserving order.
func LeadIDs(leads []Lead) []string {
	ids := make([]string, len(leads))
	for i := range leads {
		ids[i] = leads[i].ID
	}
	return ids
}

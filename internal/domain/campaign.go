package domain

import (
	"time"
)

// CampaignStatus enumerates the lifecycle states of a campaign.
type CampaignStatus string

const (
	CampaignDraft  CampaignStatus = "draft"
	CampaignActive CampaignStatus = "active"
	CampaignClosed CampaignStatus = "closed"
)

// Valid reports whether s is a known status.
func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignDraft, CampaignActive, CampaignClosed:
		return true
	}
	return false
}

// CanTransition reports whether a campaign may move from s to next.
// draft -> active -> closed; draft may also be closed directly.
func (s CampaignStatus) CanTransition(next CampaignStatus) bool {
	switch s {
	case CampaignDraft:
		return next == CampaignActive || next == CampaignClosed
	case CampaignActive:
		return next == CampaignClosed
	}
	return false
}

// Campaign is a tenant-scoped outreach effort with a set of assigned sales
// users and a lead pool.
type Campaign struct {
	ID         string         `json:"id" db:"id"`
	TenantID   string         `json:"tenant_id" db:"tenant_id"`
	Name       string         `json:"name" db:"name"`
	DatabaseID *string        `json:"database_id,omitempty" db:"database_id"`
	Status     CampaignStatus `json:"status" db:"status"`

	// Assignments is populated by reads that join campaign_assignments.
	Assignments []CampaignAssignment `json:"assignments,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsTerminal returns true if the campaign is in a final state.
func (c *Campaign) IsTerminal() bool {
	return c.Status == CampaignClosed
}

// AcceptsAssignmentChanges reports whether lead ownership and assignment
// rows of the campaign may be mutated.
func (c *Campaign) AcceptsAssignmentChanges() bool {
	return c.Status.Valid() && !c.IsTerminal()
}

// UserIDs returns the assigned user IDs in assignment order.
func (c *Campaign) UserIDs() []string {
	ids := make([]string, 0, len(c.Assignments))
	for _, a := range c.Assignments {
		ids = append(ids, a.UserID)
	}
	return ids
}

// CampaignSummary is a campaign with its assignment counters summed over
// every assigned user.
type CampaignSummary struct {
	Campaign
	Users int `json:"users"`
	Counters
}

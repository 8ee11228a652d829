package campaign

import (
	"context"

	"github.com/TRINEXTA/LeadSynch-sub006/internal/domain"
)

// LeadPool is the durable collection of lead records.
type LeadPool interface {
	// FetchLeadsByDatabase returns the leads of a source database that are
	// not attached to any campaign, in a stable order (creation time, then ID).
	// Leads already in a campaign pool are neither returned nor locked.
	FetchLeadsByDatabase(ctx context.Context, databaseID, tenantID string) ([]domain.Lead, error)

	// FetchLeadsOwnedBy returns the campaign's leads owned by userID in a
	// stable order.
	FetchLeadsOwnedBy(ctx context.Context, campaignID, userID string) ([]domain.Lead, error)

	// FetchCampaignLeads returns every lead in the campaign pool.
	FetchCampaignLeads(ctx context.Context, campaignID string) ([]domain.Lead, error)

	// CountLeadsOwnedBy counts the campaign's leads owned by userID.
	CountLeadsOwnedBy(ctx context.Context, campaignID, userID string) (int, error)

	// ReassignLeadOwner attaches one lead to the campaign and sets its owner.
	// A nil userID leaves the lead unassigned.
	ReassignLeadOwner(ctx context.Context, campaignID, leadID string, userID *string) error

	// ReassignLeadOwners is the batched form of ReassignLeadOwner. It fails
	// if any lead does not exist.
	ReassignLeadOwners(ctx context.Context, campaignID string, leadIDs []string, userID *string) error

	// DetachCampaignLeads clears campaign and owner on every lead of the
	// campaign. Returns the number of leads detached.
	DetachCampaignLeads(ctx context.Context, campaignID string) (int, error)
}

// Ledger stores per-(campaign, user) assignment rows and counters.
// Counter writes on a missing row return ErrUserNotAssigned.
type Ledger interface {
	// UpsertAssignment creates the row with zeroed counters if absent.
	// Returns true if a row was created.
	UpsertAssignment(ctx context.Context, campaignID, userID, tenantID string) (bool, error)

	SetLeadsAssigned(ctx context.Context, campaignID, userID string, count int) error
	IncrementLeadsAssigned(ctx context.Context, campaignID, userID string, delta int) error
	DeleteAssignment(ctx context.Context, campaignID, userID string) error
	DeleteAssignments(ctx context.Context, campaignID string) error

	// ListAssignments returns the campaign's rows in join order.
	ListAssignments(ctx context.Context, campaignID string) ([]domain.CampaignAssignment, error)
}

// Campaigns stores campaign rows.
type Campaigns interface {
	CreateCampaign(ctx context.Context, c *domain.Campaign) error

	// GetCampaign returns ErrNotFound if the campaign doesn't exist in tenantID.
	GetCampaign(ctx context.Context, tenantID, id string) (*domain.Campaign, error)

	// LockCampaign is GetCampaign plus an exclusive row lock held until the
	// transaction ends.
	LockCampaign(ctx context.Context, tenantID, id string) (*domain.Campaign, error)

	UpdateCampaignStatus(ctx context.Context, id string, status domain.CampaignStatus) error
	DeleteCampaign(ctx context.Context, id string) error

	// ListCampaigns returns campaigns of every tenant in the given status,
	// without assignments.
	ListCampaigns(ctx context.Context, status domain.CampaignStatus) ([]domain.Campaign, error)

	// SummarizeCampaigns returns the tenant's campaigns, newest first, each
	// with its user count and summed assignment counters.
	SummarizeCampaigns(ctx context.Context, tenantID string) ([]domain.CampaignSummary, error)
}

// Users resolves sales users.
type Users interface {
	UserExists(ctx context.Context, tenantID, userID string) (bool, error)
}

// Tx is the view of the store inside one transaction.
type Tx interface {
	LeadPool
	Ledger
	Campaigns
	Users
}

// Store runs transactions. Implementations must be safe for concurrent use.
type Store interface {
	// InTx runs fn in a transaction. If fn returns an error, or ctx expires
	// before commit, every write made through tx is rolled back.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/TRINEXTA/LeadSynch-sub006/internal/domain"
	"github.com/TRINEXTA/LeadSynch-sub006/internal/service/campaign"
)

type txn struct {
	store *Store
	st    *state
}

var _ campaign.Tx = (*txn)(nil)

func (t *txn) enter(ctx context.Context, method string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.store.trip(method)
}

// ---- campaigns ----

func (t *txn) CreateCampaign(ctx context.Context, c *domain.Campaign) error {
	if err := t.enter(ctx, "CreateCampaign"); err != nil {
		return err
	}
	if _, exists := t.st.campaigns[c.ID]; exists {
		return fmt.Errorf("campaign %s already exists", c.ID)
	}
	now := t.store.now()
	c.CreatedAt, c.UpdatedAt = now, now
	stored := *c
	stored.Assignments = nil
	t.st.campaigns[c.ID] = stored
	return nil
}

func (t *txn) GetCampaign(ctx context.Context, tenantID, id string) (*domain.Campaign, error) {
	if err := t.enter(ctx, "GetCampaign"); err != nil {
		return nil, err
	}
	c, ok := t.st.campaigns[id]
	if !ok || c.TenantID != tenantID {
		return nil, campaign.ErrNotFound
	}
	return &c, nil
}

// LockCampaign needs no extra locking: transactions are already serialized.
func (t *txn) LockCampaign(ctx context.Context, tenantID, id string) (*domain.Campaign, error) {
	return t.GetCampaign(ctx, tenantID, id)
}

func (t *txn) UpdateCampaignStatus(ctx context.Context, id string, status domain.CampaignStatus) error {
	if err := t.enter(ctx, "UpdateCampaignStatus"); err != nil {
		return err
	}
	c, ok := t.st.campaigns[id]
	if !ok {
		return campaign.ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = t.store.now()
	t.st.campaigns[id] = c
	return nil
}

func (t *txn) DeleteCampaign(ctx context.Context, id string) error {
	if err := t.enter(ctx, "DeleteCampaign"); err != nil {
		return err
	}
	if _, ok := t.st.campaigns[id]; !ok {
		return campaign.ErrNotFound
	}
	delete(t.st.campaigns, id)
	return nil
}

func (t *txn) ListCampaigns(ctx context.Context, status domain.CampaignStatus) ([]domain.Campaign, error) {
	if err := t.enter(ctx, "ListCampaigns"); err != nil {
		return nil, err
	}
	var out []domain.Campaign
	for _, c := range t.st.campaigns {
		if c.Status == status {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return createdBefore(out[i], out[j]) })
	return out, nil
}

func (t *txn) SummarizeCampaigns(ctx context.Context, tenantID string) ([]domain.CampaignSummary, error) {
	if err := t.enter(ctx, "SummarizeCampaigns"); err != nil {
		return nil, err
	}
	var out []domain.CampaignSummary
	for _, c := range t.st.campaigns {
		if c.TenantID != tenantID {
			continue
		}
		s := domain.CampaignSummary{Campaign: c}
		for _, a := range t.st.assignments[c.ID] {
			s.Users++
			s.LeadsAssigned += a.LeadsAssigned
			s.CallsMade += a.CallsMade
			s.MeetingsScheduled += a.MeetingsScheduled
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func createdBefore(a, b domain.Campaign) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// ---- users ----

func (t *txn) UserExists(ctx context.Context, tenantID, userID string) (bool, error) {
	if err := t.enter(ctx, "UserExists"); err != nil {
		return false, err
	}
	return t.st.users[tenantID][userID], nil
}

// ---- lead pool ----

func (t *txn) FetchLeadsByDatabase(ctx context.Context, databaseID, tenantID string) ([]domain.Lead, error) {
	if err := t.enter(ctx, "FetchLeadsByDatabase"); err != nil {
		return nil, err
	}
	return t.filterLeads(func(l *domain.Lead) bool {
		return l.TenantID == tenantID && l.CampaignID == nil &&
			l.DatabaseID != nil && *l.DatabaseID == databaseID
	}), nil
}

func (t *txn) FetchLeadsOwnedBy(ctx context.Context, campaignID, userID string) ([]domain.Lead, error) {
	if err := t.enter(ctx, "FetchLeadsOwnedBy"); err != nil {
		return nil, err
	}
	return t.filterLeads(func(l *domain.Lead) bool {
		return l.InCampaign(campaignID) && l.OwnedBy(userID)
	}), nil
}

func (t *txn) FetchCampaignLeads(ctx context.Context, campaignID string) ([]domain.Lead, error) {
	if err := t.enter(ctx, "FetchCampaignLeads"); err != nil {
		return nil, err
	}
	return t.filterLeads(func(l *domain.Lead) bool { return l.InCampaign(campaignID) }), nil
}

func (t *txn) CountLeadsOwnedBy(ctx context.Context, campaignID, userID string) (int, error) {
	if err := t.enter(ctx, "CountLeadsOwnedBy"); err != nil {
		return 0, err
	}
	return len(t.filterLeads(func(l *domain.Lead) bool {
		return l.InCampaign(campaignID) && l.OwnedBy(userID)
	})), nil
}

func (t *txn) ReassignLeadOwner(ctx context.Context, campaignID, leadID string, userID *string) error {
	return t.ReassignLeadOwners(ctx, campaignID, []string{leadID}, userID)
}

func (t *txn) ReassignLeadOwners(ctx context.Context, campaignID string, leadIDs []string, userID *string) error {
	if err := t.enter(ctx, "ReassignLeadOwners"); err != nil {
		return err
	}
	for _, id := range leadIDs {
		if _, ok := t.st.leadIdx[id]; !ok {
			return fmt.Errorf("reassign lead %s: not found", id)
		}
	}
	cid := campaignID
	for _, id := range leadIDs {
		l := &t.st.leads[t.st.leadIdx[id]]
		l.CampaignID = &cid
		if userID == nil {
			l.OwnerID = nil
		} else {
			owner := *userID
			l.OwnerID = &owner
		}
	}
	return nil
}

func (t *txn) DetachCampaignLeads(ctx context.Context, campaignID string) (int, error) {
	if err := t.enter(ctx, "DetachCampaignLeads"); err != nil {
		return 0, err
	}
	n := 0
	for i := range t.st.leads {
		if t.st.leads[i].InCampaign(campaignID) {
			t.st.leads[i].CampaignID = nil
			t.st.leads[i].OwnerID = nil
			n++
		}
	}
	return n, nil
}

// filterLeads returns matching leads ordered by creation time, then ID.
func (t *txn) filterLeads(keep func(*domain.Lead) bool) []domain.Lead {
	var out []domain.Lead
	for i := range t.st.leads {
		if keep(&t.st.leads[i]) {
			out = append(out, t.st.leads[i])
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ---- ledger ----

func (t *txn) UpsertAssignment(ctx context.Context, campaignID, userID, tenantID string) (bool, error) {
	if err := t.enter(ctx, "UpsertAssignment"); err != nil {
		return false, err
	}
	if t.find(campaignID, userID) >= 0 {
		return false, nil
	}
	t.st.assignments[campaignID] = append(t.st.assignments[campaignID], domain.CampaignAssignment{
		CampaignID: campaignID,
		UserID:     userID,
		TenantID:   tenantID,
		CreatedAt:  t.store.now(),
	})
	return true, nil
}

func (t *txn) SetLeadsAssigned(ctx context.Context, campaignID, userID string, count int) error {
	if err := t.enter(ctx, "SetLeadsAssigned"); err != nil {
		return err
	}
	i := t.find(campaignID, userID)
	if i < 0 {
		return campaign.ErrUserNotAssigned
	}
	t.st.assignments[campaignID][i].LeadsAssigned = count
	return nil
}

func (t *txn) IncrementLeadsAssigned(ctx context.Context, campaignID, userID string, delta int) error {
	if err := t.enter(ctx, "IncrementLeadsAssigned"); err != nil {
		return err
	}
	i := t.find(campaignID, userID)
	if i < 0 {
		return campaign.ErrUserNotAssigned
	}
	t.st.assignments[campaignID][i].LeadsAssigned += delta
	return nil
}

func (t *txn) DeleteAssignment(ctx context.Context, campaignID, userID string) error {
	if err := t.enter(ctx, "DeleteAssignment"); err != nil {
		return err
	}
	i := t.find(campaignID, userID)
	if i < 0 {
		return campaign.ErrUserNotAssigned
	}
	rows := t.st.assignments[campaignID]
	t.st.assignments[campaignID] = append(rows[:i:i], rows[i+1:]...)
	return nil
}

func (t *txn) DeleteAssignments(ctx context.Context, campaignID string) error {
	if err := t.enter(ctx, "DeleteAssignments"); err != nil {
		return err
	}
	delete(t.st.assignments, campaignID)
	return nil
}

func (t *txn) ListAssignments(ctx context.Context, campaignID string) ([]domain.CampaignAssignment, error) {
	if err := t.enter(ctx, "ListAssignments"); err != nil {
		return nil, err
	}
	return append([]domain.CampaignAssignment(nil), t.st.assignments[campaignID]...), nil
}

func (t *txn) find(campaignID, userID string) int {
	for i, a := range t.st.assignments[campaignID] {
		if a.UserID == userID {
			return i
		}
	}
	return -1
}

// Package memory is an in-process implementation of the campaign store.
//
// Transactions are serialized and run against a private copy of the state;
// the copy replaces the live state only on commit, so a failed or expired
// transaction leaves no trace. Faults can be injected per method to exercise
// rollback paths.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/TRINEXTA/LeadSynch-sub006/internal/domain"
	"github.com/TRINEXTA/LeadSynch-sub006/internal/service/campaign"
)

// Store implements campaign.Store in memory.
type Store struct {
	mu    sync.Mutex
	state *state

	faultMu sync.Mutex
	faults  map[string]*fault

	now func() time.Time
}

type fault struct {
	skip int
	err  error
}

type state struct {
	campaigns   map[string]domain.Campaign
	assignments map[string][]domain.CampaignAssignment
	leads       []domain.Lead
	leadIdx     map[string]int
	users       map[string]map[string]bool
}

// New creates an empty store.
func New() *Store {
	return &Store{
		state: &state{
			campaigns:   make(map[string]domain.Campaign),
			assignments: make(map[string][]domain.CampaignAssignment),
			leadIdx:     make(map[string]int),
			users:       make(map[string]map[string]bool),
		},
		faults: make(map[string]*fault),
		now:    time.Now,
	}
}

var _ campaign.Store = (*Store)(nil)

// InTx runs fn against a copy of the state and publishes the copy only if fn
// succeeds and ctx is still live.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx campaign.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &txn{store: s, st: s.state.clone()}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.state = tx.st
	return nil
}

// FailOn makes the call to method that follows skip successful calls return
// err. The fault fires once.
func (s *Store) FailOn(method string, skip int, err error) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.faults[method] = &fault{skip: skip, err: err}
}

func (s *Store) trip(method string) error {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	f, ok := s.faults[method]
	if !ok {
		return nil
	}
	if f.skip > 0 {
		f.skip--
		return nil
	}
	delete(s.faults, method)
	return f.err
}

// AddUser registers a sales user in a tenant.
func (s *Store) AddUser(tenantID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.users[tenantID] == nil {
		s.state.users[tenantID] = make(map[string]bool)
	}
	s.state.users[tenantID][userID] = true
}

// AddLead stores a lead. A zero CreatedAt is set to the current time.
func (s *Store) AddLead(l domain.Lead) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = s.now()
	}
	if i, ok := s.state.leadIdx[l.ID]; ok {
		s.state.leads[i] = l
		return
	}
	s.state.leadIdx[l.ID] = len(s.state.leads)
	s.state.leads = append(s.state.leads, l)
}

// Lead returns a copy of a stored lead.
func (s *Store) Lead(id string) (domain.Lead, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.state.leadIdx[id]
	if !ok {
		return domain.Lead{}, false
	}
	return s.state.leads[i], true
}

// ForceLeadsAssigned overwrites a counter outside any transaction, to
// simulate drift left by older writers.
func (s *Store) ForceLeadsAssigned(campaignID, userID string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.state.assignments[campaignID]
	for i := range rows {
		if rows[i].UserID == userID {
			rows[i].LeadsAssigned = n
		}
	}
}

// ForceLeadOwner overwrites a lead owner outside any transaction.
func (s *Store) ForceLeadOwner(leadID string, userID *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.state.leadIdx[leadID]; ok {
		s.state.leads[i].OwnerID = userID
	}
}

// Snapshot is a comparable copy of the whole store.
type Snapshot struct {
	Campaigns   map[string]domain.Campaign
	Assignments map[string][]domain.CampaignAssignment
	Leads       []domain.Lead
}

// Snapshot copies the committed state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.state.clone()
	return Snapshot{Campaigns: c.campaigns, Assignments: c.assignments, Leads: c.leads}
}

func (st *state) clone() *state {
	out := &state{
		campaigns:   make(map[string]domain.Campaign, len(st.campaigns)),
		assignments: make(map[string][]domain.CampaignAssignment, len(st.assignments)),
		leads:       make([]domain.Lead, len(st.leads)),
		leadIdx:     make(map[string]int, len(st.leadIdx)),
		users:       make(map[string]map[string]bool, len(st.users)),
	}
	for k, v := range st.campaigns {
		out.campaigns[k] = v
	}
	for k, v := range st.assignments {
		out.assignments[k] = append([]domain.CampaignAssignment(nil), v...)
	}
	copy(out.leads, st.leads)
	for k, v := range st.leadIdx {
		out.leadIdx[k] = v
	}
	for tenant, set := range st.users {
		cp := make(map[string]bool, len(set))
		for u := range set {
			cp[u] = true
		}
		out.users[tenant] = cp
	}
	return out
}

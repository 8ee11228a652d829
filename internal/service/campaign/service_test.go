package campaign_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TRINEXTA/LeadSynch-sub006/internal/domain"
	"github.com/TRINEXTA/LeadSynch-sub006/internal/pkg/distlock"
	"github.com/TRINEXTA/LeadSynch-sub006/internal/repository/memory"
	"github.com/TRINEXTA/LeadSynch-sub006/internal/service/campaign"
)

const (
	testTenant = "tenant-1"
	testDB     = "db-1"
)

type fixture struct {
	svc   *campaign.Service
	store *memory.Store
	locks *distlock.Factory
}

func newFixture(t *testing.T, leads int) *fixture {
	t.Helper()
	store := memory.New()
	for i := 1; i <= 5; i++ {
		store.AddUser(testTenant, fmt.Sprintf("u%d", i))
	}
	store.AddUser("tenant-2", "outsider")
	db := testDB
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < leads; i++ {
		store.AddLead(domain.Lead{
			ID:         fmt.Sprintf("lead-%03d", i),
			TenantID:   testTenant,
			DatabaseID: &db,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		})
	}
	locks := distlock.NewFactory(nil, nil, 30*time.Second)
	svc := campaign.NewService(store, locks, campaign.Options{LockWait: 200 * time.Millisecond, LockRetry: 5 * time.Millisecond})
	return &fixture{svc: svc, store: store, locks: locks}
}

func (f *fixture) create(t *testing.T, users ...string) *domain.Campaign {
	t.Helper()
	c, err := f.svc.Create(context.Background(), testTenant, campaign.CreateInput{
		Name: "Phoning Q1", UserIDs: users, DatabaseID: testDB,
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) counters(t *testing.T, campaignID string) map[string]int {
	t.Helper()
	rows, err := f.svc.Assignments(context.Background(), testTenant, campaignID)
	require.NoError(t, err)
	out := make(map[string]int, len(rows))
	for _, a := range rows {
		out[a.UserID] = a.LeadsAssigned
	}
	return out
}

func (f *fixture) owners(t *testing.T, campaignID string) map[string][]string {
	t.Helper()
	out := map[string][]string{}
	for _, l := range f.store.Snapshot().Leads {
		if !l.InCampaign(campaignID) {
			continue
		}
		owner := ""
		if l.OwnerID != nil {
			owner = *l.OwnerID
		}
		out[owner] = append(out[owner], l.ID)
	}
	return out
}

func ids(from, to int) []string {
	var out []string
	for i := from; i < to; i++ {
		out = append(out, fmt.Sprintf("lead-%03d", i))
	}
	return out
}

func TestCreate_SplitsDatabaseAcrossUsers(t *testing.T) {
	f := newFixture(t, 10)
	c := f.create(t, "u1", "u2", "u3")

	assert.Equal(t, domain.CampaignActive, c.Status)
	require.Len(t, c.Assignments, 3)
	assert.Equal(t, map[string]int{"u1": 3, "u2": 3, "u3": 4}, f.counters(t, c.ID))

	owners := f.owners(t, c.ID)
	assert.Equal(t, ids(0, 3), owners["u1"])
	assert.Equal(t, ids(3, 6), owners["u2"])
	assert.Equal(t, ids(6, 10), owners["u3"])

	assert.NoError(t, f.svc.Verify(context.Background(), testTenant, c.ID))
}

func TestCreate_WithoutDatabase(t *testing.T) {
	f := newFixture(t, 4)
	c, err := f.svc.Create(context.Background(), testTenant, campaign.CreateInput{
		Name: "No pool", UserIDs: []string{"u1", "u2"}, Draft: true,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.CampaignDraft, c.Status)
	assert.Equal(t, map[string]int{"u1": 0, "u2": 0}, f.counters(t, c.ID))
	assert.Empty(t, f.owners(t, c.ID))
}

func TestCreate_NoUsersLeavesLeadsUnassigned(t *testing.T) {
	f := newFixture(t, 4)
	c, err := f.svc.Create(context.Background(), testTenant, campaign.CreateInput{Name: "Empty", DatabaseID: testDB})
	require.NoError(t, err)

	assert.Empty(t, c.Assignments)
	for _, l := range f.store.Snapshot().Leads {
		assert.Nil(t, l.CampaignID)
		assert.Nil(t, l.OwnerID)
	}
}

func TestCreate_SkipsLeadsAlreadyInAPool(t *testing.T) {
	f := newFixture(t, 6)
	first := f.create(t, "u1")
	assert.Equal(t, 6, f.counters(t, first.ID)["u1"])

	second := f.create(t, "u2")
	assert.Equal(t, 0, f.counters(t, second.ID)["u2"], "leads already in a campaign pool are not taken")
	assert.Len(t, f.owners(t, first.ID)["u1"], 6)
}

func TestCreate_SplitFollowsCreationOrder(t *testing.T) {
	f := newFixture(t, 0)
	db := testDB
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f.store.AddLead(domain.Lead{ID: "late", TenantID: testTenant, DatabaseID: &db, CreatedAt: base.Add(time.Hour)})
	f.store.AddLead(domain.Lead{ID: "early", TenantID: testTenant, DatabaseID: &db, CreatedAt: base})

	c := f.create(t, "u1", "u2")
	owners := f.owners(t, c.ID)
	assert.Equal(t, []string{"early"}, owners["u1"])
	assert.Equal(t, []string{"late"}, owners["u2"])
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t, 3)
	before := f.store.Snapshot()

	tests := []struct {
		name   string
		tenant string
		input  campaign.CreateInput
		want   error
	}{
		{"empty name", testTenant, campaign.CreateInput{Name: "   ", UserIDs: []string{"u1"}}, campaign.ErrValidation},
		{"missing tenant", "", campaign.CreateInput{Name: "x"}, campaign.ErrValidation},
		{"duplicate users", testTenant, campaign.CreateInput{Name: "x", UserIDs: []string{"u1", "u1"}}, campaign.ErrValidation},
		{"blank user id", testTenant, campaign.CreateInput{Name: "x", UserIDs: []string{""}}, campaign.ErrValidation},
		{"unknown user", testTenant, campaign.CreateInput{Name: "x", UserIDs: []string{"u1", "nobody"}, DatabaseID: testDB}, campaign.ErrUnknownUser},
		{"user of another tenant", testTenant, campaign.CreateInput{Name: "x", UserIDs: []string{"outsider"}}, campaign.ErrUnknownUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), tt.tenant, tt.input)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, campaign.ErrValidation)
		})
	}
	assert.Equal(t, before, f.store.Snapshot(), "rejected input must not write anything")
}

func TestCreate_AtomicOnPartialFailure(t *testing.T) {
	f := newFixture(t, 10)
	before := f.store.Snapshot()

	// The second user's counter write fails after the first user's leads
	// and counter were already written.
	f.store.FailOn("SetLeadsAssigned", 1, errors.New("connection reset"))

	_, err := f.svc.Create(context.Background(), testTenant, campaign.CreateInput{
		Name: "Doomed", UserIDs: []string{"u1", "u2", "u3"}, DatabaseID: testDB,
	})
	require.ErrorIs(t, err, campaign.ErrStorage)
	assert.Equal(t, before, f.store.Snapshot())
}

func TestAddUser_Idempotent(t *testing.T) {
	f := newFixture(t, 10)
	c := f.create(t, "u1", "u2", "u3")

	added, err := f.svc.AddUser(context.Background(), testTenant, c.ID, "u4")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = f.svc.AddUser(context.Background(), testTenant, c.ID, "u4")
	require.NoError(t, err)
	assert.False(t, added)

	added, err = f.svc.AddUser(context.Background(), testTenant, c.ID, "u1")
	require.NoError(t, err)
	assert.False(t, added)

	rows, err := f.svc.Assignments(context.Background(), testTenant, c.ID)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, map[string]int{"u1": 3, "u2": 3, "u3": 4, "u4": 0}, f.counters(t, c.ID))
}

func TestAddUser_Rejections(t *testing.T) {
	f := newFixture(t, 0)
	c := f.create(t, "u1")

	_, err := f.svc.AddUser(context.Background(), testTenant, c.ID, "nobody")
	assert.ErrorIs(t, err, campaign.ErrUnknownUser)

	_, err = f.svc.AddUser(context.Background(), testTenant, "missing", "u2")
	assert.ErrorIs(t, err, campaign.ErrNotFound)

	_, err = f.svc.AddUser(context.Background(), "tenant-2", c.ID, "outsider")
	assert.ErrorIs(t, err, campaign.ErrNotFound, "campaigns are tenant scoped")

	require.NoError(t, f.svc.Close(context.Background(), testTenant, c.ID))
	_, err = f.svc.AddUser(context.Background(), testTenant, c.ID, "u2")
	assert.ErrorIs(t, err, campaign.ErrCampaignClosed)
}

func TestRemoveUser_RedistributesInChunks(t *testing.T) {
	f := newFixture(t, 10)
	c := f.create(t, "u1", "u2", "u3")

	res, err := f.svc.RemoveUser(context.Background(), testTenant, c.ID, "u3")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"u1": 2, "u2": 2}, res.Redistributed)
	assert.Zero(t, res.Unassigned)

	assert.Equal(t, map[string]int{"u1": 5, "u2": 5}, f.counters(t, c.ID))
	owners := f.owners(t, c.ID)
	assert.Equal(t, append(ids(0, 3), ids(6, 8)...), owners["u1"])
	assert.Equal(t, append(ids(3, 6), ids(8, 10)...), owners["u2"])
	assert.NotContains(t, owners, "u3")

	assert.NoError(t, f.svc.Verify(context.Background(), testTenant, c.ID))
}

func TestRemoveUser_ChunkBoundLeavesTrailingUsersEmpty(t *testing.T) {
	f := newFixture(t, 0)
	c := f.create(t, "u1", "u2", "u3", "u4", "u5")
	db := testDB
	cid := c.ID
	owner := "u5"
	for i := 0; i < 5; i++ {
		f.store.AddLead(domain.Lead{ID: fmt.Sprintf("extra-%d", i), TenantID: testTenant, DatabaseID: &db, CampaignID: &cid, OwnerID: &owner})
	}
	f.store.ForceLeadsAssigned(c.ID, "u5", 5)

	// chunk = ceil(5/4) = 2 -> 2, 2, 1, 0
	res, err := f.svc.RemoveUser(context.Background(), testTenant, c.ID, "u5")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"u1": 2, "u2": 2, "u3": 1, "u4": 0}, res.Redistributed)
	assert.Equal(t, map[string]int{"u1": 2, "u2": 2, "u3": 1, "u4": 0}, f.counters(t, c.ID))
}

func TestRemoveUser_LastUserUnassignsLeads(t *testing.T) {
	f := newFixture(t, 4)
	c := f.create(t, "u1")

	res, err := f.svc.RemoveUser(context.Background(), testTenant, c.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, res.Unassigned)
	assert.Empty(t, res.Redistributed)

	assert.Empty(t, f.counters(t, c.ID))
	owners := f.owners(t, c.ID)
	assert.Len(t, owners[""], 4, "leads stay in the pool without an owner")
	assert.NoError(t, f.svc.Verify(context.Background(), testTenant, c.ID))
}

func TestRemoveUser_NotAssigned(t *testing.T) {
	f := newFixture(t, 2)
	c := f.create(t, "u1")

	_, err := f.svc.RemoveUser(context.Background(), testTenant, c.ID, "u2")
	assert.ErrorIs(t, err, campaign.ErrUserNotAssigned)
}

func TestRemoveUser_AtomicOnPartialFailure(t *testing.T) {
	f := newFixture(t, 10)
	c := f.create(t, "u1", "u2", "u3")
	before := f.store.Snapshot()

	// u1 receives its chunk, then u2's counter update fails.
	f.store.FailOn("IncrementLeadsAssigned", 1, errors.New("disk full"))

	_, err := f.svc.RemoveUser(context.Background(), testTenant, c.ID, "u3")
	require.ErrorIs(t, err, campaign.ErrStorage)
	assert.Equal(t, before, f.store.Snapshot(), "no lead reassigned, no assignment row deleted")
	assert.Equal(t, map[string]int{"u1": 3, "u2": 3, "u3": 4}, f.counters(t, c.ID))
}

func TestRemoveUser_FailureOnDeleteRollsBack(t *testing.T) {
	f := newFixture(t, 10)
	c := f.create(t, "u1", "u2", "u3")
	before := f.store.Snapshot()

	f.store.FailOn("DeleteAssignment", 0, context.DeadlineExceeded)

	_, err := f.svc.RemoveUser(context.Background(), testTenant, c.ID, "u3")
	require.ErrorIs(t, err, campaign.ErrStorage)
	assert.Equal(t, before, f.store.Snapshot())
}

func TestTransfer_MovesEverythingAndRecounts(t *testing.T) {
	f := newFixture(t, 10)
	c := f.create(t, "u1", "u2", "u3")

	res, err := f.svc.Transfer(context.Background(), testTenant, c.ID, "u3", "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, res.Moved)
	assert.Equal(t, 7, res.ToTotal)

	assert.Equal(t, map[string]int{"u1": 7, "u2": 3, "u3": 0}, f.counters(t, c.ID))
	assert.NotContains(t, f.owners(t, c.ID), "u3")
	assert.NoError(t, f.svc.Verify(context.Background(), testTenant, c.ID))
}

func TestTransfer_HealsTargetDrift(t *testing.T) {
	f := newFixture(t, 10)
	c := f.create(t, "u1", "u2", "u3")
	f.store.ForceLeadsAssigned(c.ID, "u2", 99)

	res, err := f.svc.Transfer(context.Background(), testTenant, c.ID, "u1", "u2")
	require.NoError(t, err)
	assert.Equal(t, 6, res.ToTotal)
	assert.Equal(t, map[string]int{"u1": 0, "u2": 6, "u3": 4}, f.counters(t, c.ID))
}

func TestTransfer_EmptySource(t *testing.T) {
	f := newFixture(t, 10)
	c := f.create(t, "u1", "u2")
	_, err := f.svc.AddUser(context.Background(), testTenant, c.ID, "u3")
	require.NoError(t, err)

	res, err := f.svc.Transfer(context.Background(), testTenant, c.ID, "u3", "u1")
	require.NoError(t, err)
	assert.Zero(t, res.Moved)
	assert.Equal(t, 5, res.ToTotal)
}

func TestTransfer_Validation(t *testing.T) {
	f := newFixture(t, 4)
	c := f.create(t, "u1", "u2")

	_, err := f.svc.Transfer(context.Background(), testTenant, c.ID, "u1", "u1")
	assert.ErrorIs(t, err, campaign.ErrValidation)

	_, err = f.svc.Transfer(context.Background(), testTenant, c.ID, "u1", "u4")
	assert.ErrorIs(t, err, campaign.ErrUserNotAssigned)

	_, err = f.svc.Transfer(context.Background(), testTenant, c.ID, "", "u2")
	assert.ErrorIs(t, err, campaign.ErrValidation)
}

func TestLedgerDriftAbortsOperation(t *testing.T) {
	f := newFixture(t, 10)
	c := f.create(t, "u1", "u2", "u3")
	f.store.ForceLeadsAssigned(c.ID, "u1", 42)
	before := f.store.Snapshot()

	_, err := f.svc.RemoveUser(context.Background(), testTenant, c.ID, "u3")
	require.ErrorIs(t, err, campaign.ErrConsistency)

	var cerr *campaign.ConsistencyError
	require.ErrorAs(t, err, &cerr)
	require.Len(t, cerr.Drift, 1)
	assert.Equal(t, domain.LedgerDrift{UserID: "u1", Recorded: 44, Actual: 5}, cerr.Drift[0])
	assert.Equal(t, before, f.store.Snapshot())
}

func TestVerifyAndReconcile(t *testing.T) {
	f := newFixture(t, 10)
	c := f.create(t, "u1", "u2", "u3")
	ghost := "ghost"
	f.store.ForceLeadsAssigned(c.ID, "u2", 1)
	f.store.ForceLeadOwner("lead-000", &ghost)

	err := f.svc.Verify(context.Background(), testTenant, c.ID)
	var cerr *campaign.ConsistencyError
	require.ErrorAs(t, err, &cerr)
	assert.ElementsMatch(t, []domain.LedgerDrift{
		{UserID: "u1", Recorded: 3, Actual: 2},
		{UserID: "u2", Recorded: 1, Actual: 3},
	}, cerr.Drift)
	assert.Equal(t, []string{"lead-000"}, cerr.DanglingLeads)

	res, err := f.svc.Reconcile(context.Background(), testTenant, c.ID)
	require.NoError(t, err)
	assert.True(t, res.Changed())
	assert.Equal(t, 1, res.Released)
	assert.Len(t, res.Corrected, 2)

	assert.NoError(t, f.svc.Verify(context.Background(), testTenant, c.ID))
	assert.Equal(t, map[string]int{"u1": 2, "u2": 3, "u3": 4}, f.counters(t, c.ID))

	res, err = f.svc.Reconcile(context.Background(), testTenant, c.ID)
	require.NoError(t, err)
	assert.False(t, res.Changed())
}

func TestLifecycle(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()
	c, err := f.svc.Create(ctx, testTenant, campaign.CreateInput{
		Name: "Draft", UserIDs: []string{"u1", "u2"}, DatabaseID: testDB, Draft: true,
	})
	require.NoError(t, err)

	_, err = f.svc.AddUser(ctx, testTenant, c.ID, "u3")
	require.NoError(t, err, "drafts accept assignment changes")

	require.NoError(t, f.svc.Activate(ctx, testTenant, c.ID))
	assert.ErrorIs(t, f.svc.Activate(ctx, testTenant, c.ID), campaign.ErrInvalidTransition)
	assert.ErrorIs(t, f.svc.Delete(ctx, testTenant, c.ID), campaign.ErrInvalidTransition)

	require.NoError(t, f.svc.Close(ctx, testTenant, c.ID))
	_, err = f.svc.Transfer(ctx, testTenant, c.ID, "u1", "u2")
	assert.ErrorIs(t, err, campaign.ErrCampaignClosed)
	_, err = f.svc.RemoveUser(ctx, testTenant, c.ID, "u1")
	assert.ErrorIs(t, err, campaign.ErrCampaignClosed)
	assert.ErrorIs(t, f.svc.Activate(ctx, testTenant, c.ID), campaign.ErrInvalidTransition)

	require.NoError(t, f.svc.Delete(ctx, testTenant, c.ID))
	_, err = f.svc.Get(ctx, testTenant, c.ID)
	assert.ErrorIs(t, err, campaign.ErrNotFound)
	for _, l := range f.store.Snapshot().Leads {
		assert.Nil(t, l.CampaignID, "leads survive deletion, detached")
		assert.Nil(t, l.OwnerID)
	}
}

func TestActiveCampaigns(t *testing.T) {
	f := newFixture(t, 0)
	a := f.create(t, "u1")
	b := f.create(t, "u2")
	require.NoError(t, f.svc.Close(context.Background(), testTenant, b.ID))

	list, err := f.svc.ActiveCampaigns(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)
}

func TestList_RollsUpCountersPerCampaign(t *testing.T) {
	f := newFixture(t, 9)
	ctx := context.Background()
	older := f.create(t, "u1", "u2", "u3")
	newer, err := f.svc.Create(ctx, testTenant, campaign.CreateInput{Name: "Empty", UserIDs: []string{"u4"}})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, "tenant-2", campaign.CreateInput{Name: "Elsewhere", UserIDs: []string{"outsider"}})
	require.NoError(t, err)

	list, err := f.svc.List(ctx, testTenant)
	require.NoError(t, err)
	require.Len(t, list, 2, "other tenants are not listed")

	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, 1, list[0].Users)
	assert.Zero(t, list[0].LeadsAssigned)

	assert.Equal(t, older.ID, list[1].ID)
	assert.Equal(t, 3, list[1].Users)
	assert.Equal(t, 9, list[1].LeadsAssigned)

	_, err = f.svc.List(ctx, "")
	assert.ErrorIs(t, err, campaign.ErrValidation)
}

func TestOwnedLeads(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	c := f.create(t, "u1", "u2", "u3")

	leads, err := f.svc.OwnedLeads(ctx, testTenant, c.ID, "u3")
	require.NoError(t, err)
	assert.Equal(t, ids(6, 10), domain.LeadIDs(leads))

	_, err = f.svc.RemoveUser(ctx, testTenant, c.ID, "u3")
	require.NoError(t, err)
	_, err = f.svc.OwnedLeads(ctx, testTenant, c.ID, "u3")
	assert.ErrorIs(t, err, campaign.ErrUserNotAssigned)

	leads, err = f.svc.OwnedLeads(ctx, testTenant, c.ID, "u1")
	require.NoError(t, err)
	assert.Len(t, leads, 5)

	_, err = f.svc.OwnedLeads(ctx, "tenant-2", c.ID, "u1")
	assert.ErrorIs(t, err, campaign.ErrNotFound)
	_, err = f.svc.OwnedLeads(ctx, testTenant, c.ID, "")
	assert.ErrorIs(t, err, campaign.ErrValidation)
}

func TestConcurrentOperationsOnSameCampaign(t *testing.T) {
	f := newFixture(t, 100)
	svc := campaign.NewService(f.store, f.locks, campaign.Options{LockWait: 5 * time.Second, LockRetry: time.Millisecond})
	c := f.create(t, "u1", "u2", "u3", "u4", "u5")
	ctx := context.Background()

	ops := []func() error{
		func() error { _, err := svc.RemoveUser(ctx, testTenant, c.ID, "u5"); return err },
		func() error { _, err := svc.RemoveUser(ctx, testTenant, c.ID, "u4"); return err },
		func() error { _, err := svc.Transfer(ctx, testTenant, c.ID, "u1", "u2"); return err },
		func() error { _, err := svc.Transfer(ctx, testTenant, c.ID, "u3", "u2"); return err },
	}
	var wg sync.WaitGroup
	errs := make([]error, len(ops))
	for i, op := range ops {
		wg.Add(1)
		go func(i int, op func() error) {
			defer wg.Done()
			errs[i] = op()
		}(i, op)
	}
	wg.Wait()
	for i, err := range errs {
		require.NoError(t, err, "op %d", i)
	}

	require.NoError(t, svc.Verify(ctx, testTenant, c.ID))
	counters := f.counters(t, c.ID)
	assert.Len(t, counters, 3)
	assert.Equal(t, 100, counters["u1"]+counters["u2"]+counters["u3"], "no lead lost or duplicated")
}

func TestLockIsPerCampaign(t *testing.T) {
	f := newFixture(t, 0)
	a := f.create(t, "u1")
	b := f.create(t, "u1")
	ctx := context.Background()

	held := f.locks.NewLock("campaign:" + a.ID)
	ok, err := held.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	defer held.Release(ctx)

	_, err = f.svc.AddUser(ctx, testTenant, b.ID, "u2")
	assert.NoError(t, err, "a busy campaign must not block another one")

	before := f.store.Snapshot()
	_, err = f.svc.AddUser(ctx, testTenant, a.ID, "u2")
	assert.ErrorIs(t, err, campaign.ErrConflict)
	assert.Equal(t, before, f.store.Snapshot())
}

func TestCancelledContextIsStorageFailure(t *testing.T) {
	f := newFixture(t, 2)
	c := f.create(t, "u1", "u2")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.svc.Transfer(ctx, testTenant, c.ID, "u1", "u2")
	assert.ErrorIs(t, err, campaign.ErrStorage)
}

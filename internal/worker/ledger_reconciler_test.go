package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TRINEXTA/LeadSynch-sub006/internal/domain"
	"github.com/TRINEXTA/LeadSynch-sub006/internal/pkg/distlock"
	"github.com/TRINEXTA/LeadSynch-sub006/internal/repository/memory"
	"github.com/TRINEXTA/LeadSynch-sub006/internal/service/campaign"
)

func newReconcilerFixture(t *testing.T) (*campaign.Service, *memory.Store, *distlock.Factory) {
	t.Helper()
	store := memory.New()
	store.AddUser("t1", "u1")
	store.AddUser("t1", "u2")
	db := "db-1"
	for i := 0; i < 6; i++ {
		store.AddLead(domain.Lead{ID: fmt.Sprintf("lead-%d", i), TenantID: "t1", DatabaseID: &db})
	}
	locks := distlock.NewFactory(nil, nil, time.Minute)
	svc := campaign.NewService(store, locks, campaign.Options{LockWait: 20 * time.Millisecond, LockRetry: 5 * time.Millisecond})
	return svc, store, locks
}

func TestLedgerReconciler_RunOnceCorrectsDrift(t *testing.T) {
	svc, store, _ := newReconcilerFixture(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "t1", campaign.CreateInput{Name: "A", UserIDs: []string{"u1", "u2"}, DatabaseID: "db-1"})
	require.NoError(t, err)
	closed, err := svc.Create(ctx, "t1", campaign.CreateInput{Name: "B", UserIDs: []string{"u1"}})
	require.NoError(t, err)
	require.NoError(t, svc.Close(ctx, "t1", closed.ID))

	store.ForceLeadsAssigned(c.ID, "u1", 0)
	ghost := "ghost"
	store.ForceLeadOwner("lead-5", &ghost)

	lr := NewLedgerReconciler(svc, time.Hour)
	pass := lr.RunOnce(ctx)
	assert.Equal(t, ReconcileStats{Campaigns: 1, CountersCorrected: 2, LeadsReleased: 1}, pass)
	assert.Equal(t, pass, lr.Stats())
	assert.NoError(t, svc.Verify(ctx, "t1", c.ID))

	pass = lr.RunOnce(ctx)
	assert.Equal(t, ReconcileStats{Campaigns: 1}, pass, "second pass finds nothing to fix")
}

func TestLedgerReconciler_SkipsBusyCampaigns(t *testing.T) {
	svc, _, locks := newReconcilerFixture(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "t1", campaign.CreateInput{Name: "A", UserIDs: []string{"u1"}})
	require.NoError(t, err)

	held := locks.NewLock("campaign:" + c.ID)
	ok, err := held.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	defer held.Release(ctx)

	pass := NewLedgerReconciler(svc, time.Hour).RunOnce(ctx)
	assert.Equal(t, int64(1), pass.Skipped)
	assert.Zero(t, pass.Errors)
}

type failingLedger struct{}

func (failingLedger) ActiveCampaigns(context.Context) ([]domain.Campaign, error) {
	return nil, errors.New("database is down")
}

func (failingLedger) Reconcile(context.Context, string, string) (*campaign.ReconcileResult, error) {
	return nil, errors.New("unreachable")
}

func TestLedgerReconciler_ListFailure(t *testing.T) {
	lr := NewLedgerReconciler(failingLedger{}, 0)
	assert.Equal(t, DefaultReconcileInterval, lr.interval)

	pass := lr.RunOnce(context.Background())
	assert.Equal(t, int64(1), pass.Errors)
}

func TestLedgerReconciler_StartStop(t *testing.T) {
	svc, _, _ := newReconcilerFixture(t)
	lr := NewLedgerReconciler(svc, 10*time.Millisecond)

	require.NoError(t, lr.Start())
	assert.Error(t, lr.Start(), "double start should error")

	lr.mu.RLock()
	running := lr.running
	lr.mu.RUnlock()
	assert.True(t, running)

	time.Sleep(30 * time.Millisecond)
	lr.Stop()
	lr.Stop()

	lr.mu.RLock()
	running = lr.running
	lr.mu.RUnlock()
	assert.False(t, running)
}

package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/TRINEXTA/LeadSynch-sub006/internal/domain"
	"github.com/TRINEXTA/LeadSynch-sub006/internal/pkg/logger"
	"github.com/TRINEXTA/LeadSynch-sub006/internal/service/campaign"
)

// DefaultReconcileInterval is how often active campaigns are re-audited.
const DefaultReconcileInterval = 5 * time.Minute

// LedgerService is the part of the campaign service the reconciler drives.
type LedgerService interface {
	ActiveCampaigns(ctx context.Context) ([]domain.Campaign, error)
	Reconcile(ctx context.Context, tenantID, campaignID string) (*campaign.ReconcileResult, error)
}

// ReconcileStats summarizes reconciliation work.
type ReconcileStats struct {
	Campaigns         int64 `json:"campaigns"`
	CountersCorrected int64 `json:"counters_corrected"`
	LeadsReleased     int64 `json:"leads_released"`
	Skipped           int64 `json:"skipped"`
	Errors            int64 `json:"errors"`
}

// LedgerReconciler periodically rewrites drifted assignment counters of
// every active campaign to the authoritative recount of lead ownership.
type LedgerReconciler struct {
	svc      LedgerService
	interval time.Duration

	campaigns, corrected, released, skipped, errs int64

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.RWMutex
}

// NewLedgerReconciler creates a reconciler. A non-positive interval uses
// DefaultReconcileInterval.
func NewLedgerReconciler(svc LedgerService, interval time.Duration) *LedgerReconciler {
	if interval <= 0 {
		interval = DefaultReconcileInterval
	}
	return &LedgerReconciler{svc: svc, interval: interval}
}

// Start launches the background loop.
func (lr *LedgerReconciler) Start() error {
	lr.mu.Lock()
	if lr.running {
		lr.mu.Unlock()
		return fmt.Errorf("ledger reconciler already running")
	}
	lr.running = true
	lr.ctx, lr.cancel = context.WithCancel(context.Background())
	lr.mu.Unlock()

	logger.Info("ledger reconciler starting", "interval", lr.interval.String())

	lr.wg.Add(1)
	go lr.loop()
	return nil
}

// Stop cancels the loop and waits for an in-flight pass to finish.
func (lr *LedgerReconciler) Stop() {
	lr.mu.Lock()
	if !lr.running {
		lr.mu.Unlock()
		return
	}
	lr.running = false
	lr.mu.Unlock()

	lr.cancel()
	lr.wg.Wait()
	s := lr.Stats()
	logger.Info("ledger reconciler stopped",
		"campaigns", s.Campaigns, "counters_corrected", s.CountersCorrected, "leads_released", s.LeadsReleased)
}

func (lr *LedgerReconciler) loop() {
	defer lr.wg.Done()

	ticker := time.NewTicker(lr.interval)
	defer ticker.Stop()

	for {
		select {
		case <-lr.ctx.Done():
			return
		case <-ticker.C:
			lr.RunOnce(lr.ctx)
		}
	}
}

// RunOnce reconciles every active campaign and returns what this pass did.
// Campaigns busy with another operation are skipped until the next pass.
func (lr *LedgerReconciler) RunOnce(ctx context.Context) ReconcileStats {
	var pass ReconcileStats

	list, err := lr.svc.ActiveCampaigns(ctx)
	if err != nil {
		logger.Error("ledger reconciler: list active campaigns", "error", err)
		pass.Errors++
		lr.add(pass)
		return pass
	}

	for _, c := range list {
		if ctx.Err() != nil {
			break
		}
		pass.Campaigns++
		res, err := lr.svc.Reconcile(ctx, c.TenantID, c.ID)
		switch {
		case errors.Is(err, campaign.ErrConflict):
			pass.Skipped++
			continue
		case err != nil:
			pass.Errors++
			logger.Error("ledger reconciler: reconcile failed", "campaign_id", c.ID, "error", err)
			continue
		}
		pass.CountersCorrected += int64(len(res.Corrected))
		pass.LeadsReleased += int64(res.Released)
	}

	lr.add(pass)
	if pass.CountersCorrected > 0 || pass.LeadsReleased > 0 || pass.Errors > 0 {
		logger.Warn("ledger reconciler pass",
			"campaigns", pass.Campaigns, "counters_corrected", pass.CountersCorrected,
			"leads_released", pass.LeadsReleased, "skipped", pass.Skipped, "errors", pass.Errors)
	}
	return pass
}

func (lr *LedgerReconciler) add(s ReconcileStats) {
	atomic.AddInt64(&lr.campaigns, s.Campaigns)
	atomic.AddInt64(&lr.corrected, s.CountersCorrected)
	atomic.AddInt64(&lr.released, s.LeadsReleased)
	atomic.AddInt64(&lr.skipped, s.Skipped)
	atomic.AddInt64(&lr.errs, s.Errors)
}

// Stats returns totals since the reconciler was created.
func (lr *LedgerReconciler) Stats() ReconcileStats {
	return ReconcileStats{
		Campaigns:         atomic.LoadInt64(&lr.campaigns),
		CountersCorrected: atomic.LoadInt64(&lr.corrected),
		LeadsReleased:     atomic.LoadInt64(&lr.released),
		Skipped:           atomic.LoadInt64(&lr.skipped),
		Errors:            atomic.LoadInt64(&lr.errs),
	}
}

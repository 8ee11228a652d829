package campaign

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TRINEXTA/LeadSynch-sub006/internal/domain"
	"github.com/TRINEXTA/LeadSynch-sub006/internal/pkg/distlock"
	"github.com/TRINEXTA/LeadSynch-sub006/internal/pkg/logger"
)

const (
	DefaultTxTimeout   = 5 * time.Second
	DefaultLockWait    = 2 * time.Second
	DefaultLockRetry   = 25 * time.Millisecond
	lockReleaseTimeout = 2 * time.Second
)

// Operation names, used as metric and log labels.
const (
	OpCreate     = "create"
	OpAddUser    = "add_user"
	OpRemoveUser = "remove_user"
	OpTransfer   = "transfer"
	OpActivate   = "activate"
	OpClose      = "close"
	OpDelete     = "delete"
	OpReconcile  = "reconcile"
	OpVerify     = "verify"
)

// Locker hands out per-key exclusive locks. *distlock.Factory satisfies it.
type Locker interface {
	NewLock(key string) distlock.DistLock
}

// Options tunes the service. Zero values fall back to defaults.
type Options struct {
	// TxTimeout bounds each transaction, lock wait excluded.
	TxTimeout time.Duration
	// LockWait bounds how long an operation waits for its campaign lock
	// before failing with ErrConflict.
	LockWait  time.Duration
	LockRetry time.Duration
	// SkipLedgerCheck disables the recount performed before every commit.
	SkipLedgerCheck bool
}

func (o Options) withDefaults() Options {
	if o.TxTimeout <= 0 {
		o.TxTimeout = DefaultTxTimeout
	}
	if o.LockWait <= 0 {
		o.LockWait = DefaultLockWait
	}
	if o.LockRetry <= 0 {
		o.LockRetry = DefaultLockRetry
	}
	return o
}

// Service implements campaign lead assignment. All public methods are safe
// for concurrent use. Operations on the same campaign are serialized by a
// campaign lock; operations on different campaigns never wait on each other.
type Service struct {
	store   Store
	locks   Locker
	opts    Options
	metrics *metrics
}

// NewService creates a campaign service backed by the given store and locks.
func NewService(store Store, locks Locker, opts Options) *Service {
	return &Service{
		store:   store,
		locks:   locks,
		opts:    opts.withDefaults(),
		metrics: metricsSingleton(),
	}
}

// Get returns a campaign with its assignments.
func (s *Service) Get(ctx context.Context, tenantID, id string) (*domain.Campaign, error) {
	var out *domain.Campaign
	err := s.read(ctx, func(ctx context.Context, tx Tx) error {
		c, err := tx.GetCampaign(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if c.Assignments, err = tx.ListAssignments(ctx, id); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Assignments returns the campaign's users with their counters, in join order.
func (s *Service) Assignments(ctx context.Context, tenantID, id string) ([]domain.CampaignAssignment, error) {
	c, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return c.Assignments, nil
}

// List returns the tenant's campaigns, newest first, with per-campaign
// totals of the assignment counters.
func (s *Service) List(ctx context.Context, tenantID string) ([]domain.CampaignSummary, error) {
	if tenantID == "" {
		return nil, validationf("tenant is required")
	}
	var out []domain.CampaignSummary
	err := s.read(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		out, err = tx.SummarizeCampaigns(ctx, tenantID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// OwnedLeads returns the campaign leads owned by userID, oldest first. The
// user must be assigned to the campaign.
func (s *Service) OwnedLeads(ctx context.Context, tenantID, campaignID, userID string) ([]domain.Lead, error) {
	if campaignID == "" || userID == "" {
		return nil, validationf("campaign and user are required")
	}
	out := []domain.Lead{}
	err := s.read(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := tx.GetCampaign(ctx, tenantID, campaignID); err != nil {
			return err
		}
		if err := requireAssigned(ctx, tx, campaignID, userID); err != nil {
			return err
		}
		leads, err := tx.FetchCampaignLeads(ctx, campaignID)
		if err != nil {
			return err
		}
		for i := range leads {
			if leads[i].OwnedBy(userID) {
				out = append(out, leads[i])
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ActiveCampaigns lists active campaigns across tenants.
func (s *Service) ActiveCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	var out []domain.Campaign
	err := s.read(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		out, err = tx.ListCampaigns(ctx, domain.CampaignActive)
		return err
	})
	return out, err
}

// Activate moves a draft campaign to active.
func (s *Service) Activate(ctx context.Context, tenantID, id string) error {
	return s.transition(ctx, OpActivate, tenantID, id, domain.CampaignActive)
}

// Close moves a campaign to the terminal closed state. Lead ownership is
// left untouched.
func (s *Service) Close(ctx context.Context, tenantID, id string) error {
	return s.transition(ctx, OpClose, tenantID, id, domain.CampaignClosed)
}

func (s *Service) transition(ctx context.Context, op, tenantID, id string, next domain.CampaignStatus) (err error) {
	start := time.Now()
	defer func() { s.metrics.observe(op, start, err) }()
	return s.withCampaign(ctx, op, id, func(ctx context.Context, tx Tx) error {
		c, err := tx.LockCampaign(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if !c.Status.CanTransition(next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Status, next)
		}
		return tx.UpdateCampaignStatus(ctx, id, next)
	})
}

// Delete removes a draft or closed campaign. Its leads are detached from the
// campaign and unassigned, never deleted.
func (s *Service) Delete(ctx context.Context, tenantID, id string) (err error) {
	start := time.Now()
	defer func() { s.metrics.observe(OpDelete, start, err) }()

	var detached int
	err = s.withCampaign(ctx, OpDelete, id, func(ctx context.Context, tx Tx) error {
		c, err := tx.LockCampaign(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if c.Status == domain.CampaignActive {
			return fmt.Errorf("%w: active campaigns must be closed before deletion", ErrInvalidTransition)
		}
		if detached, err = tx.DetachCampaignLeads(ctx, id); err != nil {
			return err
		}
		if err := tx.DeleteAssignments(ctx, id); err != nil {
			return err
		}
		return tx.DeleteCampaign(ctx, id)
	})
	if err == nil {
		logger.Info("campaign deleted", "campaign_id", id, "leads_detached", detached)
	}
	return err
}

// withCampaign runs fn under the campaign lock inside one bounded transaction.
func (s *Service) withCampaign(ctx context.Context, op, campaignID string, fn func(ctx context.Context, tx Tx) error) error {
	log := logger.With("op", op, "campaign_id", campaignID)
	lock := s.locks.NewLock("campaign:" + campaignID)
	if err := s.acquire(ctx, lock); err != nil {
		if errors.Is(err, ErrConflict) {
			s.metrics.lockContention.Inc()
			log.Warn("campaign lock busy")
		}
		return err
	}
	defer func() {
		rctx, cancel := context.WithTimeout(context.Background(), lockReleaseTimeout)
		defer cancel()
		if err := lock.Release(rctx); err != nil {
			log.Error("campaign lock release failed", "error", err)
		}
	}()

	txCtx, cancel := context.WithTimeout(ctx, s.opts.TxTimeout)
	defer cancel()
	return classify(s.store.InTx(txCtx, fn))
}

func (s *Service) read(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	txCtx, cancel := context.WithTimeout(ctx, s.opts.TxTimeout)
	defer cancel()
	return classify(s.store.InTx(txCtx, fn))
}

// acquire polls lock until it is held, LockWait elapses, or ctx ends.
func (s *Service) acquire(ctx context.Context, lock distlock.DistLock) error {
	deadline := time.NewTimer(s.opts.LockWait)
	defer deadline.Stop()
	retry := time.NewTicker(s.opts.LockRetry)
	defer retry.Stop()

	for {
		ok, err := lock.Acquire(ctx)
		if err != nil {
			return classify(fmt.Errorf("acquire campaign lock: %w", err))
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return classify(fmt.Errorf("acquire campaign lock: %w", ctx.Err()))
		case <-deadline.C:
			return fmt.Errorf("%w: campaign lock not acquired within %s", ErrConflict, s.opts.LockWait)
		case <-retry.C:
		}
	}
}

package campaign

import (
	"context"
	"time"

	"github.com/TRINEXTA/LeadSynch-sub006/internal/domain"
	"github.com/TRINEXTA/LeadSynch-sub006/internal/pkg/logger"
)

// ReconcileResult lists the corrections a reconciliation made.
type ReconcileResult struct {
	CampaignID string               `json:"campaign_id"`
	Corrected  []domain.LedgerDrift `json:"corrected"`
	// Released counts leads whose owner had no assignment row and were
	// returned to the pool unassigned.
	Released int `json:"released"`
}

// Changed reports whether anything was rewritten.
func (r *ReconcileResult) Changed() bool {
	return len(r.Corrected) > 0 || r.Released > 0
}

// Verify recounts the campaign's ledger against actual lead ownership
// without changing anything. It returns a *ConsistencyError describing every
// drift, or nil.
func (s *Service) Verify(ctx context.Context, tenantID, campaignID string) (err error) {
	start := time.Now()
	defer func() { s.metrics.observe(OpVerify, start, err) }()

	return s.read(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := tx.GetCampaign(ctx, tenantID, campaignID); err != nil {
			return err
		}
		cerr, err := audit(ctx, tx, campaignID)
		if err != nil {
			return err
		}
		if cerr != nil {
			s.metrics.violations.WithLabelValues(OpVerify).Inc()
			logger.Warn("ledger drift detected", "campaign_id", campaignID, "detail", cerr.Error())
			return cerr
		}
		return nil
	})
}

// Reconcile rewrites every drifted counter to the authoritative recount and
// unassigns leads owned by users that are no longer assigned.
func (s *Service) Reconcile(ctx context.Context, tenantID, campaignID string) (res *ReconcileResult, err error) {
	start := time.Now()
	defer func() { s.metrics.observe(OpReconcile, start, err) }()

	res = &ReconcileResult{CampaignID: campaignID}
	err = s.withCampaign(ctx, OpReconcile, campaignID, func(ctx context.Context, tx Tx) error {
		if _, err := tx.LockCampaign(ctx, tenantID, campaignID); err != nil {
			return err
		}
		cerr, err := audit(ctx, tx, campaignID)
		if err != nil || cerr == nil {
			return err
		}
		if len(cerr.DanglingLeads) > 0 {
			if err := tx.ReassignLeadOwners(ctx, campaignID, cerr.DanglingLeads, nil); err != nil {
				return err
			}
			res.Released = len(cerr.DanglingLeads)
		}
		for _, d := range cerr.Drift {
			if err := tx.SetLeadsAssigned(ctx, campaignID, d.UserID, d.Actual); err != nil {
				return err
			}
		}
		res.Corrected = cerr.Drift
		return nil
	})
	if err != nil {
		return nil, err
	}
	if res.Changed() {
		logger.Warn("ledger reconciled",
			"campaign_id", campaignID, "counters_corrected", len(res.Corrected), "leads_released", res.Released)
	}
	return res, nil
}

// checkLedger runs just before commit. A drift aborts the operation.
func (s *Service) checkLedger(ctx context.Context, tx Tx, op, campaignID string) error {
	if s.opts.SkipLedgerCheck {
		return nil
	}
	cerr, err := audit(ctx, tx, campaignID)
	if err != nil {
		return err
	}
	if cerr != nil {
		s.metrics.violations.WithLabelValues(op).Inc()
		logger.Error("ledger consistency violation", "op", op, "campaign_id", campaignID, "detail", cerr.Error())
		return cerr
	}
	return nil
}

// audit compares every assignment counter with the leads the user actually
// owns in the campaign, and finds leads owned by unassigned users.
func audit(ctx context.Context, tx Tx, campaignID string) (*ConsistencyError, error) {
	assignments, err := tx.ListAssignments(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	leads, err := tx.FetchCampaignLeads(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	owned := make(map[string]int)
	for i := range leads {
		if leads[i].IsAssigned() {
			owned[*leads[i].OwnerID]++
		}
	}

	cerr := &ConsistencyError{CampaignID: campaignID}
	assigned := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		assigned[a.UserID] = true
		if actual := owned[a.UserID]; actual != a.LeadsAssigned {
			cerr.Drift = append(cerr.Drift, domain.LedgerDrift{
				UserID:   a.UserID,
				Recorded: a.LeadsAssigned,
				Actual:   actual,
			})
		}
	}
	for i := range leads {
		if leads[i].IsAssigned() && !assigned[*leads[i].OwnerID] {
			cerr.DanglingLeads = append(cerr.DanglingLeads, leads[i].ID)
		}
	}

	if len(cerr.Drift) == 0 && len(cerr.DanglingLeads) == 0 {
		return nil, nil
	}
	return cerr, nil
}

package campaign

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/TRINEXTA/LeadSynch-sub006/internal/distribution"
	"github.com/TRINEXTA/LeadSynch-sub006/internal/domain"
	"github.com/TRINEXTA/LeadSynch-sub006/internal/pkg/logger"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CreateInput holds the fields for creating a new campaign.
type CreateInput struct {
	Name string `json:"name" validate:"required,max=255"`
	// UserIDs are the sales users to assign. The last one absorbs the
	// remainder of an uneven split.
	UserIDs []string `json:"user_ids" validate:"unique,dive,required"`
	// DatabaseID optionally names the lead database to distribute.
	DatabaseID string `json:"database_id" validate:"omitempty,max=128"`
	// Draft creates the campaign in draft status instead of active.
	Draft bool `json:"draft"`
}

// RemoveResult reports what happened to a removed user's leads.
type RemoveResult struct {
	CampaignID string `json:"campaign_id"`
	UserID     string `json:"user_id"`
	// Redistributed maps each remaining user to the number of leads received.
	Redistributed map[string]int `json:"redistributed"`
	// Unassigned counts leads left without an owner because no user remained.
	Unassigned int `json:"unassigned"`
}

// TransferResult reports a completed transfer.
type TransferResult struct {
	CampaignID string `json:"campaign_id"`
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
	Moved      int    `json:"moved"`
	// ToTotal is the recounted number of leads to_user now owns.
	ToTotal int `json:"to_total"`
}

// Create validates and persists a new campaign with one assignment per user.
// If a database is given, its unattached leads are split across the users.
// Either every lead and counter is written or nothing is.
func (s *Service) Create(ctx context.Context, tenantID string, input CreateInput) (c *domain.Campaign, err error) {
	start := time.Now()
	defer func() { s.metrics.observe(OpCreate, start, err) }()

	input.Name = strings.TrimSpace(input.Name)
	if tenantID == "" {
		return nil, validationf("tenant is required")
	}
	if err := validate.Struct(input); err != nil {
		return nil, validationError(err)
	}

	c = &domain.Campaign{
		ID:       uuid.New().String(),
		TenantID: tenantID,
		Name:     input.Name,
		Status:   domain.CampaignActive,
	}
	if input.Draft {
		c.Status = domain.CampaignDraft
	}
	if input.DatabaseID != "" {
		c.DatabaseID = &input.DatabaseID
	}

	var moved int
	err = s.withCampaign(ctx, OpCreate, c.ID, func(ctx context.Context, tx Tx) error {
		for _, u := range input.UserIDs {
			if err := s.requireUser(ctx, tx, tenantID, u); err != nil {
				return err
			}
		}
		if err := tx.CreateCampaign(ctx, c); err != nil {
			return err
		}
		for _, u := range input.UserIDs {
			if _, err := tx.UpsertAssignment(ctx, c.ID, u, tenantID); err != nil {
				return err
			}
		}

		if c.DatabaseID != nil {
			leads, err := tx.FetchLeadsByDatabase(ctx, *c.DatabaseID, tenantID)
			if err != nil {
				return err
			}
			plan := distribution.Split(domain.LeadIDs(leads), input.UserIDs)
			if moved, err = applyPlan(ctx, tx, c.ID, plan); err != nil {
				return err
			}
		}

		if err := s.checkLedger(ctx, tx, OpCreate, c.ID); err != nil {
			return err
		}
		assignments, err := tx.ListAssignments(ctx, c.ID)
		if err != nil {
			return err
		}
		c.Assignments = assignments
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.leadsMoved.WithLabelValues(OpCreate).Add(float64(moved))
	logger.Info("campaign created",
		"campaign_id", c.ID, "tenant_id", tenantID, "users", len(input.UserIDs), "leads_distributed", moved)
	return c, nil
}

// AddUser assigns userID to the campaign. It is idempotent: if the user is
// already assigned nothing changes and added is false. No leads move.
func (s *Service) AddUser(ctx context.Context, tenantID, campaignID, userID string) (added bool, err error) {
	start := time.Now()
	defer func() { s.metrics.observe(OpAddUser, start, err) }()

	if campaignID == "" || userID == "" {
		return false, validationf("campaign and user are required")
	}

	err = s.withCampaign(ctx, OpAddUser, campaignID, func(ctx context.Context, tx Tx) error {
		if _, err := s.lockMutable(ctx, tx, tenantID, campaignID); err != nil {
			return err
		}
		if err := s.requireUser(ctx, tx, tenantID, userID); err != nil {
			return err
		}
		var err error
		added, err = tx.UpsertAssignment(ctx, campaignID, userID, tenantID)
		return err
	})
	if err != nil {
		return false, err
	}
	if added {
		logger.Info("user added to campaign", "campaign_id", campaignID, "user_id", userID)
	}
	return added, nil
}

// RemoveUser detaches userID from the campaign and hands the user's leads to
// the remaining users in contiguous chunks. If nobody remains, the leads stay
// in the campaign pool without an owner.
func (s *Service) RemoveUser(ctx context.Context, tenantID, campaignID, userID string) (res *RemoveResult, err error) {
	start := time.Now()
	defer func() { s.metrics.observe(OpRemoveUser, start, err) }()

	if campaignID == "" || userID == "" {
		return nil, validationf("campaign and user are required")
	}

	res = &RemoveResult{CampaignID: campaignID, UserID: userID, Redistributed: map[string]int{}}
	err = s.withCampaign(ctx, OpRemoveUser, campaignID, func(ctx context.Context, tx Tx) error {
		c, err := s.lockMutable(ctx, tx, tenantID, campaignID)
		if err != nil {
			return err
		}
		if c.Assignments, err = tx.ListAssignments(ctx, campaignID); err != nil {
			return err
		}
		remaining := slices.DeleteFunc(c.UserIDs(), func(u string) bool { return u == userID })
		if len(remaining) == len(c.Assignments) {
			return fmt.Errorf("%w: %s", ErrUserNotAssigned, userID)
		}

		owned, err := tx.FetchLeadsOwnedBy(ctx, campaignID, userID)
		if err != nil {
			return err
		}
		ids := domain.LeadIDs(owned)

		plan := distribution.Redistribute(userID, ids, remaining)
		if plan.Empty() && len(ids) > 0 {
			if err := tx.ReassignLeadOwners(ctx, campaignID, ids, nil); err != nil {
				return err
			}
			res.Unassigned = len(ids)
		} else if _, err := applyPlan(ctx, tx, campaignID, plan); err != nil {
			return err
		}
		for user, n := range plan.Counts() {
			res.Redistributed[user] = n
		}

		if err := tx.DeleteAssignment(ctx, campaignID, userID); err != nil {
			return err
		}
		return s.checkLedger(ctx, tx, OpRemoveUser, campaignID)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.leadsMoved.WithLabelValues(OpRemoveUser).Add(float64(total(res.Redistributed)))
	logger.Info("user removed from campaign",
		"campaign_id", campaignID, "user_id", userID,
		"leads_redistributed", total(res.Redistributed), "leads_unassigned", res.Unassigned)
	return res, nil
}

// Transfer moves every campaign lead owned by fromUserID to toUserID. The
// source counter is zeroed and the target counter is set to a fresh recount
// of what it owns, which also heals earlier drift on the target.
func (s *Service) Transfer(ctx context.Context, tenantID, campaignID, fromUserID, toUserID string) (res *TransferResult, err error) {
	start := time.Now()
	defer func() { s.metrics.observe(OpTransfer, start, err) }()

	if campaignID == "" || fromUserID == "" || toUserID == "" {
		return nil, validationf("campaign, source and target user are required")
	}
	if fromUserID == toUserID {
		return nil, validationf("source and target user are the same")
	}

	res = &TransferResult{CampaignID: campaignID, FromUserID: fromUserID, ToUserID: toUserID}
	err = s.withCampaign(ctx, OpTransfer, campaignID, func(ctx context.Context, tx Tx) error {
		if _, err := s.lockMutable(ctx, tx, tenantID, campaignID); err != nil {
			return err
		}
		if err := requireAssigned(ctx, tx, campaignID, fromUserID, toUserID); err != nil {
			return err
		}

		owned, err := tx.FetchLeadsOwnedBy(ctx, campaignID, fromUserID)
		if err != nil {
			return err
		}
		plan := distribution.Transfer(fromUserID, toUserID, domain.LeadIDs(owned))
		for _, mv := range plan.Moves() {
			to := mv.UserID
			if err := tx.ReassignLeadOwners(ctx, campaignID, mv.Leads, &to); err != nil {
				return err
			}
		}
		res.Moved = plan.Total()

		if err := tx.SetLeadsAssigned(ctx, campaignID, fromUserID, 0); err != nil {
			return err
		}
		if res.ToTotal, err = tx.CountLeadsOwnedBy(ctx, campaignID, toUserID); err != nil {
			return err
		}
		if err := tx.SetLeadsAssigned(ctx, campaignID, toUserID, res.ToTotal); err != nil {
			return err
		}
		return s.checkLedger(ctx, tx, OpTransfer, campaignID)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.leadsMoved.WithLabelValues(OpTransfer).Add(float64(res.Moved))
	logger.Info("leads transferred",
		"campaign_id", campaignID, "from_user_id", fromUserID, "to_user_id", toUserID,
		"moved", res.Moved, "to_total", res.ToTotal)
	return res, nil
}

// applyPlan writes lead owners and ledger counters for every allocation that
// carries leads. Additive plans increment counters; others overwrite them.
func applyPlan(ctx context.Context, tx Tx, campaignID string, plan distribution.Plan[string]) (int, error) {
	moved := 0
	for _, mv := range plan.Moves() {
		owner := mv.UserID
		if err := tx.ReassignLeadOwners(ctx, campaignID, mv.Leads, &owner); err != nil {
			return 0, err
		}
		var err error
		if plan.Additive {
			err = tx.IncrementLeadsAssigned(ctx, campaignID, owner, len(mv.Leads))
		} else {
			err = tx.SetLeadsAssigned(ctx, campaignID, owner, len(mv.Leads))
		}
		if err != nil {
			return 0, err
		}
		moved += len(mv.Leads)
	}
	return moved, nil
}

func (s *Service) lockMutable(ctx context.Context, tx Tx, tenantID, campaignID string) (*domain.Campaign, error) {
	c, err := tx.LockCampaign(ctx, tenantID, campaignID)
	if err != nil {
		return nil, err
	}
	if !c.AcceptsAssignmentChanges() {
		return nil, ErrCampaignClosed
	}
	return c, nil
}

func (s *Service) requireUser(ctx context.Context, tx Tx, tenantID, userID string) error {
	ok, err := tx.UserExists(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownUser, userID)
	}
	return nil
}

func requireAssigned(ctx context.Context, tx Tx, campaignID string, userIDs ...string) error {
	assignments, err := tx.ListAssignments(ctx, campaignID)
	if err != nil {
		return err
	}
	assigned := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		assigned[a.UserID] = true
	}
	for _, u := range userIDs {
		if !assigned[u] {
			return fmt.Errorf("%w: %s", ErrUserNotAssigned, u)
		}
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return validationf("%v", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
	}
	return validationf("invalid fields: %s", strings.Join(fields, ", "))
}

func total(counts map[string]int) int {
	n := 0
	for _, v := range counts {
		n += v
	}
	return n
}

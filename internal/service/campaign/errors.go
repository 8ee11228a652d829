package campaign

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/TRINEXTA/LeadSynch-sub006/internal/domain"
)

// Failure classes. Every error returned by Service matches exactly one of
// these with errors.Is.
var (
	// ErrValidation marks rejected input. Nothing was written.
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a concurrent modification. Nothing was written; retry.
	ErrConflict = errors.New("concurrent modification")
	// ErrConsistency marks a broken ledger invariant. The operation was rolled back.
	ErrConsistency = errors.New("ledger consistency violation")
	// ErrStorage marks an unavailable store or a timed out transaction. Retry.
	ErrStorage = errors.New("storage failure")
)

// Sentinel errors for the campaign service layer.
var (
	ErrNotFound          = classed(ErrValidation, "campaign not found")
	ErrUnknownUser       = classed(ErrValidation, "user not found in tenant")
	ErrUserNotAssigned   = classed(ErrValidation, "user is not assigned to campaign")
	ErrCampaignClosed    = classed(ErrValidation, "campaign is closed")
	ErrInvalidTransition = classed(ErrValidation, "invalid status transition")
)

type classedError struct {
	msg   string
	class error
}

func classed(class error, msg string) error { return &classedError{msg: msg, class: class} }

func (e *classedError) Error() string { return e.msg }
func (e *classedError) Unwrap() error { return e.class }

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// ConsistencyError lists every way a campaign's ledger disagrees with lead
// ownership.
type ConsistencyError struct {
	CampaignID string
	Drift      []domain.LedgerDrift
	// DanglingLeads are leads owned by a user that has no assignment row.
	DanglingLeads []string
}

func (e *ConsistencyError) Error() string {
	var parts []string
	for _, d := range e.Drift {
		parts = append(parts, fmt.Sprintf("%s recorded=%d actual=%d", d.UserID, d.Recorded, d.Actual))
	}
	if n := len(e.DanglingLeads); n > 0 {
		parts = append(parts, fmt.Sprintf("%d leads owned by unassigned users", n))
	}
	return fmt.Sprintf("campaign %s: %s: %s", e.CampaignID, ErrConsistency, strings.Join(parts, "; "))
}

func (e *ConsistencyError) Unwrap() error { return ErrConsistency }

// classify makes sure err carries one of the failure classes. Errors from
// the store that are not already classified become storage failures.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict),
		errors.Is(err, ErrConsistency), errors.Is(err, ErrStorage):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: transaction timed out: %w", ErrStorage, err)
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

// resultLabel names the failure class of err for metrics.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrConsistency):
		return "consistency"
	}
	return "storage"
}

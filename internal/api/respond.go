package api

import (
	"errors"
	"net/http"

	"github.com/TRINEXTA/LeadSynch-sub006/internal/pkg/httputil"
	"github.com/TRINEXTA/LeadSynch-sub006/internal/pkg/logger"
	"github.com/TRINEXTA/LeadSynch-sub006/internal/service/campaign"
)

func writeError(w http.ResponseWriter, status int, code, message string) {
	httputil.Error(w, status, code, message)
}

// writeServiceError maps a campaign service failure onto a status code.
// Storage details never reach the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, campaign.ErrNotFound):
		writeError(w, http.StatusNotFound, "campaign_not_found", err.Error())
	case errors.Is(err, campaign.ErrUnknownUser):
		writeError(w, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, campaign.ErrUserNotAssigned):
		writeError(w, http.StatusNotFound, "user_not_assigned", err.Error())
	case errors.Is(err, campaign.ErrCampaignClosed):
		writeError(w, http.StatusUnprocessableEntity, "campaign_closed", err.Error())
	case errors.Is(err, campaign.ErrInvalidTransition):
		writeError(w, http.StatusUnprocessableEntity, "invalid_transition", err.Error())
	case errors.Is(err, campaign.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, campaign.ErrConflict):
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusConflict, "conflict", "campaign is being modified, retry")
	case errors.Is(err, campaign.ErrConsistency):
		logger.Error("request aborted by ledger check", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "consistency_violation", "assignment ledger is inconsistent; the change was rolled back")
	default:
		logger.Error("storage failure", "path", r.URL.Path, "error", err)
		w.Header().Set("Retry-After", "5")
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", "storage unavailable, retry")
	}
}

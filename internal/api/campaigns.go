package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/TRINEXTA/LeadSynch-sub006/internal/domain"
	"github.com/TRINEXTA/LeadSynch-sub006/internal/pkg/httputil"
	"github.com/TRINEXTA/LeadSynch-sub006/internal/service/campaign"
)

// CampaignHandler exposes the campaign service over HTTP.
type CampaignHandler struct {
	svc *campaign.Service
}

type addUserRequest struct {
	UserID string `json:"user_id"`
}

type transferRequest struct {
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
}

type verifyResponse struct {
	CampaignID    string               `json:"campaign_id"`
	Consistent    bool                 `json:"consistent"`
	Drift         []domain.LedgerDrift `json:"drift,omitempty"`
	DanglingLeads []string             `json:"dangling_leads,omitempty"`
}

// Create handles POST /api/campaigns
func (h *CampaignHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in campaign.CreateInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	c, err := h.svc.Create(r.Context(), tenantFrom(r), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.Created(w, c)
}

// List handles GET /api/campaigns
func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context(), tenantFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.CampaignSummary{}
	}
	httputil.OK(w, map[string]any{"campaigns": list, "total": len(list)})
}

// Get handles GET /api/campaigns/{campaignID}
func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(r.Context(), tenantFrom(r), chi.URLParam(r, "campaignID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.OK(w, c)
}

// Delete handles DELETE /api/campaigns/{campaignID}
func (h *CampaignHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), tenantFrom(r), chi.URLParam(r, "campaignID")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.NoContent(w)
}

// Activate handles POST /api/campaigns/{campaignID}/activate
func (h *CampaignHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Activate)
}

// Close handles POST /api/campaigns/{campaignID}/close
func (h *CampaignHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Close)
}

func (h *CampaignHandler) transition(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, tenantID, id string) error) {
	tenant, id := tenantFrom(r), chi.URLParam(r, "campaignID")
	if err := fn(r.Context(), tenant, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	c, err := h.svc.Get(r.Context(), tenant, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.OK(w, c)
}

// ListUsers handles GET /api/campaigns/{campaignID}/users
func (h *CampaignHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.Assignments(r.Context(), tenantFrom(r), chi.URLParam(r, "campaignID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if rows == nil {
		rows = []domain.CampaignAssignment{}
	}
	httputil.OK(w, map[string]any{"users": rows, "total": len(rows)})
}

// AddUser handles POST /api/campaigns/{campaignID}/users
// Responds 201 when the user was added and 200 when already assigned.
func (h *CampaignHandler) AddUser(w http.ResponseWriter, r *http.Request) {
	var req addUserRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "campaignID")
	added, err := h.svc.AddUser(r.Context(), tenantFrom(r), id, req.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	httputil.JSON(w, status, map[string]any{"campaign_id": id, "user_id": req.UserID, "added": added})
}

// RemoveUser handles DELETE /api/campaigns/{campaignID}/users/{userID}
func (h *CampaignHandler) RemoveUser(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.RemoveUser(r.Context(), tenantFrom(r), chi.URLParam(r, "campaignID"), chi.URLParam(r, "userID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.OK(w, res)
}

// OwnedLeads handles GET /api/campaigns/{campaignID}/users/{userID}/leads
func (h *CampaignHandler) OwnedLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := h.svc.OwnedLeads(r.Context(), tenantFrom(r), chi.URLParam(r, "campaignID"), chi.URLParam(r, "userID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.OK(w, map[string]any{"leads": leads, "total": len(leads)})
}

// Transfer handles POST /api/campaigns/{campaignID}/transfer
func (h *CampaignHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	res, err := h.svc.Transfer(r.Context(), tenantFrom(r), chi.URLParam(r, "campaignID"), req.FromUserID, req.ToUserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.OK(w, res)
}

// Verify handles GET /api/campaigns/{campaignID}/verify
// Drift is reported in the body with a 200; only failures to check are errors.
func (h *CampaignHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "campaignID")
	err := h.svc.Verify(r.Context(), tenantFrom(r), id)
	var cerr *campaign.ConsistencyError
	switch {
	case err == nil:
		httputil.OK(w, verifyResponse{CampaignID: id, Consistent: true})
	case errors.As(err, &cerr):
		httputil.OK(w, verifyResponse{
			CampaignID:    id,
			Drift:         cerr.Drift,
			DanglingLeads: cerr.DanglingLeads,
		})
	default:
		writeServiceError(w, r, err)
	}
}

// Reconcile handles POST /api/campaigns/{campaignID}/reconcile
func (h *CampaignHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Reconcile(r.Context(), tenantFrom(r), chi.URLParam(r, "campaignID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.OK(w, res)
}

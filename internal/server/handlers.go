package server

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/iwvelando/cost-estimator/internal/auth"
	"github.com/iwvelando/cost-estimator/internal/estimator"
	"github.com/iwvelando/cost-estimator/internal/leads"
	"go.uber.org/zap"
)

type estimateResponse struct {
	Destination string            `json:"destination"`
	Request     estimator.Request `json:"request"`
	Result      estimator.Result  `json:"result"`
	Shares      []estimator.Share `json:"shares"`
}

type sessionRequest struct {
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"version": h.version})
}

func (h *handler) handleDestinations(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"destinations": h.estimator.Table().Destinations(),
	})
}

func (h *handler) handleEstimate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleEstimate"

	var req estimator.Request
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	result, err := h.estimator.Estimate(req)
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}

	name := req.Destination
	if profile, ok := h.estimator.Table().Lookup(req.Destination); ok {
		name = profile.Name
	}
	h.writeJSON(w, http.StatusOK, estimateResponse{
		Destination: name,
		Request:     req,
		Result:      result,
		Shares:      result.Shares(),
	})
}

func (h *handler) handleListPlans(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleListPlans"
	principal, _ := auth.FromContext(r.Context())

	list, err := h.plans.List(r.Context(), principal.UserID)
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"plans": list})
}

func (h *handler) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCreatePlan"
	principal, _ := auth.FromContext(r.Context())

	var req estimator.Request
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	plan, err := h.plans.Create(r.Context(), principal.UserID, req)
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}
	w.Header().Set("Location", "/api/plans/"+plan.ID)
	h.writeJSON(w, http.StatusCreated, plan)
}

func (h *handler) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDeletePlan"
	principal, _ := auth.FromContext(r.Context())

	if err := h.plans.Delete(r.Context(), principal.UserID, chi.URLParam(r, "id")); err != nil {
		h.respondServiceError(w, err, op)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleSubmitLead(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSubmitLead"

	var sub leads.Submission
	if !h.decodeJSON(w, r, &sub, op) {
		return
	}

	receipt, err := h.leads.Submit(r.Context(), sub, clientIdentifier(r))
	if err != nil {
		if errors.Is(err, leads.ErrRateLimited) && h.retryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(h.retryAfter.Seconds())))
		}
		h.respondServiceError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusCreated, receipt)
}

func (h *handler) handleAdminSession(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAdminSession"

	var req sessionRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	attempt, allowed := h.registerSessionAttempt(w, r, op)
	if !allowed {
		return
	}
	if err := h.adminCred.Verify(req.Password); err != nil {
		h.respondServiceError(w, err, op)
		return
	}
	h.releaseSessionAttempt(r, attempt, op)
	if h.tokens == nil {
		h.respondServiceError(w, fmt.Errorf("no token authority configured"), op)
		return
	}

	expiresAt := time.Now().Add(h.tokenTTL).UTC().Truncate(time.Second)
	token, err := h.tokens.Issue(auth.Principal{UserID: auth.AdminUserID, Role: auth.RoleAdmin}, h.tokenTTL)
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}
	h.logger.Info("admin session issued", zap.String("op", op))
	h.writeJSON(w, http.StatusOK, sessionResponse{Token: token, ExpiresAt: expiresAt})
}

// sessionAttempt is one sign-in attempt recorded against a client.
type sessionAttempt struct {
	key string
	at  time.Time
}

// registerSessionAttempt counts a sign-in attempt for the caller. It writes
// the error response itself and reports whether the attempt may proceed.
func (h *handler) registerSessionAttempt(w http.ResponseWriter, r *http.Request, op string) (sessionAttempt, bool) {
	attempt := sessionAttempt{
		key: leads.HashIdentifier(h.identifierKey, clientIdentifier(r)),
		at:  time.Now().UTC(),
	}
	if h.sessionLimiter == nil {
		return attempt, true
	}

	allowed, err := h.sessionLimiter.Register(r.Context(), attempt.key, attempt.at)
	if err != nil {
		h.respondServiceError(w, fmt.Errorf("checking sign-in limit: %w", err), op)
		return attempt, false
	}
	if !allowed {
		if h.sessionRetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(h.sessionRetryAfter.Seconds())))
		}
		h.respondErrorWithOp(w, http.StatusTooManyRequests, "too many sign-in attempts", op)
		return attempt, false
	}
	return attempt, true
}

// releaseSessionAttempt returns the slot of a successful sign-in so only
// failed attempts count against the caller.
func (h *handler) releaseSessionAttempt(r *http.Request, attempt sessionAttempt, op string) {
	if h.sessionLimiter == nil {
		return
	}
	if err := h.sessionLimiter.Release(r.Context(), attempt.key, attempt.at); err != nil {
		h.logger.Warn("failed to release sign-in attempt",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}

func (h *handler) handleListLeads(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleListLeads"

	list, err := h.leads.List(r.Context())
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"leads": list})
}

func (h *handler) handleExportLeads(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExportLeads"

	// Buffer so a store failure can still produce a JSON error response.
	var buf bytes.Buffer
	if err := h.leads.ExportCSV(r.Context(), &buf); err != nil {
		h.respondServiceError(w, err, op)
		return
	}

	filename := fmt.Sprintf("leads-%s.csv", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("failed to write CSV response", zap.String("op", op), zap.Error(err))
	}
}

// clientIdentifier returns the caller's IP. RealIP has already applied any
// forwarding headers to RemoteAddr.
func clientIdentifier(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

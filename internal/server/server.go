// Package server exposes estimates, plans and leads over a JSON HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/iwvelando/cost-estimator/internal/auth"
	"github.com/iwvelando/cost-estimator/internal/estimator"
	"github.com/iwvelando/cost-estimator/internal/leads"
	"github.com/iwvelando/cost-estimator/internal/plans"
	"github.com/iwvelando/cost-estimator/internal/ratelimit"
	"github.com/iwvelando/cost-estimator/pkg/constants"
	"go.uber.org/zap"
)

// TokenAuthority verifies bearer tokens and mints admin session tokens.
type TokenAuthority interface {
	auth.Authority
	Issue(p auth.Principal, ttl time.Duration) (string, error)
}

// Dependencies are the services the handler routes to.
type Dependencies struct {
	Logger         *zap.Logger
	Estimator      *estimator.Estimator
	Plans          *plans.Service
	Leads          *leads.Service
	Tokens         TokenAuthority
	AdminAuthority auth.AdminAuthority
	AdminPassword  *auth.AdminCredential
	TokenTTL       time.Duration
	RetryAfter     time.Duration
	MaxBodySize    int64
	AllowedOrigins []string
	Version        string
	// TrustedProxies are the peers allowed to name the client through
	// forwarding headers.
	TrustedProxies []netip.Prefix
	// SessionLimiter caps admin sign-in attempts per client. Nil disables it.
	SessionLimiter    ratelimit.Limiter
	SessionRetryAfter time.Duration
	// IdentifierKey keys the hashed client address sign-in attempts are
	// counted under. A random key is used when empty.
	IdentifierKey []byte
}

type handler struct {
	logger      *zap.Logger
	estimator   *estimator.Estimator
	plans       *plans.Service
	leads       *leads.Service
	tokens      TokenAuthority
	admin       auth.AdminAuthority
	adminCred   *auth.AdminCredential
	tokenTTL    time.Duration
	retryAfter  time.Duration
	maxBodySize int64
	version     string

	sessionLimiter    ratelimit.Limiter
	sessionRetryAfter time.Duration
	identifierKey     []byte
}

// NewHandler constructs the HTTP handler serving the API.
func NewHandler(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	maxBodySize := deps.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(deps.Version)
	if trimmedVersion == "" {
		trimmedVersion = constants.DefaultVersion
	}

	tokenTTL := deps.TokenTTL
	if tokenTTL <= 0 {
		tokenTTL = time.Duration(constants.DefaultTokenTTLHours) * time.Hour
	}

	adminCred := deps.AdminPassword
	if adminCred == nil {
		adminCred, _ = auth.NewAdminCredential("")
	}

	identifierKey := deps.IdentifierKey
	if len(identifierKey) == 0 {
		identifierKey = leads.RandomKey()
	}

	h := &handler{
		logger:            logger,
		estimator:         deps.Estimator,
		plans:             deps.Plans,
		leads:             deps.Leads,
		tokens:            deps.Tokens,
		admin:             deps.AdminAuthority,
		adminCred:         adminCred,
		tokenTTL:          tokenTTL,
		retryAfter:        deps.RetryAfter,
		maxBodySize:       maxBodySize,
		version:           trimmedVersion,
		sessionLimiter:    deps.SessionLimiter,
		sessionRetryAfter: deps.SessionRetryAfter,
		identifierKey:     identifierKey,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(trustedRealIP(deps.TrustedProxies))
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	if len(deps.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Disposition"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", h.handleVersion)
		r.Get("/destinations", h.handleDestinations)
		r.Post("/estimate", h.handleEstimate)
		r.Post("/leads", h.handleSubmitLead)
		r.Post("/admin/session", h.handleAdminSession)

		r.Group(func(r chi.Router) {
			r.Use(h.requirePrincipal)
			r.Get("/plans", h.handleListPlans)
			r.Post("/plans", h.handleCreatePlan)
			r.Delete("/plans/{id}", h.handleDeletePlan)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.requirePrincipal)
			r.Use(h.requireAdmin)
			r.Get("/admin/leads", h.handleListLeads)
			r.Get("/admin/leads.csv", h.handleExportLeads)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": http.StatusText(http.StatusMethodNotAllowed)})
	})

	return r
}

// decodeJSON reads one JSON document from the size-limited body into dst.
// It writes the error response itself and reports whether decoding succeeded.
func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
		case errors.Is(err, io.EOF):
			h.respondErrorWithOp(w, http.StatusBadRequest, "request body is empty", op)
		default:
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err), op)
		}
		return false
	}
	if dec.More() {
		h.respondErrorWithOp(w, http.StatusBadRequest, "request body must contain a single JSON object", op)
		return false
	}
	return true
}

// respondServiceError maps domain errors onto status codes.
func (h *handler) respondServiceError(w http.ResponseWriter, err error, op string) {
	var (
		notFound *estimator.DestinationNotFoundError
		invalid  *estimator.InvalidRequestError
	)
	switch {
	case errors.As(err, &notFound):
		h.respondErrorWithOp(w, http.StatusNotFound, fmt.Sprintf("unknown destination %q", notFound.Key), op)
	case errors.As(err, &invalid):
		h.respondErrorWithOp(w, http.StatusBadRequest, invalid.Error(), op)
	case errors.Is(err, leads.ErrInvalidEmail), errors.Is(err, leads.ErrConsentRequired):
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
	case errors.Is(err, leads.ErrRateLimited):
		h.respondErrorWithOp(w, http.StatusTooManyRequests, leads.ErrRateLimited.Error(), op)
	case errors.Is(err, auth.ErrUnauthenticated):
		h.respondErrorWithOp(w, http.StatusUnauthorized, auth.ErrUnauthenticated.Error(), op)
	case errors.Is(err, auth.ErrForbidden):
		h.respondErrorWithOp(w, http.StatusForbidden, auth.ErrForbidden.Error(), op)
	case errors.Is(err, plans.ErrNotFound):
		h.respondErrorWithOp(w, http.StatusNotFound, plans.ErrNotFound.Error(), op)
	default:
		h.logger.Error("internal error",
			zap.String("op", op),
			zap.Error(err),
		)
		h.respondErrorWithOp(w, http.StatusInternalServerError, "internal server error", op)
	}
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	level := h.logger.Info
	if status >= http.StatusInternalServerError {
		level = h.logger.Error
	}
	level("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

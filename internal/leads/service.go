package leads

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/iwvelando/cost-estimator/internal/estimator"
	"github.com/iwvelando/cost-estimator/internal/ratelimit"
	"github.com/iwvelando/cost-estimator/pkg/output"
	"github.com/iwvelando/cost-estimator/pkg/validation"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// unknownIdentifier buckets callers whose address could not be determined.
const unknownIdentifier = "unknown"

// Service validates, rate limits and records lead submissions.
type Service struct {
	store     Store
	estimator *estimator.Estimator
	limiter   ratelimit.Limiter
	logger    *zap.Logger
	now       func() time.Time
	key       []byte

	entropyMu sync.Mutex
	entropy   io.Reader
}

// Option configures a Service.
type Option func(*Service)

// WithIdentifierKey sets the secret caller identifiers are keyed with. Hashes
// are only comparable between services sharing a key, so every instance
// behind one rate limiter must use the same value.
func WithIdentifierKey(key []byte) Option {
	return func(s *Service) {
		if len(key) > 0 {
			s.key = append([]byte(nil), key...)
		}
	}
}

// NewService wires a Store, Estimator and Limiter together. Without
// WithIdentifierKey a random per-process key is used.
func NewService(store Store, est *estimator.Estimator, limiter ratelimit.Limiter, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:     store,
		estimator: est,
		limiter:   limiter,
		logger:    logger,
		now:       time.Now,
		entropy:   ulid.Monotonic(rand.Reader, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.key) == 0 {
		s.key = RandomKey()
	}
	return s
}

// Submit records sub for the caller named by identifier and returns the guide.
func (s *Service) Submit(ctx context.Context, sub Submission, identifier string) (Receipt, error) {
	email, err := validation.NormalizeEmail(sub.Email)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %q", ErrInvalidEmail, sub.Email)
	}
	if !sub.Consent {
		return Receipt{}, ErrConsentRequired
	}

	result, err := s.estimator.Estimate(sub.Request)
	if err != nil {
		return Receipt{}, err
	}

	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		identifier = unknownIdentifier
	}
	hash := s.HashIdentifier(identifier)

	now := s.now().UTC()
	allowed, err := s.limiter.Register(ctx, hash, now)
	if err != nil {
		s.logger.Error("rate limiter unavailable",
			zap.String("op", "leads.Submit"),
			zap.Error(err),
		)
		return Receipt{}, fmt.Errorf("checking rate limit: %w", err)
	}
	if !allowed {
		s.logger.Info("lead rejected by rate limit",
			zap.String("op", "leads.Submit"),
			zap.String("identifier", hash),
		)
		return Receipt{}, ErrRateLimited
	}

	lead := Lead{
		ID:             s.newID(now),
		Email:          email,
		Consent:        true,
		Request:        sub.Request,
		TotalCost:      result.Total,
		Breakdown:      result.Breakdown,
		CreatedAt:      now,
		IdentifierHash: hash,
	}
	if err := s.store.Insert(ctx, lead); err != nil {
		s.logger.Error("failed to store lead",
			zap.String("op", "leads.Submit"),
			zap.Error(err),
		)
		if rerr := s.limiter.Release(ctx, hash, now); rerr != nil {
			s.logger.Warn("failed to release rate limit slot",
				zap.String("op", "leads.Submit"),
				zap.String("identifier", hash),
				zap.Error(rerr),
			)
		}
		return Receipt{}, fmt.Errorf("storing lead: %w", err)
	}

	s.logger.Info("lead captured",
		zap.String("op", "leads.Submit"),
		zap.String("lead", lead.ID),
		zap.String("destination", sub.Destination),
	)

	return Receipt{
		LeadID: lead.ID,
		Result: result,
		Guide:  output.Guide(s.describe(sub.Request, result)),
	}, nil
}

// List returns every lead, most recent first.
func (s *Service) List(ctx context.Context) ([]Lead, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing leads: %w", err)
	}
	return list, nil
}

// ExportCSV writes every lead, most recent first, as CSV.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	list, err := s.List(ctx)
	if err != nil {
		return err
	}
	return WriteCSV(w, list)
}

// HashIdentifier returns the keyed hash the service stores and rate limits
// identifier under.
func (s *Service) HashIdentifier(identifier string) string {
	return HashIdentifier(s.key, identifier)
}

// HashIdentifier returns the hex HMAC-SHA256 of identifier under key. Raw
// addresses are never stored, and without key the hash cannot be reversed by
// enumerating the address space.
func HashIdentifier(key []byte, identifier string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(identifier))
	return hex.EncodeToString(mac.Sum(nil))
}

// RandomKey returns 32 random bytes suitable for WithIdentifierKey.
func RandomKey() []byte {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic(fmt.Sprintf("reading random key: %v", err))
	}
	return key
}

func (s *Service) newID(now time.Time) string {
	s.entropyMu.Lock()
	defer s.entropyMu.Unlock()

	id, err := ulid.New(ulid.Timestamp(now), s.entropy)
	if errors.Is(err, ulid.ErrMonotonicOverflow) {
		s.entropy = ulid.Monotonic(rand.Reader, 0)
		id, err = ulid.New(ulid.Timestamp(now), s.entropy)
	}
	if err != nil {
		return ulid.Make().String()
	}
	return id.String()
}

func (s *Service) describe(req estimator.Request, result estimator.Result) output.Estimate {
	name := req.Destination
	if profile, ok := s.estimator.Table().Lookup(req.Destination); ok {
		name = profile.Name
	}
	return output.Estimate{Destination: name, Request: req, Result: result}
}

package leads_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/cost-estimator/internal/estimator"
	"github.com/iwvelando/cost-estimator/internal/leads"
	"github.com/iwvelando/cost-estimator/internal/ratelimit"
	"github.com/iwvelando/cost-estimator/pkg/testutil"
	"github.com/oklog/ulid/v2"
)

type fixture struct {
	svc     *leads.Service
	store   *leads.MemoryStore
	limiter *ratelimit.Memory
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	table, err := estimator.DefaultTable()
	if err != nil {
		t.Fatalf("DefaultTable() error = %v", err)
	}
	f := &fixture{
		store:   leads.NewMemoryStore(),
		limiter: ratelimit.NewMemory(ratelimit.Policy{Window: 10 * time.Minute, Max: 3}),
		now:     time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC),
	}
	t.Cleanup(f.limiter.Stop)
	f.svc = leads.NewService(f.store, estimator.New(table), f.limiter, nil, leads.WithIdentifierKey([]byte("fixture-key")))
	f.svc.SetClock(func() time.Time { return f.now })
	return f
}

func submission(email string) leads.Submission {
	return leads.Submission{Email: email, Consent: true, Request: testutil.SampleRequest()}
}

func TestMemoryStore(t *testing.T) {
	testutil.RunLeadStoreTests(t, func(t *testing.T) leads.Store {
		return leads.NewMemoryStore()
	})
}

func TestSubmit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	receipt, err := f.svc.Submit(ctx, submission(" ana@example.com "), "203.0.113.9")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	id, err := ulid.ParseStrict(receipt.LeadID)
	if err != nil {
		t.Fatalf("lead ID %q is not a ULID: %v", receipt.LeadID, err)
	}
	if ulid.Time(id.Time()).UnixMilli() != f.now.UnixMilli() {
		t.Errorf("lead ID time = %v, expected %v", ulid.Time(id.Time()), f.now)
	}
	if receipt.Result.Total != 1213 {
		t.Errorf("receipt total = %d, expected 1213", receipt.Result.Total)
	}
	if !strings.Contains(receipt.Guide, "Relocation Plan: Thailand") {
		t.Errorf("guide missing destination name:\n%s", receipt.Guide)
	}

	list, err := f.svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	lead := testutil.FindLead(list, "ana@example.com")
	if lead == nil {
		t.Fatalf("lead not stored with normalized email: %+v", list)
	}
	if lead.IdentifierHash != leads.HashIdentifier([]byte("fixture-key"), "203.0.113.9") {
		t.Errorf("identifier hash = %s", lead.IdentifierHash)
	}
	if strings.Contains(lead.IdentifierHash, "203.0.113.9") || len(lead.IdentifierHash) != 64 {
		t.Errorf("identifier should be stored as a hex HMAC-SHA256, got %s", lead.IdentifierHash)
	}
	if lead.TotalCost != 1213 || lead.Breakdown.Internet != 23 || !lead.Consent {
		t.Errorf("unexpected stored lead %+v", lead)
	}
	if !lead.CreatedAt.Equal(f.now) {
		t.Errorf("CreatedAt = %v, expected %v", lead.CreatedAt, f.now)
	}
}

func TestHashIdentifier(t *testing.T) {
	key := []byte("key")
	// HMAC-SHA256 of the empty message under "key".
	if got := leads.HashIdentifier(key, ""); got != "5d5d139563c95b5967b9bd9a8c9b233a9dedb45072794cd232dc1b74832607d0" {
		t.Fatalf("HashIdentifier(key, \"\") = %s", got)
	}
	// Plain SHA-256 of the address.
	if got := leads.HashIdentifier(key, "203.0.113.9"); got == "d861b7e91033ebc1c1e8e7af3929010158b3241b54ca87ef73e79c32f26400ec" || len(got) != 64 {
		t.Fatalf("unexpected hash %s", got)
	}
	if leads.HashIdentifier(key, "a") == leads.HashIdentifier(key, "b") {
		t.Fatal("distinct identifiers hashed equal")
	}
	if leads.HashIdentifier(key, "a") != leads.HashIdentifier([]byte("key"), "a") {
		t.Fatal("equal keys hashed differently")
	}
	if leads.HashIdentifier(key, "a") == leads.HashIdentifier([]byte("other"), "a") {
		t.Fatal("distinct keys hashed equal")
	}
}

func TestServiceIdentifierKey(t *testing.T) {
	table, _ := estimator.DefaultTable()
	est := estimator.New(table)

	a := leads.NewService(leads.NewMemoryStore(), est, nil, nil, leads.WithIdentifierKey([]byte("shared")))
	b := leads.NewService(leads.NewMemoryStore(), est, nil, nil, leads.WithIdentifierKey([]byte("shared")))
	if a.HashIdentifier("203.0.113.9") != b.HashIdentifier("203.0.113.9") {
		t.Error("services sharing a key should agree on hashes")
	}

	c := leads.NewService(leads.NewMemoryStore(), est, nil, nil)
	d := leads.NewService(leads.NewMemoryStore(), est, nil, nil)
	if c.HashIdentifier("203.0.113.9") == d.HashIdentifier("203.0.113.9") {
		t.Error("services without a key should use independent random keys")
	}
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*leads.Submission)
		wantErr error
	}{
		{"Invalid email", func(s *leads.Submission) { s.Email = "not-an-email" }, leads.ErrInvalidEmail},
		{"Empty email", func(s *leads.Submission) { s.Email = "" }, leads.ErrInvalidEmail},
		{"No consent", func(s *leads.Submission) { s.Consent = false }, leads.ErrConsentRequired},
		{"Unknown destination", func(s *leads.Submission) { s.Destination = "atlantis" }, estimator.ErrDestinationNotFound},
		{"Bad lifestyle", func(s *leads.Submission) { s.Lifestyle = "lavish" }, estimator.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			sub := submission("ana@example.com")
			tt.modify(&sub)
			for i := 0; i < 5; i++ {
				if _, err := f.svc.Submit(ctx, sub, "198.51.100.1"); !errors.Is(err, tt.wantErr) {
					t.Fatalf("Submit() error = %v, expected %v", err, tt.wantErr)
				}
			}

			list, _ := f.svc.List(ctx)
			if len(list) != 0 {
				t.Fatalf("rejected submission stored: %+v", list)
			}
			// Rejected submissions do not use up the caller's allowance.
			if _, err := f.svc.Submit(ctx, submission("ana@example.com"), "198.51.100.1"); err != nil {
				t.Fatalf("valid Submit() after rejections error = %v", err)
			}
		})
	}
}

func TestSubmitRateLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := f.now

	for i := 0; i < 3; i++ {
		f.now = start.Add(time.Duration(i) * time.Minute)
		if _, err := f.svc.Submit(ctx, submission("ana@example.com"), "203.0.113.9"); err != nil {
			t.Fatalf("submission %d error = %v", i+1, err)
		}
	}

	f.now = start.Add(5 * time.Minute)
	if _, err := f.svc.Submit(ctx, submission("ana@example.com"), "203.0.113.9"); !errors.Is(err, leads.ErrRateLimited) {
		t.Fatalf("fourth submission error = %v, expected ErrRateLimited", err)
	}

	if _, err := f.svc.Submit(ctx, submission("ben@example.com"), "203.0.113.10"); err != nil {
		t.Fatalf("other caller denied: %v", err)
	}

	f.now = start.Add(10 * time.Minute)
	if _, err := f.svc.Submit(ctx, submission("ana@example.com"), "203.0.113.9"); err != nil {
		t.Fatalf("submission after the first left the window error = %v", err)
	}

	list, _ := f.svc.List(ctx)
	if len(list) != 5 {
		t.Fatalf("expected 5 stored leads, got %d", len(list))
	}
	if list[0].CreatedAt.Before(list[len(list)-1].CreatedAt) {
		t.Fatal("leads not newest first")
	}
}

type brokenLimiter struct{}

func (brokenLimiter) Register(context.Context, string, time.Time) (bool, error) {
	return false, errors.New("connection refused")
}

func (brokenLimiter) Release(context.Context, string, time.Time) error {
	return errors.New("connection refused")
}

// flakyStore fails its first failures inserts, then delegates.
type flakyStore struct {
	*leads.MemoryStore
	failures int
}

func (s *flakyStore) Insert(ctx context.Context, lead leads.Lead) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("disk full")
	}
	return s.MemoryStore.Insert(ctx, lead)
}

func TestSubmitStoreFailureReleasesSlot(t *testing.T) {
	table, _ := estimator.DefaultTable()
	store := &flakyStore{MemoryStore: leads.NewMemoryStore(), failures: 2}
	limiter := ratelimit.NewMemory(ratelimit.Policy{Window: 10 * time.Minute, Max: 3})
	defer limiter.Stop()
	svc := leads.NewService(store, estimator.New(table), limiter, nil)
	now := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return now })
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.Submit(ctx, submission("ana@example.com"), "203.0.113.9"); err == nil || errors.Is(err, leads.ErrRateLimited) {
			t.Fatalf("attempt %d: Submit() error = %v, expected a store failure", i+1, err)
		}
	}

	// Failed inserts must not have used up any of the three slots.
	for i := 0; i < 3; i++ {
		now = now.Add(time.Second)
		if _, err := svc.Submit(ctx, submission("ana@example.com"), "203.0.113.9"); err != nil {
			t.Fatalf("submission %d after store recovered: %v", i+1, err)
		}
	}
	now = now.Add(time.Second)
	if _, err := svc.Submit(ctx, submission("ana@example.com"), "203.0.113.9"); !errors.Is(err, leads.ErrRateLimited) {
		t.Fatalf("fourth stored submission error = %v, expected ErrRateLimited", err)
	}

	list, _ := store.List(ctx)
	if len(list) != 3 {
		t.Fatalf("expected 3 stored leads, got %d", len(list))
	}
}

func TestSubmitLimiterFailure(t *testing.T) {
	table, _ := estimator.DefaultTable()
	store := leads.NewMemoryStore()
	svc := leads.NewService(store, estimator.New(table), brokenLimiter{}, nil)

	_, err := svc.Submit(context.Background(), submission("ana@example.com"), "203.0.113.9")
	if err == nil || errors.Is(err, leads.ErrRateLimited) {
		t.Fatalf("Submit() error = %v, expected a limiter failure", err)
	}
	list, _ := store.List(context.Background())
	if len(list) != 0 {
		t.Fatal("lead stored although the limiter failed")
	}
}

func TestExportCSV(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sub := submission("ana@example.com")
	sub.City = "Chiang Mai, Old City"
	if _, err := f.svc.Submit(ctx, sub, "a"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	f.now = f.now.Add(time.Minute)
	if _, err := f.svc.Submit(ctx, submission("ben@example.com"), "b"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	var buf bytes.Buffer
	if err := f.svc.ExportCSV(ctx, &buf); err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(records))
	}
	if got := strings.Join(records[0], ","); got != "email,consent,country,city,lifestyle,stayLength,housingType,travelerType,workStyle,totalCost,breakdown,createdAt" {
		t.Fatalf("unexpected header %s", got)
	}

	newest, oldest := records[1], records[2]
	if newest[0] != "ben@example.com" || oldest[0] != "ana@example.com" {
		t.Fatalf("rows not newest first: %v / %v", newest[0], oldest[0])
	}

	expected := []string{"ana@example.com", "true", "thailand", "Chiang Mai, Old City", "comfortable", "6", "studio", "solo", "remote", "1213"}
	for i, want := range expected {
		if oldest[i] != want {
			t.Errorf("column %s = %q, expected %q", leads.CSVHeader[i], oldest[i], want)
		}
	}

	var breakdown estimator.Breakdown
	if err := json.Unmarshal([]byte(oldest[10]), &breakdown); err != nil {
		t.Fatalf("breakdown column is not JSON: %v", err)
	}
	if breakdown.Sum() != 1213 {
		t.Errorf("breakdown sums to %d, expected 1213", breakdown.Sum())
	}
	if oldest[11] != "2025-04-02T10:00:00.000Z" {
		t.Errorf("createdAt = %s, expected ISO 8601 UTC with milliseconds", oldest[11])
	}
}

func TestWriteCSVMilliseconds(t *testing.T) {
	lead := leads.Lead{
		Email:     "ana@example.com",
		Consent:   true,
		Request:   testutil.SampleRequest(),
		CreatedAt: time.Date(2025, 4, 2, 12, 30, 15, 123456789, time.FixedZone("ICT", 7*60*60)),
	}

	var buf bytes.Buffer
	if err := leads.WriteCSV(&buf, []leads.Lead{lead}); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}
	if got := records[1][11]; got != "2025-04-02T05:30:15.123Z" {
		t.Errorf("createdAt = %s, expected 2025-04-02T05:30:15.123Z", got)
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := leads.WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != strings.Join(leads.CSVHeader, ",") {
		t.Fatalf("unexpected empty export %q", got)
	}
}

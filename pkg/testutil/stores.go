package testutil

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/iwvelando/cost-estimator/internal/estimator"
	"github.com/iwvelando/cost-estimator/internal/leads"
	"github.com/iwvelando/cost-estimator/internal/plans"
)

var sampleBreakdown = estimator.Breakdown{
	Rent: 375, Food: 375, Transport: 55, Utilities: 60, Internet: 23, Health: 100, Fun: 225,
}

// RunPlanStoreTests checks the behavior every plans.Store must share.
// newStore must return an empty store.
func RunPlanStoreTests(t *testing.T, newStore func(t *testing.T) plans.Store) {
	t.Helper()
	base := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

	plan := func(id string, created time.Time) plans.Plan {
		return plans.Plan{
			ID:      id,
			Request: SampleRequest(),
			Result: estimator.Result{
				Breakdown:  sampleBreakdown,
				Total:      1213,
				Confidence: estimator.High,
			},
			CreatedAt: created,
		}
	}

	t.Run("Save and list round trip", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		p := plan("7f9c2ba4-e88f-41d3-9d2a-6b1f4c3e2a10", base)
		p.Request.City = "Chiang Mai"
		id, err := store.Save(ctx, "alice", p)
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if id != p.ID {
			t.Fatalf("Save() id = %s, expected %s", id, p.ID)
		}

		list, err := store.List(ctx, "alice")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("expected 1 plan, got %d", len(list))
		}
		got := list[0]
		if got.UserID != "alice" || got.Request != p.Request || got.Result != p.Result {
			t.Errorf("round trip mismatch: got %+v, expected %+v", got, p)
		}
		if !got.CreatedAt.Equal(base) {
			t.Errorf("CreatedAt = %s, expected %s", got.CreatedAt, base)
		}
	})

	t.Run("Save assigns an ID when missing", func(t *testing.T) {
		store := newStore(t)
		id, err := store.Save(context.Background(), "alice", plan("", base))
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if id == "" {
			t.Fatal("expected generated ID")
		}
	})

	t.Run("List is newest first and scoped to the user", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			id := fmt.Sprintf("00000000-0000-4000-8000-00000000000%d", i)
			if _, err := store.Save(ctx, "alice", plan(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
		}
		if _, err := store.Save(ctx, "bob", plan("00000000-0000-4000-8000-0000000000b0", base.Add(5*time.Hour))); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		list, err := store.List(ctx, "alice")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(list) != 3 {
			t.Fatalf("expected 3 plans for alice, got %d", len(list))
		}
		for i := 1; i < len(list); i++ {
			if list[i-1].CreatedAt.Before(list[i].CreatedAt) {
				t.Fatalf("plans not newest first: %s before %s", list[i-1].CreatedAt, list[i].CreatedAt)
			}
		}

		empty, err := store.List(ctx, "carol")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(empty) != 0 {
			t.Fatalf("expected no plans for carol, got %d", len(empty))
		}
	})

	t.Run("Delete by owner", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		id, _ := store.Save(ctx, "alice", plan("5d0c7f64-3a1e-4b8e-9a57-2f0b6d8c1e33", base))

		if err := store.Delete(ctx, "alice", id); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		list, _ := store.List(ctx, "alice")
		if len(list) != 0 {
			t.Fatalf("expected plan removed, got %d", len(list))
		}
		if err := store.Delete(ctx, "alice", id); !errors.Is(err, plans.ErrNotFound) {
			t.Fatalf("second Delete() error = %v, expected ErrNotFound", err)
		}
	})

	t.Run("Delete by non-owner is rejected and plan stays", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		id, _ := store.Save(ctx, "alice", plan("c1f3e5a7-9b2d-4c6e-8f10-a2b4c6d8e0f2", base))

		if err := store.Delete(ctx, "mallory", id); !errors.Is(err, plans.ErrNotFound) {
			t.Fatalf("Delete() by non-owner error = %v, expected ErrNotFound", err)
		}
		list, _ := store.List(ctx, "alice")
		if FindPlan(list, id) == nil {
			t.Fatal("plan was removed by a non-owner")
		}
	})

	t.Run("Reusing a plan ID is rejected", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		p := plan("0b6f1c2e-8d4a-4f7b-9c3e-5a2d1e0f9b8c", base)

		if _, err := store.Save(ctx, "alice", p); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if _, err := store.Save(ctx, "bob", p); err == nil {
			t.Fatal("expected an error when reusing a plan ID")
		}
		list, _ := store.List(ctx, "alice")
		if len(list) != 1 || list[0].UserID != "alice" {
			t.Fatalf("original plan changed: %+v", list)
		}
		foreign, _ := store.List(ctx, "bob")
		if len(foreign) != 0 {
			t.Fatalf("bob gained plans: %+v", foreign)
		}
	})

	t.Run("Delete unknown plan", func(t *testing.T) {
		store := newStore(t)
		err := store.Delete(context.Background(), "alice", "9e107d9d-372b-4b6c-8d0e-000000000000")
		if !errors.Is(err, plans.ErrNotFound) {
			t.Fatalf("Delete() error = %v, expected ErrNotFound", err)
		}
	})
}

// RunLeadStoreTests checks the behavior every leads.Store must share.
// newStore must return an empty store.
func RunLeadStoreTests(t *testing.T, newStore func(t *testing.T) leads.Store) {
	t.Helper()
	base := time.Date(2025, 2, 1, 18, 30, 0, 0, time.UTC)

	lead := func(id, email string, created time.Time) leads.Lead {
		return leads.Lead{
			ID:             id,
			Email:          email,
			Consent:        true,
			Request:        SampleRequest(),
			TotalCost:      1213,
			Breakdown:      sampleBreakdown,
			CreatedAt:      created,
			IdentifierHash: leads.HashIdentifier([]byte("store-tests"), "203.0.113.9"),
		}
	}

	t.Run("Insert and list round trip", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		l := lead("01HQ3Z5X8Y0000000000000001", "ana@example.com", base)
		l.City = "Bangkok"
		if err := store.Insert(ctx, l); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}

		list, err := store.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("expected 1 lead, got %d", len(list))
		}
		got := list[0]
		if got.ID != l.ID || got.Email != l.Email || got.Request != l.Request {
			t.Errorf("round trip mismatch: got %+v, expected %+v", got, l)
		}
		if got.Breakdown != l.Breakdown || got.TotalCost != l.TotalCost || got.IdentifierHash != l.IdentifierHash {
			t.Errorf("round trip mismatch: got %+v, expected %+v", got, l)
		}
		if !got.CreatedAt.Equal(base) {
			t.Errorf("CreatedAt = %s, expected %s", got.CreatedAt, base)
		}
	})

	t.Run("List is newest first", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_ = store.Insert(ctx, lead("01HQ3Z5X8Y0000000000000001", "first@example.com", base))
		_ = store.Insert(ctx, lead("01HQ3Z5X8Y0000000000000003", "third@example.com", base.Add(2*time.Minute)))
		_ = store.Insert(ctx, lead("01HQ3Z5X8Y0000000000000002", "second@example.com", base.Add(time.Minute)))

		list, err := store.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		expected := []string{"third@example.com", "second@example.com", "first@example.com"}
		if len(list) != len(expected) {
			t.Fatalf("expected %d leads, got %d", len(expected), len(list))
		}
		for i, email := range expected {
			if list[i].Email != email {
				t.Errorf("position %d = %s, expected %s", i, list[i].Email, email)
			}
		}
	})
}

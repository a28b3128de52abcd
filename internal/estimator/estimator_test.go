package estimator

import (
	"errors"
	"math"
	"testing"
)

func newTestEstimator(t *testing.T) *Estimator {
	t.Helper()
	table, err := DefaultTable()
	if err != nil {
		t.Fatalf("DefaultTable() error = %v", err)
	}
	return New(table)
}

func baseRequest() Request {
	return Request{
		Destination: "thailand",
		Lifestyle:   Comfortable,
		StayLength:  6,
		Housing:     Studio,
		Traveler:    Solo,
		WorkStyle:   Remote,
	}
}

func TestEstimateThailandComfortableStudio(t *testing.T) {
	est := newTestEstimator(t)

	result, err := est.Estimate(baseRequest())
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}

	expected := Breakdown{
		Rent:      375,
		Food:      375,
		Transport: 55,
		Utilities: 60,
		Internet:  23,
		Health:    100,
		Fun:       225,
	}
	if result.Breakdown != expected {
		t.Errorf("breakdown = %+v, expected %+v", result.Breakdown, expected)
	}
	if result.Total != 1213 {
		t.Errorf("total = %d, expected 1213", result.Total)
	}
	if result.Confidence != High {
		t.Errorf("confidence = %s, expected High", result.Confidence)
	}
}

func TestEstimateAdjustments(t *testing.T) {
	est := newTestEstimator(t)

	tests := []struct {
		name     string
		modify   func(*Request)
		expected Breakdown
		total    int64
	}{
		{
			name:   "Short stay premium on rent only",
			modify: func(r *Request) { r.StayLength = 2 },
			expected: Breakdown{
				Rent: 413, Food: 375, Transport: 55, Utilities: 60, Internet: 23, Health: 100, Fun: 225,
			},
			total: 1251,
		},
		{
			name:   "Single month pays the premium",
			modify: func(r *Request) { r.StayLength = 1 },
			expected: Breakdown{
				Rent: 413, Food: 375, Transport: 55, Utilities: 60, Internet: 23, Health: 100, Fun: 225,
			},
			total: 1251,
		},
		{
			name:   "Couple scales food fun and transport",
			modify: func(r *Request) { r.Traveler = Couple },
			expected: Breakdown{
				Rent: 375, Food: 619, Transport: 69, Utilities: 60, Internet: 23, Health: 100, Fun: 371,
			},
			total: 1617,
		},
		{
			name:   "Budget tier scales food and fun",
			modify: func(r *Request) { r.Lifestyle = Budget },
			expected: Breakdown{
				Rent: 375, Food: 170, Transport: 55, Utilities: 60, Internet: 23, Health: 100, Fun: 64,
			},
			total: 847,
		},
		{
			name:   "Premium tier scales food and fun",
			modify: func(r *Request) { r.Lifestyle = Premium },
			expected: Breakdown{
				Rent: 375, Food: 878, Transport: 55, Utilities: 60, Internet: 23, Health: 100, Fun: 810,
			},
			total: 2301,
		},
		{
			name:   "Work style does not change the estimate",
			modify: func(r *Request) { r.WorkStyle = Student },
			expected: Breakdown{
				Rent: 375, Food: 375, Transport: 55, Utilities: 60, Internet: 23, Health: 100, Fun: 225,
			},
			total: 1213,
		},
		{
			name:   "City is display only",
			modify: func(r *Request) { r.City = "Chiang Mai" },
			expected: Breakdown{
				Rent: 375, Food: 375, Transport: 55, Utilities: 60, Internet: 23, Health: 100, Fun: 225,
			},
			total: 1213,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest()
			tt.modify(&req)

			result, err := est.Estimate(req)
			if err != nil {
				t.Fatalf("Estimate() error = %v", err)
			}
			if result.Breakdown != tt.expected {
				t.Errorf("breakdown = %+v, expected %+v", result.Breakdown, tt.expected)
			}
			if result.Total != tt.total {
				t.Errorf("total = %d, expected %d", result.Total, tt.total)
			}
		})
	}
}

func TestEstimateInvariantsAcrossTable(t *testing.T) {
	est := newTestEstimator(t)

	for _, dest := range est.Table().Destinations() {
		for _, lifestyle := range Lifestyles {
			for _, housing := range HousingTypes {
				for _, traveler := range TravelerTypes {
					for _, work := range WorkStyles {
						for stay := 1; stay <= 12; stay++ {
							req := Request{
								Destination: dest.Key,
								Lifestyle:   lifestyle,
								StayLength:  stay,
								Housing:     housing,
								Traveler:    traveler,
								WorkStyle:   work,
							}
							result, err := est.Estimate(req)
							if err != nil {
								t.Fatalf("Estimate(%+v) error = %v", req, err)
							}
							if result.Total != result.Breakdown.Sum() {
								t.Fatalf("Estimate(%+v) total %d != breakdown sum %d", req, result.Total, result.Breakdown.Sum())
							}
							for _, c := range Categories {
								if result.Breakdown.Amount(c) < 0 {
									t.Fatalf("Estimate(%+v) %s is negative", req, c)
								}
							}
							if result.Confidence != dest.Confidence {
								t.Fatalf("Estimate(%+v) confidence %s, expected %s", req, result.Confidence, dest.Confidence)
							}
						}
					}
				}
			}
		}
	}
}

func TestEstimateIsIdempotent(t *testing.T) {
	est := newTestEstimator(t)
	req := baseRequest()
	req.Traveler = Couple
	req.StayLength = 1

	first, err := est.Estimate(req)
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := est.Estimate(req)
		if err != nil {
			t.Fatalf("Estimate() error = %v", err)
		}
		if again != first {
			t.Fatalf("Estimate() call %d = %+v, expected %+v", i, again, first)
		}
	}
}

func TestShortStayRatio(t *testing.T) {
	est := newTestEstimator(t)

	for _, dest := range est.Table().Destinations() {
		for _, housing := range HousingTypes {
			short := baseRequest()
			short.Destination = dest.Key
			short.Housing = housing
			short.StayLength = 2
			long := short
			long.StayLength = 3

			s, err := est.Estimate(short)
			if err != nil {
				t.Fatalf("Estimate() error = %v", err)
			}
			l, err := est.Estimate(long)
			if err != nil {
				t.Fatalf("Estimate() error = %v", err)
			}
			if math.Abs(float64(s.Breakdown.Rent)-1.10*float64(l.Breakdown.Rent)) > 1 {
				t.Errorf("%s/%s: short stay rent %d is not 1.10x %d", dest.Key, housing, s.Breakdown.Rent, l.Breakdown.Rent)
			}
		}
	}
}

func TestCoupleRatios(t *testing.T) {
	est := newTestEstimator(t)

	for _, dest := range est.Table().Destinations() {
		for _, lifestyle := range Lifestyles {
			solo := baseRequest()
			solo.Destination = dest.Key
			solo.Lifestyle = lifestyle
			couple := solo
			couple.Traveler = Couple

			s, err := est.Estimate(solo)
			if err != nil {
				t.Fatalf("Estimate() error = %v", err)
			}
			c, err := est.Estimate(couple)
			if err != nil {
				t.Fatalf("Estimate() error = %v", err)
			}
			if math.Abs(float64(c.Breakdown.Food)-1.65*float64(s.Breakdown.Food)) > 1.65 {
				t.Errorf("%s/%s: couple food %d is not 1.65x %d", dest.Key, lifestyle, c.Breakdown.Food, s.Breakdown.Food)
			}
			if math.Abs(float64(c.Breakdown.Transport)-1.25*float64(s.Breakdown.Transport)) > 1.25 {
				t.Errorf("%s/%s: couple transport %d is not 1.25x %d", dest.Key, lifestyle, c.Breakdown.Transport, s.Breakdown.Transport)
			}
			if c.Breakdown.Rent != s.Breakdown.Rent {
				t.Errorf("%s/%s: couple rent %d differs from solo %d", dest.Key, lifestyle, c.Breakdown.Rent, s.Breakdown.Rent)
			}
		}
	}
}

func TestLifestyleOrdering(t *testing.T) {
	est := newTestEstimator(t)

	for _, dest := range est.Table().Destinations() {
		for _, housing := range HousingTypes {
			for _, traveler := range TravelerTypes {
				var previous int64 = -1
				for _, lifestyle := range Lifestyles {
					req := baseRequest()
					req.Destination = dest.Key
					req.Housing = housing
					req.Traveler = traveler
					req.Lifestyle = lifestyle

					result, err := est.Estimate(req)
					if err != nil {
						t.Fatalf("Estimate() error = %v", err)
					}
					if result.Total <= previous {
						t.Errorf("%s/%s/%s: %s total %d not above %d", dest.Key, housing, traveler, lifestyle, result.Total, previous)
					}
					previous = result.Total
				}
			}
		}
	}
}

func TestEstimateUnknownDestination(t *testing.T) {
	est := newTestEstimator(t)
	req := baseRequest()
	req.Destination = "atlantis"

	result, err := est.Estimate(req)
	if err == nil {
		t.Fatal("expected error for unknown destination")
	}
	if !errors.Is(err, ErrDestinationNotFound) {
		t.Fatalf("expected ErrDestinationNotFound, got %v", err)
	}
	var notFound *DestinationNotFoundError
	if !errors.As(err, &notFound) || notFound.Key != "atlantis" {
		t.Fatalf("expected DestinationNotFoundError carrying the key, got %v", err)
	}
	if result != (Result{}) {
		t.Fatalf("expected no partial result, got %+v", result)
	}
}

func TestEstimateUnknownDestinationWinsOverInvalidFields(t *testing.T) {
	est := newTestEstimator(t)

	_, err := est.Estimate(Request{Destination: "atlantis"})
	if !errors.Is(err, ErrDestinationNotFound) {
		t.Fatalf("expected ErrDestinationNotFound, got %v", err)
	}
}

func TestEstimateInvalidRequest(t *testing.T) {
	est := newTestEstimator(t)

	tests := []struct {
		name   string
		modify func(*Request)
		field  string
	}{
		{"Unknown lifestyle", func(r *Request) { r.Lifestyle = "lavish" }, "lifestyle"},
		{"Unknown housing", func(r *Request) { r.Housing = "castle" }, "housingType"},
		{"Unknown traveler", func(r *Request) { r.Traveler = "family" }, "travelerType"},
		{"Unknown work style", func(r *Request) { r.WorkStyle = "retired" }, "workStyle"},
		{"Zero stay", func(r *Request) { r.StayLength = 0 }, "stayLength"},
		{"Negative stay", func(r *Request) { r.StayLength = -3 }, "stayLength"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest()
			tt.modify(&req)

			_, err := est.Estimate(req)
			if !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
			var invalid *InvalidRequestError
			if !errors.As(err, &invalid) || invalid.Field != tt.field {
				t.Fatalf("expected field %s, got %v", tt.field, err)
			}
		})
	}
}

func TestResultShares(t *testing.T) {
	est := newTestEstimator(t)

	result, err := est.Estimate(baseRequest())
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}

	shares := result.Shares()
	if len(shares) != len(Categories) {
		t.Fatalf("expected %d shares, got %d", len(Categories), len(shares))
	}
	if shares[0].Category != Rent || shares[0].Percent != 31 {
		t.Errorf("rent share = %+v, expected 31%%", shares[0])
	}
	if shares[4].Label != "Internet/SIM" {
		t.Errorf("internet label = %q", shares[4].Label)
	}
}

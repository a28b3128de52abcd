package estimator

import (
	"strconv"

	"github.com/iwvelando/cost-estimator/pkg/constants"
	"github.com/iwvelando/cost-estimator/pkg/mathutil"
	"github.com/shopspring/decimal"
)

var (
	shortStayPremium = mathutil.MustFactor(constants.ShortStayRentPremium)
	coupleFood       = mathutil.MustFactor(constants.CoupleFoodMultiplier)
	coupleFun        = mathutil.MustFactor(constants.CoupleFunMultiplier)
	coupleTransport  = mathutil.MustFactor(constants.CoupleTransportMultiplier)
)

var lifestyleMultiplier = map[Lifestyle]decimal.Decimal{
	Budget:      mathutil.MustFactor(constants.BudgetMultiplier),
	Comfortable: mathutil.MustFactor(constants.ComfortableMultiplier),
	Premium:     mathutil.MustFactor(constants.PremiumMultiplier),
}

// Estimator turns requests into cost breakdowns using a fixed Table.
// It holds no mutable state and is safe for concurrent use.
type Estimator struct {
	table *Table
}

// New returns an Estimator over table.
func New(table *Table) *Estimator {
	return &Estimator{table: table}
}

// Table returns the destination table backing the estimator.
func (e *Estimator) Table() *Table {
	return e.table
}

// Estimate computes the monthly breakdown for req.
//
// Food and fun take the couple multiplier before the lifestyle multiplier;
// rent only takes the short-stay premium. Each category is rounded half up
// on its own and the total is the sum of the rounded categories.
func (e *Estimator) Estimate(req Request) (Result, error) {
	profile, ok := e.table.profiles[req.Destination]
	if !ok {
		return Result{}, &DestinationNotFoundError{Key: req.Destination}
	}
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	multiplier := lifestyleMultiplier[req.Lifestyle]

	rent := midpoint(profile.Rent[req.Housing])
	if req.StayLength <= constants.ShortStayMaxMonths {
		rent = rent.Mul(shortStayPremium)
	}

	food := midpoint(profile.Food[req.Lifestyle])
	transport := midpoint(profile.Transport)
	utilities := midpoint(profile.Utilities)
	internet := midpoint(profile.Internet)
	health := midpoint(profile.Health)
	fun := midpoint(profile.Fun[req.Lifestyle])

	if req.Traveler == Couple {
		food = food.Mul(coupleFood)
		fun = fun.Mul(coupleFun)
		transport = transport.Mul(coupleTransport)
	}

	food = food.Mul(multiplier)
	fun = fun.Mul(multiplier)

	breakdown := Breakdown{
		Rent:      mathutil.RoundHalfUp(rent),
		Food:      mathutil.RoundHalfUp(food),
		Transport: mathutil.RoundHalfUp(transport),
		Utilities: mathutil.RoundHalfUp(utilities),
		Internet:  mathutil.RoundHalfUp(internet),
		Health:    mathutil.RoundHalfUp(health),
		Fun:       mathutil.RoundHalfUp(fun),
	}

	return Result{
		Breakdown:  breakdown,
		Total:      breakdown.Sum(),
		Confidence: profile.Confidence,
	}, nil
}

// Validate checks the enum fields and stay length. The destination key is
// checked against a table by Estimate.
func (r Request) Validate() error {
	if !contains(Lifestyles, r.Lifestyle) {
		return &InvalidRequestError{Field: "lifestyle", Value: string(r.Lifestyle)}
	}
	if !contains(HousingTypes, r.Housing) {
		return &InvalidRequestError{Field: "housingType", Value: string(r.Housing)}
	}
	if !contains(TravelerTypes, r.Traveler) {
		return &InvalidRequestError{Field: "travelerType", Value: string(r.Traveler)}
	}
	if !contains(WorkStyles, r.WorkStyle) {
		return &InvalidRequestError{Field: "workStyle", Value: string(r.WorkStyle)}
	}
	if r.StayLength < constants.MinStayMonths {
		return &InvalidRequestError{Field: "stayLength", Value: strconv.Itoa(r.StayLength)}
	}
	return nil
}

func midpoint(r Range) decimal.Decimal {
	return mathutil.Midpoint(r.Min, r.Max)
}

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// Package estimator computes monthly cost-of-living breakdowns from a static
// table of per-country cost ranges.
package estimator

import (
	"fmt"

	"github.com/iwvelando/cost-estimator/pkg/mathutil"
	"gopkg.in/yaml.v3"
)

// Lifestyle is the spending tier of an estimate.
type Lifestyle string

const (
	Budget      Lifestyle = "budget"
	Comfortable Lifestyle = "comfortable"
	Premium     Lifestyle = "premium"
)

// Lifestyles lists every tier from cheapest to most expensive.
var Lifestyles = []Lifestyle{Budget, Comfortable, Premium}

// HousingType is the kind of accommodation rented.
type HousingType string

const (
	Room       HousingType = "room"
	Studio     HousingType = "studio"
	OneBedroom HousingType = "1br"
	TwoBedroom HousingType = "2br"
)

// HousingTypes lists every housing option.
var HousingTypes = []HousingType{Room, Studio, OneBedroom, TwoBedroom}

// TravelerType is the traveler composition.
type TravelerType string

const (
	Solo   TravelerType = "solo"
	Couple TravelerType = "couple"
)

// TravelerTypes lists every traveler composition.
var TravelerTypes = []TravelerType{Solo, Couple}

// WorkStyle is recorded with an estimate but does not change it.
type WorkStyle string

const (
	Remote   WorkStyle = "remote"
	LocalJob WorkStyle = "local"
	Student  WorkStyle = "student"
)

// WorkStyles lists every work style.
var WorkStyles = []WorkStyle{Remote, LocalJob, Student}

// Confidence is the authored reliability of a country's figures.
type Confidence string

const (
	Low    Confidence = "Low"
	Medium Confidence = "Medium"
	High   Confidence = "High"
)

func (c Confidence) valid() bool {
	return c == Low || c == Medium || c == High
}

// Range is a (min, max) monthly amount in the reference currency.
type Range struct {
	Min int64
	Max int64
}

// UnmarshalYAML decodes a range written as a two element sequence, e.g. [250, 500].
func (r *Range) UnmarshalYAML(value *yaml.Node) error {
	var pair []int64
	if err := value.Decode(&pair); err != nil {
		return fmt.Errorf("line %d: range must be a [min, max] pair: %w", value.Line, err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("line %d: range must have exactly two values, got %d", value.Line, len(pair))
	}
	r.Min, r.Max = pair[0], pair[1]
	return nil
}

// Validate checks 0 <= min <= max.
func (r Range) Validate() error {
	if r.Min < 0 || r.Max < 0 {
		return fmt.Errorf("range [%d, %d] has a negative bound", r.Min, r.Max)
	}
	if r.Min > r.Max {
		return fmt.Errorf("range [%d, %d] has min above max", r.Min, r.Max)
	}
	return nil
}

// CountryProfile holds the cost ranges for one destination.
type CountryProfile struct {
	Key        string                `yaml:"key"`
	Name       string                `yaml:"name"`
	Code       string                `yaml:"code"`
	Confidence Confidence            `yaml:"confidence"`
	Rent       map[HousingType]Range `yaml:"rent"`
	Food       map[Lifestyle]Range   `yaml:"food"`
	Transport  Range                 `yaml:"transport"`
	Utilities  Range                 `yaml:"utilities"`
	Internet   Range                 `yaml:"internet"`
	Health     Range                 `yaml:"health"`
	Fun        map[Lifestyle]Range   `yaml:"fun"`
}

// Request describes the traveler and trip to estimate.
type Request struct {
	Destination string       `json:"country"`
	City        string       `json:"city,omitempty"`
	Lifestyle   Lifestyle    `json:"lifestyle"`
	StayLength  int          `json:"stayLength"`
	Housing     HousingType  `json:"housingType"`
	Traveler    TravelerType `json:"travelerType"`
	WorkStyle   WorkStyle    `json:"workStyle"`
}

// Category names one line of the breakdown.
type Category string

const (
	Rent      Category = "rent"
	Food      Category = "food"
	Transport Category = "transport"
	Utilities Category = "utilities"
	Internet  Category = "internet"
	Health    Category = "health"
	Fun       Category = "fun"
)

// Categories lists the breakdown lines in display order.
var Categories = []Category{Rent, Food, Transport, Utilities, Internet, Health, Fun}

// Label is the human readable name of a category.
func (c Category) Label() string {
	switch c {
	case Rent:
		return "Rent"
	case Food:
		return "Food"
	case Transport:
		return "Transport"
	case Utilities:
		return "Utilities"
	case Internet:
		return "Internet/SIM"
	case Health:
		return "Health/Insurance"
	case Fun:
		return "Fun/Misc"
	default:
		return string(c)
	}
}

// Breakdown is the rounded monthly cost per category.
type Breakdown struct {
	Rent      int64 `json:"rent"`
	Food      int64 `json:"food"`
	Transport int64 `json:"transport"`
	Utilities int64 `json:"utilities"`
	Internet  int64 `json:"internet"`
	Health    int64 `json:"health"`
	Fun       int64 `json:"fun"`
}

// Amount returns the value recorded for a category.
func (b Breakdown) Amount(c Category) int64 {
	switch c {
	case Rent:
		return b.Rent
	case Food:
		return b.Food
	case Transport:
		return b.Transport
	case Utilities:
		return b.Utilities
	case Internet:
		return b.Internet
	case Health:
		return b.Health
	case Fun:
		return b.Fun
	default:
		return 0
	}
}

// Sum adds every category.
func (b Breakdown) Sum() int64 {
	return mathutil.Sum(b.Rent, b.Food, b.Transport, b.Utilities, b.Internet, b.Health, b.Fun)
}

// Result is the outcome of an estimate.
type Result struct {
	Breakdown  Breakdown  `json:"breakdown"`
	Total      int64      `json:"total"`
	Confidence Confidence `json:"confidence"`
}

// Share is one category's portion of the total.
type Share struct {
	Category Category `json:"category"`
	Label    string   `json:"label"`
	Amount   int64    `json:"amount"`
	Percent  int64    `json:"percent"`
}

// Shares returns every category with its whole percentage of the total.
func (r Result) Shares() []Share {
	shares := make([]Share, 0, len(Categories))
	for _, c := range Categories {
		amount := r.Breakdown.Amount(c)
		shares = append(shares, Share{
			Category: c,
			Label:    c.Label(),
			Amount:   amount,
			Percent:  mathutil.CalculatePercentage(amount, r.Total),
		})
	}
	return shares
}

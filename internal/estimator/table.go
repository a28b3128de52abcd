package estimator

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed destinations.yaml
var defaultTableYAML []byte

// Table is the read-only set of destination profiles. A Table is never
// modified after it is built, so it may be shared between goroutines.
type Table struct {
	profiles map[string]CountryProfile
	keys     []string
}

// Destination is the listing view of a profile.
type Destination struct {
	Key        string     `json:"key"`
	Name       string     `json:"name"`
	Code       string     `json:"code"`
	Confidence Confidence `json:"confidence"`
}

type tableFile struct {
	Destinations []CountryProfile `yaml:"destinations"`
}

// DefaultTable returns the table compiled into the binary.
func DefaultTable() (*Table, error) {
	return LoadTable(bytes.NewReader(defaultTableYAML))
}

// LoadTableFile reads a YAML table from disk.
func LoadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open destination table: %w", err)
	}
	defer func() { _ = f.Close() }()

	return LoadTable(f)
}

// LoadTable decodes and validates a YAML table.
func LoadTable(r io.Reader) (*Table, error) {
	var file tableFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse destination table: %w", err)
	}
	return NewTable(file.Destinations)
}

// NewTable builds a Table from profiles after validating each one.
func NewTable(profiles []CountryProfile) (*Table, error) {
	if len(profiles) == 0 {
		return nil, fmt.Errorf("destination table is empty")
	}

	t := &Table{profiles: make(map[string]CountryProfile, len(profiles))}
	for _, p := range profiles {
		if err := validateProfile(p); err != nil {
			return nil, err
		}
		if _, dup := t.profiles[p.Key]; dup {
			return nil, fmt.Errorf("destination %q defined more than once", p.Key)
		}
		t.profiles[p.Key] = copyProfile(p)
		t.keys = append(t.keys, p.Key)
	}
	sort.Strings(t.keys)
	return t, nil
}

// Lookup returns the profile for a key.
func (t *Table) Lookup(key string) (CountryProfile, bool) {
	p, ok := t.profiles[key]
	if !ok {
		return CountryProfile{}, false
	}
	return copyProfile(p), true
}

// Destinations lists every profile, sorted by key.
func (t *Table) Destinations() []Destination {
	out := make([]Destination, 0, len(t.keys))
	for _, k := range t.keys {
		p := t.profiles[k]
		out = append(out, Destination{Key: p.Key, Name: p.Name, Code: p.Code, Confidence: p.Confidence})
	}
	return out
}

// Len is the number of destinations.
func (t *Table) Len() int {
	return len(t.keys)
}

func validateProfile(p CountryProfile) error {
	if strings.TrimSpace(p.Key) == "" {
		return fmt.Errorf("destination with name %q has no key", p.Name)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("destination %q has no name", p.Key)
	}
	if !p.Confidence.valid() {
		return fmt.Errorf("destination %q: invalid confidence %q", p.Key, p.Confidence)
	}

	for _, h := range HousingTypes {
		r, ok := p.Rent[h]
		if !ok {
			return fmt.Errorf("destination %q: missing rent for %s", p.Key, h)
		}
		if err := r.Validate(); err != nil {
			return fmt.Errorf("destination %q: rent %s: %w", p.Key, h, err)
		}
	}
	for _, l := range Lifestyles {
		for name, ranges := range map[string]map[Lifestyle]Range{"food": p.Food, "fun": p.Fun} {
			r, ok := ranges[l]
			if !ok {
				return fmt.Errorf("destination %q: missing %s for %s", p.Key, name, l)
			}
			if err := r.Validate(); err != nil {
				return fmt.Errorf("destination %q: %s %s: %w", p.Key, name, l, err)
			}
		}
	}
	for name, r := range map[string]Range{
		"transport": p.Transport,
		"utilities": p.Utilities,
		"internet":  p.Internet,
		"health":    p.Health,
	} {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("destination %q: %s: %w", p.Key, name, err)
		}
	}
	return nil
}

func copyProfile(p CountryProfile) CountryProfile {
	out := p
	out.Rent = make(map[HousingType]Range, len(p.Rent))
	for k, v := range p.Rent {
		out.Rent[k] = v
	}
	out.Food = make(map[Lifestyle]Range, len(p.Food))
	for k, v := range p.Food {
		out.Food[k] = v
	}
	out.Fun = make(map[Lifestyle]Range, len(p.Fun))
	for k, v := range p.Fun {
		out.Fun[k] = v
	}
	return out
}

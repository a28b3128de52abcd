package estimator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const singleDestination = `destinations:
  - key: testland
    name: Testland
    code: TL
    confidence: Low
    rent:
      room: [100, 200]
      studio: [200, 300]
      "1br": [300, 400]
      "2br": [400, 500]
    food:
      budget: [100, 150]
      comfortable: [150, 200]
      premium: [200, 300]
    transport: [10, 20]
    utilities: [20, 40]
    internet: [5, 10]
    health: [30, 60]
    fun:
      budget: [10, 20]
      comfortable: [20, 40]
      premium: [40, 80]
`

func TestDefaultTable(t *testing.T) {
	table, err := DefaultTable()
	if err != nil {
		t.Fatalf("DefaultTable() error = %v", err)
	}

	if table.Len() != 9 {
		t.Fatalf("expected 9 destinations, got %d", table.Len())
	}

	dests := table.Destinations()
	for i := 1; i < len(dests); i++ {
		if dests[i-1].Key >= dests[i].Key {
			t.Fatalf("destinations not sorted: %s before %s", dests[i-1].Key, dests[i].Key)
		}
	}

	expectedConfidence := map[string]Confidence{
		"thailand": High,
		"vietnam":  High,
		"portugal": High,
		"spain":    High,
		"mexico":   High,
		"canada":   High,
		"japan":    Medium,
		"uae":      Medium,
		"estonia":  Medium,
	}
	for key, conf := range expectedConfidence {
		p, ok := table.Lookup(key)
		if !ok {
			t.Fatalf("expected destination %s", key)
		}
		if p.Confidence != conf {
			t.Errorf("%s confidence = %s, expected %s", key, p.Confidence, conf)
		}
	}

	th, _ := table.Lookup("thailand")
	if th.Code != "TH" || th.Rent[Studio] != (Range{Min: 250, Max: 500}) {
		t.Errorf("unexpected thailand profile: %+v", th)
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	table, err := DefaultTable()
	if err != nil {
		t.Fatalf("DefaultTable() error = %v", err)
	}

	p, _ := table.Lookup("thailand")
	p.Rent[Studio] = Range{Min: 1, Max: 1}

	again, _ := table.Lookup("thailand")
	if again.Rent[Studio] != (Range{Min: 250, Max: 500}) {
		t.Fatalf("table was mutated through Lookup: %+v", again.Rent[Studio])
	}
}

func TestLoadTableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "destinations.yaml")
	if err := os.WriteFile(path, []byte(singleDestination), 0600); err != nil {
		t.Fatalf("failed to write table: %v", err)
	}

	table, err := LoadTableFile(path)
	if err != nil {
		t.Fatalf("LoadTableFile() error = %v", err)
	}
	if table.Len() != 1 {
		t.Fatalf("expected 1 destination, got %d", table.Len())
	}

	result, err := New(table).Estimate(Request{
		Destination: "testland",
		Lifestyle:   Comfortable,
		StayLength:  3,
		Housing:     Room,
		Traveler:    Solo,
		WorkStyle:   Remote,
	})
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	// 150 + 175 + 15 + 30 + 8 (7.5) + 45 + 30
	if result.Total != 453 || result.Confidence != Low {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestLoadTableFileMissing(t *testing.T) {
	if _, err := LoadTableFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadTableRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "Min above max",
			yaml:    strings.Replace(singleDestination, "transport: [10, 20]", "transport: [30, 20]", 1),
			wantErr: "min above max",
		},
		{
			name:    "Negative bound",
			yaml:    strings.Replace(singleDestination, "internet: [5, 10]", "internet: [-5, 10]", 1),
			wantErr: "negative",
		},
		{
			name:    "Missing housing type",
			yaml:    strings.Replace(singleDestination, "      \"2br\": [400, 500]\n", "", 1),
			wantErr: "missing rent for 2br",
		},
		{
			name:    "Missing tier",
			yaml:    strings.Replace(singleDestination, "      premium: [40, 80]\n", "", 1),
			wantErr: "missing fun for premium",
		},
		{
			name:    "Bad confidence",
			yaml:    strings.Replace(singleDestination, "confidence: Low", "confidence: Certain", 1),
			wantErr: "invalid confidence",
		},
		{
			name:    "Range with three values",
			yaml:    strings.Replace(singleDestination, "health: [30, 60]", "health: [30, 60, 90]", 1),
			wantErr: "exactly two values",
		},
		{
			name:    "Unknown field",
			yaml:    strings.Replace(singleDestination, "code: TL", "code: TL\n    currency: USD", 1),
			wantErr: "currency",
		},
		{
			name:    "Duplicate key",
			yaml:    singleDestination + strings.TrimPrefix(singleDestination, "destinations:\n"),
			wantErr: "more than once",
		},
		{
			name:    "Empty table",
			yaml:    "destinations: []\n",
			wantErr: "empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTable(strings.NewReader(tt.yaml))
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

package region

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	c := Default()

	tests := []struct {
		country string
		want    Region
	}{
		{"United States", NA},
		{"USA", NA},
		{"usa", NA},
		{"  Canada  ", NA},
		{"MEXICO", NA},
		{"Germany", EU},
		{"germany", EU},
		{"Northern Ireland", EU},
		{"United Kingdom", EU},
		{"Unknownland", Other},
		{"Unknown", Other},
		{"Brazil", Other},
		{"", Other},
		{"   ", Other},
	}

	for _, tt := range tests {
		t.Run(tt.country, func(t *testing.T) {
			if got := c.Classify(tt.country); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.country, got, tt.want)
			}
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	c := Default()

	for _, country := range []string{"France", "Japan", "", "usa"} {
		first := c.Classify(country)
		for i := 0; i < 5; i++ {
			if got := c.Classify(country); got != first {
				t.Fatalf("Classify(%q) changed from %q to %q", country, first, got)
			}
		}
	}
}

func TestNewClassifier_CustomConfig(t *testing.T) {
	c, err := NewClassifier(Config{
		NA: []string{"Canada"},
		EU: []string{"Spain", ""},
	})
	if err != nil {
		t.Fatalf("NewClassifier() error: %v", err)
	}

	if got := c.Classify("canada"); got != NA {
		t.Errorf("Classify(canada) = %q, want NA", got)
	}
	if got := c.Classify("United States"); got != Other {
		t.Errorf("Classify(United States) = %q, want Other with custom config", got)
	}
	if got := c.Classify(""); got != Other {
		t.Errorf("Classify(\"\") = %q, want Other", got)
	}
}

func TestNewClassifier_Overlap(t *testing.T) {
	_, err := NewClassifier(Config{
		NA: []string{"Canada"},
		EU: []string{"CANADA"},
	})
	if err == nil {
		t.Fatal("NewClassifier() expected error for overlapping country, got nil")
	}
	if !strings.Contains(err.Error(), "both") {
		t.Errorf("error = %q, should mention both regions", err.Error())
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Region
		wantErr bool
	}{
		{"NA", NA, false},
		{"eu", EU, false},
		{"Other", Other, false},
		{" other ", Other, false},
		{"APAC", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestAll(t *testing.T) {
	all := All()
	if len(all) != 3 || all[0] != NA || all[1] != EU || all[2] != Other {
		t.Errorf("All() = %v, want [NA EU Other]", all)
	}
}

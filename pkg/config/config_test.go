package config

import (
	"errors"
	"testing"

	"github.com/proximadb/proximadb/pkg/vector"
)

func TestDefaultMatchesExplicitConstruction(t *testing.T) {
	explicit, err := New(40, 15, 0.2885, vector.Euclidean)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if explicit != Default() {
		t.Errorf("New(40, 15, 0.2885, euclidean) = %+v, want %+v", explicit, Default())
	}
}

func TestCreateDefaultIsAliasForDefault(t *testing.T) {
	if CreateDefault() != Default() {
		t.Errorf("CreateDefault() != Default()")
	}
}

func TestValidateRejectsNonPositiveValues(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero ef_construction", Config{EfConstruction: 0, EfSearch: 15, Ml: 0.2885, Distance: vector.Euclidean}},
		{"negative ef_construction", Config{EfConstruction: -1, EfSearch: 15, Ml: 0.2885, Distance: vector.Euclidean}},
		{"zero ef_search", Config{EfConstruction: 40, EfSearch: 0, Ml: 0.2885, Distance: vector.Euclidean}},
		{"negative ml", Config{EfConstruction: 40, EfSearch: 15, Ml: -0.1, Distance: vector.Euclidean}},
		{"zero ml", Config{EfConstruction: 40, EfSearch: 15, Ml: 0, Distance: vector.Euclidean}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestValidateRejectsUnknownMetric(t *testing.T) {
	cfg := Config{EfConstruction: 40, EfSearch: 15, Ml: 0.2885, Distance: vector.Metric("manhattan")}
	if err := cfg.Validate(); !errors.Is(err, vector.ErrUnknownMetric) {
		t.Errorf("Validate() = %v, want ErrUnknownMetric", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	if _, err := New(0, 15, 0.2885, vector.Euclidean); err == nil {
		t.Errorf("expected error constructing Config with ef_construction=0")
	}
}

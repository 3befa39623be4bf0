package knowledge

import (
	"math"
	"testing"
	"time"

	"github.com/abhisek/masteryrank/internal/apperr"
)

func TestParamsValidate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("default params: %v", err)
	}

	tests := []struct {
		name  string
		tweak func(p *Params)
	}{
		{"init above one", func(p *Params) { p.PInit = 1.2 }},
		{"learn negative", func(p *Params) { p.PLearn = -0.1 }},
		{"slip NaN", func(p *Params) { p.PSlip = math.NaN() }},
		{"guess NaN", func(p *Params) { p.PGuess = math.NaN() }},
		{"init NaN", func(p *Params) { p.PInit = math.NaN() }},
		{"forget zero", func(p *Params) { p.PForget = 0 }},
		{"forget NaN", func(p *Params) { p.PForget = math.NaN() }},
		{"forget infinite", func(p *Params) { p.PForget = math.Inf(1) }},
		{"negative horizon", func(p *Params) { p.Horizon = -time.Hour }},
		{"fast answer NaN", func(p *Params) { p.FastAnswerSeconds = math.NaN() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.tweak(&p)
			if err := p.Validate(); !apperr.IsValidation(err) {
				t.Fatalf("expected a validation error, got %v", err)
			}
		})
	}
}

func TestParamsFingerprint(t *testing.T) {
	a := DefaultParams()
	b := DefaultParams()
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatal("equal params must share a fingerprint")
	}

	b.PForget = 0.2
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("changed forget rate must change the fingerprint")
	}

	c := DefaultParams()
	c.Horizon = 14 * 24 * time.Hour
	if a.Fingerprint() != c.Fingerprint() {
		t.Error("horizon only affects forecasts and must not change the fingerprint")
	}
}

package behavior

import (
	"math"
	"testing"

	"github.com/abhisek/masteryrank/internal/apperr"
)

func f64(v float64) *float64 { return &v }

func TestValidateItem(t *testing.T) {
	tests := []struct {
		name  string
		item  Item
		valid bool
	}{
		{"minimal", Item{ID: "q1"}, true},
		{"difficulty unset", Item{ID: "q1", Difficulty: 0}, true},
		{"difficulty lower bound", Item{ID: "q1", Difficulty: 1}, true},
		{"difficulty upper bound", Item{ID: "q1", Difficulty: 5}, true},
		{"fractional difficulty", Item{ID: "q1", Difficulty: 2.5}, true},
		{"difficulty between unset and one", Item{ID: "q1", Difficulty: 0.5}, false},
		{"difficulty above five", Item{ID: "q1", Difficulty: 5.5}, false},
		{"negative difficulty", Item{ID: "q1", Difficulty: -1}, false},
		{"NaN difficulty", Item{ID: "q1", Difficulty: math.NaN()}, false},
		{"missing id", Item{}, false},
		{"unknown type", Item{ID: "q1", Type: "podcast"}, false},
		{"average score NaN", Item{ID: "q1", AvgScore: f64(math.NaN())}, false},
		{"average score above 100", Item{ID: "q1", AvgScore: f64(101)}, false},
		{"negative practice count", Item{ID: "q1", PracticeCount: -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItem(tt.item)
			if tt.valid {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !apperr.IsValidation(err) {
				t.Fatalf("expected a validation error, got %v", err)
			}
		})
	}
}

func TestCatalogPutRejectsInvalid(t *testing.T) {
	c := NewCatalog()
	if err := c.Put(Item{ID: "q1", Difficulty: 0.5}); err == nil {
		t.Fatal("expected an error")
	}
	if c.Len() != 0 {
		t.Fatalf("invalid item was stored, len = %d", c.Len())
	}
}

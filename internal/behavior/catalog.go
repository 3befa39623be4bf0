package behavior

import (
	"math"
	"sort"

	"github.com/abhisek/masteryrank/internal/apperr"
)

// Catalog is a snapshot of the item catalog keyed by item ID.
type Catalog struct {
	items map[string]Item
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{items: make(map[string]Item)}
}

// Put inserts or replaces an item.
func (c *Catalog) Put(it Item) error {
	if err := ValidateItem(it); err != nil {
		return err
	}
	c.items[it.ID] = it
	return nil
}

// ValidateItem checks an item against the catalog constraints.
func ValidateItem(it Item) error {
	if it.ID == "" {
		return apperr.Invalid("id", "must not be empty")
	}
	if it.Type != "" && !it.Type.Valid() {
		return apperr.Invalid("type", "unknown item type %q", it.Type)
	}
	if d := it.Difficulty; d != 0 && !(d >= 1 && d <= 5) {
		return apperr.Invalid("difficulty", "must be within [1,5] or unset, got %v", it.Difficulty)
	}
	if it.AvgScore != nil && (math.IsNaN(*it.AvgScore) || *it.AvgScore < 0 || *it.AvgScore > 100) {
		return apperr.Invalid("avgScore", "must be within [0,100], got %v", *it.AvgScore)
	}
	if it.PracticeCount < 0 {
		return apperr.Invalid("practiceCount", "must be >= 0, got %d", it.PracticeCount)
	}
	return nil
}

// Get looks up an item by ID.
func (c *Catalog) Get(id string) (Item, bool) {
	it, ok := c.items[id]
	return it, ok
}

// All returns every item sorted by ID.
func (c *Catalog) All() []Item {
	out := make([]Item, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// OfType returns every item of the given type sorted by ID. An empty type
// returns the full catalog.
func (c *Catalog) OfType(t ItemType) []Item {
	all := c.All()
	if t == "" {
		return all
	}
	out := all[:0]
	for _, it := range all {
		if it.Type == t {
			out = append(out, it)
		}
	}
	return out
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Reset drops every item.
func (c *Catalog) Reset() {
	c.items = make(map[string]Item)
}

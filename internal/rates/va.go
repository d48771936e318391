package rates

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"
)

type vaKey struct {
	Rating     int
	Dependents string
}

// VATable maps (disability rating, dependents category) to monthly
// dollars. Dependents aliases are collapsed to one canonical category
// per alias table at load time, so every call site sees a single
// spelling and lookups never fall through to ad hoc string matching.
type VATable struct {
	rates     map[vaKey]float64
	aliases   map[string]string
	canonical map[string]bool
}

type vaFile struct {
	Aliases map[string]string `json:"aliases"`
	Rates   []vaRateRow       `json:"rates"`
}

type vaRateRow struct {
	Rating     int     `json:"rating"`
	Dependents string  `json:"dependents"`
	Monthly    float64 `json:"monthly"`
}

// LoadVATable parses and validates the VA rate file. Ratings must be
// whole decades in [0,100]; alias targets must name a canonical
// category that actually appears in the rates; an alias spelling that
// is itself canonical would make normalization ambiguous and fails the
// load.
func LoadVATable(path string) (*VATable, error) {
	data, err := readRatesFile(path)
	if err != nil {
		return nil, err
	}

	var file vaFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %v: %w", filepath.Base(path), err, ErrRatesMalformed)
	}

	t := &VATable{
		rates:     make(map[vaKey]float64, len(file.Rates)),
		aliases:   make(map[string]string, len(file.Aliases)),
		canonical: make(map[string]bool),
	}

	for i, row := range file.Rates {
		if row.Rating < 0 || row.Rating > 100 || row.Rating%10 != 0 {
			return nil, fmt.Errorf("va rate row %d: rating %d not a decade in [0,100]: %w", i, row.Rating, ErrRatesMalformed)
		}
		if row.Dependents == "" {
			return nil, fmt.Errorf("va rate row %d: empty dependents category: %w", i, ErrRatesMalformed)
		}
		if row.Monthly < 0 || math.IsNaN(row.Monthly) || math.IsInf(row.Monthly, 0) {
			return nil, fmt.Errorf("va rate row %d: monthly amount %v invalid: %w", i, row.Monthly, ErrRatesMalformed)
		}
		key := vaKey{Rating: row.Rating, Dependents: row.Dependents}
		if _, dup := t.rates[key]; dup {
			return nil, fmt.Errorf("va rate row %d: duplicate entry for rating %d / %s: %w", i, row.Rating, row.Dependents, ErrRatesMalformed)
		}
		t.rates[key] = row.Monthly
		t.canonical[row.Dependents] = true
	}

	for alias, target := range file.Aliases {
		if alias == "" || target == "" {
			return nil, fmt.Errorf("empty alias mapping: %w", ErrRatesMalformed)
		}
		if !t.canonical[target] {
			return nil, fmt.Errorf("alias %q targets unknown category %q: %w", alias, target, ErrRatesMalformed)
		}
		if t.canonical[alias] {
			return nil, fmt.Errorf("alias %q is itself a canonical category: %w", alias, ErrRatesMalformed)
		}
		t.aliases[alias] = target
	}

	return t, nil
}

// Normalize maps a dependents spelling to its canonical category.
// Unknown spellings pass through unchanged; the subsequent lookup
// reports the miss.
func (t *VATable) Normalize(dependents string) string {
	d := strings.ToLower(strings.TrimSpace(dependents))
	if target, ok := t.aliases[d]; ok {
		return target
	}
	return d
}

// Lookup returns the monthly benefit for a rating and dependents
// category. A miss returns (0, false); a genuine zero-dollar entry
// returns (0, true).
func (t *VATable) Lookup(rating int, dependents string) (float64, bool) {
	monthly, ok := t.rates[vaKey{Rating: rating, Dependents: t.Normalize(dependents)}]
	return monthly, ok
}

// Categories returns the canonical dependents categories sorted for
// stable presentation.
func (t *VATable) Categories() []string {
	out := make([]string, 0, len(t.canonical))
	for c := range t.canonical {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func (t *VATable) Len() int {
	return len(t.rates)
}

package rates

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/guidedcare/pathway/internal/domain"
)

// HomeCostTable maps ZIP codes to per-setting monthly median costs.
type HomeCostTable struct {
	zips map[string]map[domain.CareSetting]float64
}

// LoadHomeCosts parses and validates the regional cost file: a JSON
// object of ZIP -> setting -> monthly dollars. ZIPs must be five
// digits; settings must belong to the closed enumeration.
func LoadHomeCosts(path string) (*HomeCostTable, error) {
	data, err := readRatesFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %v: %w", filepath.Base(path), err, ErrRatesMalformed)
	}

	t := &HomeCostTable{zips: make(map[string]map[domain.CareSetting]float64, len(raw))}
	for zip, costs := range raw {
		if !validZIP(zip) {
			return nil, fmt.Errorf("home cost entry %q: not a five-digit ZIP: %w", zip, ErrRatesMalformed)
		}
		entry := make(map[domain.CareSetting]float64, len(costs))
		for setting, monthly := range costs {
			if !domain.ValidSetting(setting) {
				return nil, fmt.Errorf("home cost entry %q: unknown setting %q: %w", zip, setting, ErrRatesMalformed)
			}
			if monthly < 0 || math.IsNaN(monthly) || math.IsInf(monthly, 0) {
				return nil, fmt.Errorf("home cost entry %q/%s: amount %v invalid: %w", zip, setting, monthly, ErrRatesMalformed)
			}
			entry[domain.CareSetting(setting)] = monthly
		}
		t.zips[zip] = entry
	}

	return t, nil
}

// Lookup returns the monthly median for a ZIP and setting. ZIP+4
// input is reduced to its five-digit prefix. A miss, whether the ZIP
// is unknown or the setting has no figure for that ZIP, returns
// (0, false).
func (t *HomeCostTable) Lookup(zip string, setting domain.CareSetting) (float64, bool) {
	entry, ok := t.zips[NormalizeZIP(zip)]
	if !ok {
		return 0, false
	}
	monthly, ok := entry[setting]
	return monthly, ok
}

func (t *HomeCostTable) Len() int {
	return len(t.zips)
}

// NormalizeZIP trims whitespace and reduces ZIP+4 forms to the base
// five digits. Values that do not normalize to five digits are
// returned as-is and will simply miss.
func NormalizeZIP(zip string) string {
	z := strings.TrimSpace(zip)
	if i := strings.IndexByte(z, '-'); i >= 0 {
		z = z[:i]
	}
	return z
}

func validZIP(zip string) bool {
	if len(zip) != 5 {
		return false
	}
	for i := 0; i < len(zip); i++ {
		if zip[i] < '0' || zip[i] > '9' {
			return false
		}
	}
	return true
}

// Package rates holds the satellite lookup tables the cost planner
// consults: VA disability compensation by (rating, dependents) and
// regional home costs by ZIP. Lookups distinguish "no data" from a
// zero dollar amount; a miss is a defined result the caller handles by
// falling back to manual entry, never an error.
package rates

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/guidedcare/pathway/internal/domain"
	"go.uber.org/zap"
)

const (
	VAFileName        = "va_rates.json"
	HomeCostsFileName = "home_costs.json"
)

var (
	ErrConfigMissing  = errors.New("required rates file missing")
	ErrRatesMalformed = errors.New("rates table malformed")
)

type tables struct {
	va   *VATable
	home *HomeCostTable
}

// Service serves rate lookups from hot-swappable tables. Like the
// scoring engine, the loaded tables are read-only and replaced
// wholesale behind an atomic pointer on reload.
type Service struct {
	dir    string
	logger *zap.Logger
	tables atomic.Pointer[tables]
}

func NewService(dir string, logger *zap.Logger) *Service {
	return &Service{dir: dir, logger: logger}
}

// Load performs the initial table load. Missing or malformed rate
// files are fatal at startup.
func (s *Service) Load() error {
	t, err := s.load()
	if err != nil {
		return err
	}
	s.tables.Store(t)
	s.logger.Info("rate tables loaded",
		zap.Int("va_entries", t.va.Len()),
		zap.Int("home_cost_zips", t.home.Len()))
	return nil
}

// Reload swaps in fresh tables; on failure the previous tables stay
// live.
func (s *Service) Reload() error {
	t, err := s.load()
	if err != nil {
		s.logger.Error("rate table reload failed", zap.Error(err))
		return err
	}
	s.tables.Store(t)
	s.logger.Info("rate tables reloaded",
		zap.Int("va_entries", t.va.Len()),
		zap.Int("home_cost_zips", t.home.Len()))
	return nil
}

func (s *Service) load() (*tables, error) {
	va, err := LoadVATable(filepath.Join(s.dir, VAFileName))
	if err != nil {
		return nil, err
	}
	home, err := LoadHomeCosts(filepath.Join(s.dir, HomeCostsFileName))
	if err != nil {
		return nil, err
	}
	return &tables{va: va, home: home}, nil
}

// VA looks up the monthly VA benefit for a disability rating and
// dependents category. The second return is false on a miss.
func (s *Service) VA(rating int, dependents string) (float64, bool) {
	t := s.tables.Load()
	if t == nil {
		return 0, false
	}
	return t.va.Lookup(rating, dependents)
}

// HomeCost looks up the regional monthly median for a ZIP and setting.
func (s *Service) HomeCost(zip string, setting domain.CareSetting) (float64, bool) {
	t := s.tables.Load()
	if t == nil {
		return 0, false
	}
	return t.home.Lookup(zip, setting)
}

// Dependents returns the canonical dependents categories for UI
// dropdowns.
func (s *Service) Dependents() []string {
	t := s.tables.Load()
	if t == nil {
		return nil
	}
	return t.va.Categories()
}

func readRatesFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrConfigMissing)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

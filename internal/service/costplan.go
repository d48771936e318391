package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/guidedcare/pathway/internal/domain"
	"github.com/guidedcare/pathway/internal/rates"
)

// Cost planner constants
const (
	DefaultHorizonMonths = 12  // projection window when the caller gives none
	MaxHorizonMonths     = 120 // ten years; beyond that the numbers are noise
)

// Base cost provenance recorded on every estimate.
const (
	BaseSourceRegional = "regional_median"
	BaseSourceManual   = "manual"
)

var (
	ErrInvalidEstimate = errors.New("invalid estimate input")

	// ErrNoRegionalRate means the ZIP/setting pair has no median on
	// file and the caller gave no manual base. The caller falls back to
	// manual entry; this is the LookupMiss surfaced, never a zero.
	ErrNoRegionalRate = errors.New("no regional rate for location")
)

// EstimateInput describes one cost projection request. Either
// AssessmentID (care setting taken from the unlocked handoff) or
// Setting (manual mode) must be given. MonthlyBase overrides the
// regional median when the caller already knows their local cost.
type EstimateInput struct {
	AssessmentID *uuid.UUID         `json:"assessment_id,omitempty"`
	Setting      domain.CareSetting `json:"setting,omitempty"`
	ZIP          string             `json:"zip,omitempty"`
	MonthlyBase  *float64           `json:"monthly_base,omitempty"`
	VARating     *int               `json:"va_rating,omitempty"`
	VADependents string             `json:"va_dependents,omitempty"`
	Months       int                `json:"months,omitempty"`
}

// Estimate is one cost projection. VAFound distinguishes "no benefit
// data for that rating/dependents pair" from a zero-dollar benefit.
type Estimate struct {
	Setting        domain.CareSetting `json:"setting"`
	ZIP            string             `json:"zip,omitempty"`
	MonthlyBase    float64            `json:"monthly_base"`
	BaseSource     string             `json:"base_source"`
	VAOffset       float64            `json:"va_offset"`
	VAFound        bool               `json:"va_found"`
	MonthlyNet     float64            `json:"monthly_net"`
	Months         int                `json:"months"`
	ProjectedTotal float64            `json:"projected_total"`
	GeneratedAt    time.Time          `json:"generated_at"`
}

// CostPlanner builds cost projections from regional medians, manual
// overrides and VA benefit offsets.
type CostPlanner struct {
	rates  *rates.Service
	gating *GatingService
	logger *zap.Logger
}

func NewCostPlanner(rates *rates.Service, gating *GatingService, logger *zap.Logger) *CostPlanner {
	return &CostPlanner{
		rates:  rates,
		gating: gating,
		logger: logger,
	}
}

// Estimate produces a projection for the client. Assessment-linked
// estimates require the assessment to be unlocked; the recommended
// setting then comes from the handoff record.
func (s *CostPlanner) Estimate(ctx context.Context, clientID uuid.UUID, in EstimateInput) (*Estimate, error) {
	setting := in.Setting
	if in.AssessmentID != nil {
		rec, err := s.gating.Handoff(ctx, *in.AssessmentID, clientID)
		if err != nil {
			return nil, err
		}
		setting = rec.Recommendation
	}
	if !domain.ValidSetting(string(setting)) {
		return nil, fmt.Errorf("%w: unknown care setting %q", ErrInvalidEstimate, setting)
	}

	est := &Estimate{
		Setting:     setting,
		ZIP:         rates.NormalizeZIP(in.ZIP),
		Months:      clampMonths(in.Months),
		GeneratedAt: time.Now().UTC(),
	}

	switch {
	case in.MonthlyBase != nil:
		if *in.MonthlyBase < 0 {
			return nil, fmt.Errorf("%w: negative monthly base", ErrInvalidEstimate)
		}
		est.MonthlyBase = *in.MonthlyBase
		est.BaseSource = BaseSourceManual
	default:
		monthly, ok := s.rates.HomeCost(in.ZIP, setting)
		if !ok {
			return nil, fmt.Errorf("%w: zip %q, setting %q", ErrNoRegionalRate, in.ZIP, setting)
		}
		est.MonthlyBase = monthly
		est.BaseSource = BaseSourceRegional
	}

	if in.VARating != nil {
		offset, ok := s.rates.VA(*in.VARating, in.VADependents)
		est.VAFound = ok
		if ok {
			est.VAOffset = offset
		} else {
			s.logger.Debug("va rate miss",
				zap.Int("rating", *in.VARating),
				zap.String("dependents", in.VADependents),
			)
		}
	}

	est.MonthlyNet = est.MonthlyBase - est.VAOffset
	if est.MonthlyNet < 0 {
		est.MonthlyNet = 0
	}
	est.ProjectedTotal = est.MonthlyNet * float64(est.Months)

	return est, nil
}

func clampMonths(m int) int {
	if m <= 0 {
		return DefaultHorizonMonths
	}
	if m > MaxHorizonMonths {
		return MaxHorizonMonths
	}
	return m
}

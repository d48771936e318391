package scoring

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/guidedcare/pathway/internal/domain"
)

// ErrInvalidOutcome marks an internal invariant violation: the
// resolver handed the builder a recommendation outside the closed
// setting enumeration or a confidence outside [0,1]. Clamping here
// could mask a real weighting bug, so the build fails instead.
var ErrInvalidOutcome = errors.New("invalid outcome")

// OutcomeInput carries everything the contract builder assembles into
// an OutcomeContract. The builder validates; it never recomputes.
type OutcomeInput struct {
	Recommendation domain.CareSetting
	Confidence     float64
	Domains        domain.DomainScores
	Flags          domain.FlagSet
	Tags           []string
	Totals         map[domain.CareSetting]float64
	Routing        domain.Routing
	Trace          []domain.TraceEntry
	Answered       int
	TotalQuestions int
	EngineVersion  string
	ConfigDigest   string
}

// BuildOutcome assembles and validates the immutable outcome contract.
// Out-of-enum recommendations and out-of-range confidence fail with
// ErrInvalidOutcome. A re-scored assessment gets a whole new contract;
// nothing ever mutates an existing one in place.
func BuildOutcome(in OutcomeInput) (*domain.OutcomeContract, error) {
	if !domain.ValidSetting(string(in.Recommendation)) {
		return nil, fmt.Errorf("recommendation %q outside setting enumeration: %w", in.Recommendation, ErrInvalidOutcome)
	}
	if math.IsNaN(in.Confidence) || in.Confidence < 0 || in.Confidence > 1 {
		return nil, fmt.Errorf("confidence %v outside [0,1]: %w", in.Confidence, ErrInvalidOutcome)
	}
	switch in.Routing.Channel {
	case domain.ChannelSelfServe, domain.ChannelAdvisor:
	default:
		return nil, fmt.Errorf("unknown routing channel %q: %w", in.Routing.Channel, ErrInvalidOutcome)
	}

	domains := in.Domains.Clone()
	if domains == nil {
		domains = domain.DomainScores{}
	}

	totals := make(map[domain.CareSetting]float64, len(in.Totals))
	for s, v := range in.Totals {
		totals[s] = v
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	return &domain.OutcomeContract{
		SchemaVersion:  domain.ContractSchemaVersion,
		Recommendation: in.Recommendation,
		Confidence:     in.Confidence,
		DomainScores:   domains,
		Flags:          in.Flags.Sorted(),
		Tags:           tags,
		Summary: domain.Summary{
			TotalScore: totals[in.Recommendation],
			Tier:       in.Recommendation,
			Points:     totals,
		},
		Routing: in.Routing,
		Audit: domain.Audit{
			EngineVersion:  in.EngineVersion,
			ConfigDigest:   in.ConfigDigest,
			ScoredAt:       time.Now().UTC(),
			Answered:       in.Answered,
			TotalQuestions: in.TotalQuestions,
			Trace:          in.Trace,
		},
	}, nil
}

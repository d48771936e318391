package scoring

import (
	"fmt"
	"sync/atomic"

	"github.com/guidedcare/pathway/internal/domain"
	"go.uber.org/zap"
)

// Engine runs the scoring pipeline over a hot-swappable configuration
// bundle. Scoring itself is pure and synchronous; the only shared
// state is the read-only bundle behind the atomic pointer, so
// concurrent assessments never contend and a reload never exposes a
// half-updated table to an in-flight score.
type Engine struct {
	dir     string
	version string
	logger  *zap.Logger
	bundle  atomic.Pointer[Bundle]
}

// NewEngine creates an engine reading configuration from dir. Call
// Load before the first Score.
func NewEngine(dir, version string, logger *zap.Logger) *Engine {
	return &Engine{
		dir:     dir,
		version: version,
		logger:  logger,
	}
}

// Load performs the initial bundle load. Failure here is fatal at
// startup: the system cannot score without its tables.
func (e *Engine) Load() error {
	bundle, err := LoadBundle(e.dir)
	if err != nil {
		return err
	}
	e.bundle.Store(bundle)
	e.logger.Info("scoring configuration loaded",
		zap.String("digest", bundle.Digest),
		zap.Int("questions", bundle.Schema.Len()),
		zap.Int("scoring_entries", bundle.Table.Len()),
		zap.Int("flags", len(bundle.Flags)))
	return nil
}

// Reload builds a fresh bundle from disk and swaps it in atomically.
// On failure the previous bundle stays live, so a bad config push
// never takes scoring down.
func (e *Engine) Reload() error {
	bundle, err := LoadBundle(e.dir)
	if err != nil {
		e.logger.Error("scoring configuration reload failed", zap.Error(err))
		return err
	}
	old := e.bundle.Swap(bundle)
	oldDigest := ""
	if old != nil {
		oldDigest = old.Digest
	}
	e.logger.Info("scoring configuration reloaded",
		zap.String("digest", bundle.Digest),
		zap.String("previous_digest", oldDigest))
	return nil
}

// Bundle returns the currently published bundle, or nil before Load.
func (e *Engine) Bundle() *Bundle {
	return e.bundle.Load()
}

// Version returns the engine version stamped into contract audits.
func (e *Engine) Version() string {
	return e.version
}

// Score runs the full pipeline over one answer set: aggregate, resolve,
// derive tags and routing from the raised flags, and build the outcome
// contract.
func (e *Engine) Score(answers domain.AnswerSet) (*domain.OutcomeContract, error) {
	bundle := e.bundle.Load()
	if bundle == nil {
		return nil, fmt.Errorf("engine has no configuration: %w", ErrConfigMissing)
	}

	agg := Aggregate(bundle.Schema, bundle.Table, answers)
	res := Resolve(agg, bundle.Params)
	tags, routing := deriveRouting(agg.Flags, bundle.Flags)

	contract, err := BuildOutcome(OutcomeInput{
		Recommendation: res.Recommendation,
		Confidence:     res.Confidence,
		Domains:        agg.Domains,
		Flags:          agg.Flags,
		Tags:           tags,
		Totals:         res.Totals,
		Routing:        routing,
		Trace:          agg.Trace,
		Answered:       agg.Answered,
		TotalQuestions: bundle.Schema.Len(),
		EngineVersion:  e.version,
		ConfigDigest:   bundle.Digest,
	})
	if err != nil {
		e.logger.Error("outcome build rejected resolver output",
			zap.String("recommendation", string(res.Recommendation)),
			zap.Float64("confidence", res.Confidence),
			zap.Error(err))
		return nil, err
	}

	if res.FloorApplied != "" {
		e.logger.Info("flag floor raised recommendation",
			zap.String("flag", res.FloorApplied),
			zap.String("recommendation", string(res.Recommendation)))
	}

	return contract, nil
}

// deriveRouting collects the tags of every raised flag and routes the
// assessment to an advisor when any raised flag demands it. Flags are
// walked in sorted order so tags and reasons serialize stably.
func deriveRouting(raised domain.FlagSet, defs map[string]domain.FlagDef) ([]string, domain.Routing) {
	routing := domain.Routing{
		Channel:  domain.ChannelSelfServe,
		NextStep: domain.NextStepCostPlanner,
		Reasons:  []string{},
	}

	tags := []string{}
	seen := make(map[string]bool)
	for _, flag := range raised.Sorted() {
		def, ok := defs[flag]
		if !ok {
			continue
		}
		for _, tag := range def.Tags {
			if seen[tag] {
				continue
			}
			seen[tag] = true
			tags = append(tags, tag)
		}
		if def.RouteToAdvisor {
			routing.Channel = domain.ChannelAdvisor
			routing.NextStep = domain.NextStepAdvisorCall
			reason := def.Label
			if reason == "" {
				reason = def.ID
			}
			routing.Reasons = append(routing.Reasons, reason)
		}
	}

	return tags, routing
}

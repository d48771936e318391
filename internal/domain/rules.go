package domain

// RuleKind enumerates the closed set of predicates the journey layer
// may express. There is deliberately no general expression language:
// every rule is one of these variants evaluated by a single function.
type RuleKind string

const (
	RuleEquals      RuleKind = "equals"
	RuleIncludes    RuleKind = "includes"
	RuleExists      RuleKind = "exists"
	RuleMinProgress RuleKind = "min_progress"
	RuleRoleIn      RuleKind = "role_in"
)

// JourneyField is the closed set of context fields rules may inspect.
type JourneyField string

const (
	FieldStatus         JourneyField = "status"
	FieldRecommendation JourneyField = "recommendation"
	FieldChannel        JourneyField = "channel"
	FieldFlags          JourneyField = "flags"
	FieldTags           JourneyField = "tags"
)

// JourneyContext is the typed snapshot a rule evaluates against. The
// caller assembles it from the session and contract; rules never reach
// into ambient state.
type JourneyContext struct {
	Role           Role
	Progress       int
	Status         AssessmentStatus
	HasContract    bool
	Recommendation CareSetting
	Channel        string
	Flags          []string
	Tags           []string
}

// Rule is one predicate over a JourneyContext.
//
//	Equals      field == Value
//	Includes    Value ∈ field (flags or tags)
//	Exists      field is non-empty
//	MinProgress Progress >= Min
//	RoleIn      Role ∈ Roles
type Rule struct {
	Kind  RuleKind     `json:"kind"`
	Field JourneyField `json:"field,omitempty"`
	Value string       `json:"value,omitempty"`
	Min   int          `json:"min,omitempty"`
	Roles []Role       `json:"roles,omitempty"`
}

// Evaluate applies the rule to the context. Unknown kinds and unknown
// fields evaluate to false so that a stale rule can never unlock
// anything by accident.
func (r Rule) Evaluate(ctx JourneyContext) bool {
	switch r.Kind {
	case RuleEquals:
		return ctx.field(r.Field) == r.Value
	case RuleIncludes:
		for _, v := range ctx.list(r.Field) {
			if v == r.Value {
				return true
			}
		}
		return false
	case RuleExists:
		if vs := ctx.list(r.Field); vs != nil {
			return len(vs) > 0
		}
		return ctx.field(r.Field) != ""
	case RuleMinProgress:
		return ctx.Progress >= r.Min
	case RuleRoleIn:
		for _, role := range r.Roles {
			if ctx.Role == role {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (ctx JourneyContext) field(f JourneyField) string {
	switch f {
	case FieldStatus:
		return string(ctx.Status)
	case FieldRecommendation:
		return string(ctx.Recommendation)
	case FieldChannel:
		return ctx.Channel
	default:
		return ""
	}
}

func (ctx JourneyContext) list(f JourneyField) []string {
	switch f {
	case FieldFlags:
		return ctx.Flags
	case FieldTags:
		return ctx.Tags
	default:
		return nil
	}
}

// Tile is one journey surface whose visibility is gated by rules. All
// listed rules must pass.
type Tile struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Requires []Rule `json:"requires,omitempty"`
}

// Visible reports whether every rule of the tile passes.
func (t Tile) Visible(ctx JourneyContext) bool {
	for _, r := range t.Requires {
		if !r.Evaluate(ctx) {
			return false
		}
	}
	return true
}

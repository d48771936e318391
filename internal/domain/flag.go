package domain

import "sort"

// FlagDef describes a clinical-style risk flag that specific answers
// can raise. MinSetting, when set, floors the resolved recommendation
// at that setting: flags only ever raise the tier, never lower it.
type FlagDef struct {
	ID             string      `json:"id"`
	Label          string      `json:"label"`
	MinSetting     CareSetting `json:"min_setting,omitempty"`
	Tags           []string    `json:"tags,omitempty"`
	RouteToAdvisor bool        `json:"route_to_advisor,omitempty"`
}

// FlagSet tracks which flags fired during one scoring run. Flags are
// monotonic for the run: once raised they stay raised until a fresh
// assessment produces a new set.
type FlagSet map[string]bool

func (fs FlagSet) Raise(id string) {
	fs[id] = true
}

func (fs FlagSet) Has(id string) bool {
	return fs[id]
}

// Sorted returns the raised flag IDs in lexical order for stable
// serialization.
func (fs FlagSet) Sorted() []string {
	out := make([]string, 0, len(fs))
	for id, on := range fs {
		if on {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

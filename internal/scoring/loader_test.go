package scoring

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/guidedcare/pathway/internal/domain"
)

const testSchemaYAML = `
questions:
  - id: memory_changes
    text: Memory changes in the last year
    domain: cognition
    type: single
    required: true
    options:
      - value: none
        label: None
      - value: moderate
        label: Moderate
      - value: severe
        label: Severe
    triggers:
      - flag: cognition_risk
        any_of: [severe]
  - id: adl_help
    text: Help needed with daily activities
    domain: adl
    type: multi
    required: true
    options:
      - value: bathing
        label: Bathing
      - value: dressing
        label: Dressing
      - value: meals
        label: Meals
  - id: falls_last_year
    text: Falls in the last year
    domain: safety
    type: numeric
    required: true
    buckets:
      - max: 0
        value: none
      - max: 2
        value: some
      - value: frequent
  - id: notes
    text: Anything else we should know
    domain: support
    type: text
flags:
  - id: cognition_risk
    label: Significant cognitive decline
    min_setting: memory_care
    tags: [memory_care_candidate]
    route_to_advisor: true
resolution:
  epsilon: 0.25
  weights:
    cognition: 1.5
    safety: 1.2
`

const testTableJSON = `[
  {"question_id":"memory_changes","answer_value":"moderate","setting":"assisted_living","points":3},
  {"question_id":"memory_changes","answer_value":"severe","setting":"memory_care","points":5},
  {"question_id":"adl_help","answer_value":"bathing","setting":"assisted_living","points":2},
  {"question_id":"adl_help","answer_value":"dressing","setting":"assisted_living","points":2},
  {"question_id":"adl_help","answer_value":"meals","setting":"in_home","points":1},
  {"question_id":"falls_last_year","answer_value":"some","setting":"assisted_living","points":2},
  {"question_id":"falls_last_year","answer_value":"frequent","setting":"skilled_nursing","points":4}
]`

const testBlurbsJSON = `{
  "memory_changes.severe": "Significant memory changes usually call for a secured memory care environment.",
  "falls_last_year.frequent": "Frequent falls are the strongest predictor of future injury."
}`

// writeConfigDir lays out a complete config directory for loader and
// engine tests.
func writeConfigDir(t *testing.T, schema, table, blurbs string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		SchemaFileName: schema,
		TableFileName:  table,
		BlurbsFileName: blurbs,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestLoadSchemaMissingFile(t *testing.T) {
	_, err := LoadSchema(filepath.Join(t.TempDir(), SchemaFileName))
	if !errors.Is(err, ErrConfigMissing) {
		t.Fatalf("LoadSchema on missing file = %v, want ErrConfigMissing", err)
	}
}

func TestLoadSchemaValid(t *testing.T) {
	dir := writeConfigDir(t, testSchemaYAML, testTableJSON, testBlurbsJSON)

	cfg, err := LoadSchema(filepath.Join(dir, SchemaFileName))
	if err != nil {
		t.Fatalf("LoadSchema: %v", err)
	}

	if got := cfg.Schema.Len(); got != 4 {
		t.Errorf("schema has %d questions, want 4", got)
	}
	if got := cfg.Schema.RequiredCount(); got != 3 {
		t.Errorf("RequiredCount() = %d, want 3", got)
	}

	q := cfg.Schema.Lookup("falls_last_year")
	if q == nil {
		t.Fatal("falls_last_year missing from schema")
	}
	if len(q.Buckets) != 3 || q.Buckets[2].Max != nil {
		t.Errorf("numeric buckets parsed wrong: %+v", q.Buckets)
	}

	def, ok := cfg.Flags["cognition_risk"]
	if !ok {
		t.Fatal("cognition_risk flag not loaded")
	}
	if def.MinSetting != domain.SettingMemoryCare || !def.RouteToAdvisor {
		t.Errorf("flag def parsed wrong: %+v", def)
	}

	if got := cfg.Params.Overrides["cognition_risk"]; got != domain.SettingMemoryCare {
		t.Errorf("override = %v, want memory_care", got)
	}
	if cfg.Params.Epsilon != 0.25 {
		t.Errorf("epsilon = %v, want 0.25", cfg.Params.Epsilon)
	}
	if w := cfg.Params.weight(domain.DomainCognition); w != 1.5 {
		t.Errorf("cognition weight = %v, want 1.5", w)
	}
	if w := cfg.Params.weight(domain.DomainMobility); w != 1.0 {
		t.Errorf("unspecified weight = %v, want default 1.0", w)
	}
}

func TestLoadSchemaInvalid(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		detail string
	}{
		{
			"duplicate question id",
			"questions:\n  - id: q1\n    domain: adl\n    type: text\n  - id: q1\n    domain: adl\n    type: text\n",
			"duplicate id",
		},
		{
			"unknown domain",
			"questions:\n  - id: q1\n    domain: finances\n    type: text\n",
			"unknown domain",
		},
		{
			"unknown type",
			"questions:\n  - id: q1\n    domain: adl\n    type: slider\n",
			"unknown type",
		},
		{
			"single without options",
			"questions:\n  - id: q1\n    domain: adl\n    type: single\n",
			"needs options",
		},
		{
			"numeric without buckets",
			"questions:\n  - id: q1\n    domain: adl\n    type: numeric\n",
			"needs buckets",
		},
		{
			"open bucket not last",
			"questions:\n  - id: q1\n    domain: adl\n    type: numeric\n    buckets:\n      - value: all\n      - max: 3\n        value: low\n",
			"must come last",
		},
		{
			"trigger on unknown flag",
			"questions:\n  - id: q1\n    domain: adl\n    type: single\n    options:\n      - value: a\n    triggers:\n      - flag: ghost\n        any_of: [a]\n",
			"unknown flag",
		},
		{
			"trigger on impossible value",
			"questions:\n  - id: q1\n    domain: adl\n    type: single\n    options:\n      - value: a\n    triggers:\n      - flag: f1\n        any_of: [b]\nflags:\n  - id: f1\n",
			"not a possible answer",
		},
		{
			"flag with unknown min_setting",
			"questions:\n  - id: q1\n    domain: adl\n    type: text\nflags:\n  - id: f1\n    min_setting: hospice\n",
			"unknown min_setting",
		},
		{
			"negative epsilon",
			"questions:\n  - id: q1\n    domain: adl\n    type: text\nresolution:\n  epsilon: -1\n",
			"epsilon",
		},
		{
			"weight for unknown domain",
			"questions:\n  - id: q1\n    domain: adl\n    type: text\nresolution:\n  weights:\n    finances: 2\n",
			"unknown domain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, SchemaFileName)
			if err := os.WriteFile(path, []byte(tt.yaml), 0o644); err != nil {
				t.Fatal(err)
			}

			_, err := LoadSchema(path)
			if !errors.Is(err, ErrSchemaInvalid) {
				t.Fatalf("LoadSchema = %v, want ErrSchemaInvalid", err)
			}
			if !strings.Contains(err.Error(), tt.detail) {
				t.Errorf("error %q does not mention %q", err, tt.detail)
			}
		})
	}
}

func TestLoadTableZeroRowsIsLegal(t *testing.T) {
	path := filepath.Join(t.TempDir(), TableFileName)
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable on empty array: %v", err)
	}
	if table.Len() != 0 {
		t.Errorf("empty table has %d entries", table.Len())
	}

	// A degenerate table still answers lookups, with zero points.
	if pts := table.Lookup("anything", "at_all"); len(pts) != 0 {
		t.Errorf("Lookup on empty table = %v, want empty", pts)
	}
}

func TestLoadTableMalformedRows(t *testing.T) {
	tests := []struct {
		name   string
		json   string
		detail string
	}{
		{"missing question_id", `[{"answer_value":"a","setting":"in_home","points":1}]`, "row 0: missing question_id"},
		{"missing points", `[{"question_id":"q","answer_value":"a","setting":"in_home"}]`, "row 0: missing points"},
		{"unknown setting", `[{"question_id":"q","answer_value":"a","setting":"hospice","points":1}]`, "unknown setting"},
		{"non-numeric points", `[{"question_id":"q","answer_value":"a","setting":"in_home","points":"five"}]`, "row 0"},
		{"second row bad", `[{"question_id":"q","answer_value":"a","setting":"in_home","points":1},{"question_id":"","answer_value":"a","setting":"in_home","points":1}]`, "row 1: empty question_id"},
		{"not an array", `{"question_id":"q"}`, "parse"},
		{"row not an object", `[42]`, "row 0: not an object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), TableFileName)
			if err := os.WriteFile(path, []byte(tt.json), 0o644); err != nil {
				t.Fatal(err)
			}

			_, err := LoadTable(path)
			if !errors.Is(err, ErrTableMalformed) {
				t.Fatalf("LoadTable = %v, want ErrTableMalformed", err)
			}
			if !strings.Contains(err.Error(), tt.detail) {
				t.Errorf("error %q does not identify the problem %q", err, tt.detail)
			}
		})
	}
}

func TestLoadTableAccumulatesDuplicateRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), TableFileName)
	rows := `[
	  {"question_id":"q","answer_value":"a","setting":"in_home","points":1},
	  {"question_id":"q","answer_value":"a","setting":"in_home","points":2}
	]`
	if err := os.WriteFile(path, []byte(rows), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if got := table.Lookup("q", "a")[domain.SettingInHome]; got != 3 {
		t.Errorf("duplicate rows accumulated to %v, want 3", got)
	}
}

func TestLoadBundle(t *testing.T) {
	dir := writeConfigDir(t, testSchemaYAML, testTableJSON, testBlurbsJSON)

	bundle, err := LoadBundle(dir)
	if err != nil {
		t.Fatalf("LoadBundle: %v", err)
	}
	if bundle.Digest == "" {
		t.Error("bundle digest empty")
	}
	if bundle.Table.Len() != 7 {
		t.Errorf("table has %d entries, want 7", bundle.Table.Len())
	}
	if len(bundle.Blurbs) != 2 {
		t.Errorf("blurbs has %d entries, want 2", len(bundle.Blurbs))
	}

	// Identical bytes always produce the same digest.
	again, err := LoadBundle(dir)
	if err != nil {
		t.Fatalf("LoadBundle again: %v", err)
	}
	if again.Digest != bundle.Digest {
		t.Errorf("digest changed between identical loads: %s vs %s", bundle.Digest, again.Digest)
	}

	// Any byte change shows up as a new digest.
	changed := strings.Replace(testBlurbsJSON, "strongest", "clearest", 1)
	if err := os.WriteFile(filepath.Join(dir, BlurbsFileName), []byte(changed), 0o644); err != nil {
		t.Fatal(err)
	}
	third, err := LoadBundle(dir)
	if err != nil {
		t.Fatalf("LoadBundle after edit: %v", err)
	}
	if third.Digest == bundle.Digest {
		t.Error("digest unchanged after config edit")
	}
}

func TestLoadBundleRejectsOrphanScoringRows(t *testing.T) {
	tests := []struct {
		name   string
		row    string
		detail string
	}{
		{
			"unknown question",
			`[{"question_id":"ghost","answer_value":"a","setting":"in_home","points":1}]`,
			`no question "ghost"`,
		},
		{
			"unknown answer value",
			`[{"question_id":"memory_changes","answer_value":"mild","setting":"in_home","points":1}]`,
			`cannot answer "mild"`,
		},
		{
			"row for text question",
			`[{"question_id":"notes","answer_value":"anything","setting":"in_home","points":1}]`,
			`cannot answer`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeConfigDir(t, testSchemaYAML, tt.row, testBlurbsJSON)

			_, err := LoadBundle(dir)
			if !errors.Is(err, ErrTableMalformed) {
				t.Fatalf("LoadBundle = %v, want ErrTableMalformed", err)
			}
			if !strings.Contains(err.Error(), tt.detail) {
				t.Errorf("error %q does not mention %q", err, tt.detail)
			}
		})
	}
}

func TestLoadBundleMissingAnyFileIsFatal(t *testing.T) {
	for _, missing := range []string{SchemaFileName, TableFileName, BlurbsFileName} {
		t.Run(missing, func(t *testing.T) {
			dir := writeConfigDir(t, testSchemaYAML, testTableJSON, testBlurbsJSON)
			if err := os.Remove(filepath.Join(dir, missing)); err != nil {
				t.Fatal(err)
			}

			_, err := LoadBundle(dir)
			if !errors.Is(err, ErrConfigMissing) {
				t.Fatalf("LoadBundle without %s = %v, want ErrConfigMissing", missing, err)
			}
		})
	}
}

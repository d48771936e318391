package scoring

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/guidedcare/pathway/internal/domain"
	"gopkg.in/yaml.v3"
)

// Config file names resolved against the engine's config directory.
const (
	SchemaFileName = "questions.yaml"
	TableFileName  = "scoring.json"
	BlurbsFileName = "blurbs.json"
)

var (
	ErrConfigMissing  = errors.New("required configuration file missing")
	ErrSchemaInvalid  = errors.New("question schema invalid")
	ErrTableMalformed = errors.New("scoring table malformed")
)

// SchemaConfig is the parsed questionnaire configuration: the ordered
// question schema, the flag definitions keyed by flag ID, and the
// resolution parameters.
type SchemaConfig struct {
	Schema *domain.QuestionSchema
	Flags  map[string]domain.FlagDef
	Params ResolveParams
}

// Bundle is one immutable, internally consistent set of scoring
// configuration. The engine publishes it behind an atomic pointer; a
// reload builds a fresh Bundle and swaps the pointer wholesale so no
// reader ever observes a half-updated table.
type Bundle struct {
	Schema   *domain.QuestionSchema
	Table    *domain.ScoringTable
	Flags    map[string]domain.FlagDef
	Params   ResolveParams
	Blurbs   map[string]string
	Digest   string
	LoadedAt time.Time
}

type schemaFile struct {
	Questions  []questionConfig `yaml:"questions"`
	Flags      []flagConfig     `yaml:"flags"`
	Resolution resolutionConfig `yaml:"resolution"`
}

type questionConfig struct {
	ID       string          `yaml:"id"`
	Text     string          `yaml:"text"`
	Domain   string          `yaml:"domain"`
	Type     string          `yaml:"type"`
	Required bool            `yaml:"required"`
	Options  []optionConfig  `yaml:"options"`
	Buckets  []bucketConfig  `yaml:"buckets"`
	Triggers []triggerConfig `yaml:"triggers"`
}

type optionConfig struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

type bucketConfig struct {
	Max   *float64 `yaml:"max"`
	Value string   `yaml:"value"`
}

type triggerConfig struct {
	Flag  string   `yaml:"flag"`
	AnyOf []string `yaml:"any_of"`
}

type flagConfig struct {
	ID             string   `yaml:"id"`
	Label          string   `yaml:"label"`
	MinSetting     string   `yaml:"min_setting"`
	Tags           []string `yaml:"tags"`
	RouteToAdvisor bool     `yaml:"route_to_advisor"`
}

type resolutionConfig struct {
	Epsilon float64            `yaml:"epsilon"`
	Weights map[string]float64 `yaml:"weights"`
}

// LoadSchema parses and validates the questionnaire file. Every
// structural problem is reported as ErrSchemaInvalid with enough
// context to find the offending entry.
func LoadSchema(path string) (*SchemaConfig, error) {
	data, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}

	var file schemaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %v: %w", filepath.Base(path), err, ErrSchemaInvalid)
	}
	if len(file.Questions) == 0 {
		return nil, fmt.Errorf("no questions defined: %w", ErrSchemaInvalid)
	}

	flags := make(map[string]domain.FlagDef, len(file.Flags))
	overrides := make(map[string]domain.CareSetting)
	for i, f := range file.Flags {
		if f.ID == "" {
			return nil, fmt.Errorf("flag %d: missing id: %w", i, ErrSchemaInvalid)
		}
		if _, dup := flags[f.ID]; dup {
			return nil, fmt.Errorf("flag %q: duplicate id: %w", f.ID, ErrSchemaInvalid)
		}
		def := domain.FlagDef{
			ID:             f.ID,
			Label:          f.Label,
			Tags:           f.Tags,
			RouteToAdvisor: f.RouteToAdvisor,
		}
		if f.MinSetting != "" {
			if !domain.ValidSetting(f.MinSetting) {
				return nil, fmt.Errorf("flag %q: unknown min_setting %q: %w", f.ID, f.MinSetting, ErrSchemaInvalid)
			}
			def.MinSetting = domain.CareSetting(f.MinSetting)
			overrides[f.ID] = def.MinSetting
		}
		flags[f.ID] = def
	}

	questions := make([]domain.Question, 0, len(file.Questions))
	seen := make(map[string]bool, len(file.Questions))
	for i, q := range file.Questions {
		if q.ID == "" {
			return nil, fmt.Errorf("question %d: missing id: %w", i, ErrSchemaInvalid)
		}
		if seen[q.ID] {
			return nil, fmt.Errorf("question %q: duplicate id: %w", q.ID, ErrSchemaInvalid)
		}
		seen[q.ID] = true

		if !domain.ValidDomain(q.Domain) {
			return nil, fmt.Errorf("question %q: unknown domain %q: %w", q.ID, q.Domain, ErrSchemaInvalid)
		}
		if !domain.ValidQuestionType(q.Type) {
			return nil, fmt.Errorf("question %q: unknown type %q: %w", q.ID, q.Type, ErrSchemaInvalid)
		}

		dq := domain.Question{
			ID:       q.ID,
			Text:     q.Text,
			Domain:   domain.CareDomain(q.Domain),
			Type:     domain.QuestionType(q.Type),
			Required: q.Required,
		}

		legal, err := buildAnswerSpace(&dq, q)
		if err != nil {
			return nil, err
		}

		for _, tr := range q.Triggers {
			if dq.Type == domain.QuestionText {
				return nil, fmt.Errorf("question %q: text questions cannot trigger flags: %w", q.ID, ErrSchemaInvalid)
			}
			if _, ok := flags[tr.Flag]; !ok {
				return nil, fmt.Errorf("question %q: trigger references unknown flag %q: %w", q.ID, tr.Flag, ErrSchemaInvalid)
			}
			if len(tr.AnyOf) == 0 {
				return nil, fmt.Errorf("question %q: trigger for %q has empty any_of: %w", q.ID, tr.Flag, ErrSchemaInvalid)
			}
			for _, v := range tr.AnyOf {
				if !legal[v] {
					return nil, fmt.Errorf("question %q: trigger value %q not a possible answer: %w", q.ID, v, ErrSchemaInvalid)
				}
			}
			dq.Triggers = append(dq.Triggers, domain.FlagTrigger{Flag: tr.Flag, AnyOf: tr.AnyOf})
		}

		questions = append(questions, dq)
	}

	params, err := buildResolveParams(file.Resolution, overrides)
	if err != nil {
		return nil, err
	}

	return &SchemaConfig{
		Schema: domain.NewQuestionSchema(questions),
		Flags:  flags,
		Params: params,
	}, nil
}

// buildAnswerSpace validates the per-type answer shape of one question
// and returns the set of values the question can produce after
// bucketing. That set bounds both scoring rows and trigger values.
func buildAnswerSpace(dq *domain.Question, q questionConfig) (map[string]bool, error) {
	legal := make(map[string]bool)

	switch dq.Type {
	case domain.QuestionSingle, domain.QuestionMulti:
		if len(q.Options) == 0 {
			return nil, fmt.Errorf("question %q: %s question needs options: %w", q.ID, q.Type, ErrSchemaInvalid)
		}
		if len(q.Buckets) > 0 {
			return nil, fmt.Errorf("question %q: buckets only apply to numeric questions: %w", q.ID, ErrSchemaInvalid)
		}
		for _, opt := range q.Options {
			if opt.Value == "" {
				return nil, fmt.Errorf("question %q: option with empty value: %w", q.ID, ErrSchemaInvalid)
			}
			if legal[opt.Value] {
				return nil, fmt.Errorf("question %q: duplicate option value %q: %w", q.ID, opt.Value, ErrSchemaInvalid)
			}
			legal[opt.Value] = true
			dq.Options = append(dq.Options, domain.Option{Value: opt.Value, Label: opt.Label})
		}

	case domain.QuestionNumeric:
		if len(q.Buckets) == 0 {
			return nil, fmt.Errorf("question %q: numeric question needs buckets: %w", q.ID, ErrSchemaInvalid)
		}
		if len(q.Options) > 0 {
			return nil, fmt.Errorf("question %q: numeric questions take buckets, not options: %w", q.ID, ErrSchemaInvalid)
		}
		var prev *float64
		for j, b := range q.Buckets {
			if b.Value == "" {
				return nil, fmt.Errorf("question %q: bucket %d has empty value: %w", q.ID, j, ErrSchemaInvalid)
			}
			if legal[b.Value] {
				return nil, fmt.Errorf("question %q: duplicate bucket value %q: %w", q.ID, b.Value, ErrSchemaInvalid)
			}
			if b.Max == nil && j != len(q.Buckets)-1 {
				return nil, fmt.Errorf("question %q: open-ended bucket %q must come last: %w", q.ID, b.Value, ErrSchemaInvalid)
			}
			if b.Max != nil && prev != nil && *b.Max <= *prev {
				return nil, fmt.Errorf("question %q: bucket boundaries must increase: %w", q.ID, ErrSchemaInvalid)
			}
			if b.Max != nil {
				prev = b.Max
			}
			legal[b.Value] = true
			dq.Buckets = append(dq.Buckets, domain.Bucket{Max: b.Max, Value: b.Value})
		}

	case domain.QuestionText:
		if len(q.Options) > 0 || len(q.Buckets) > 0 {
			return nil, fmt.Errorf("question %q: text questions take free input: %w", q.ID, ErrSchemaInvalid)
		}
	}

	return legal, nil
}

func buildResolveParams(res resolutionConfig, overrides map[string]domain.CareSetting) (ResolveParams, error) {
	if res.Epsilon < 0 {
		return ResolveParams{}, fmt.Errorf("resolution epsilon must be >= 0: %w", ErrSchemaInvalid)
	}

	weights := make(map[domain.CareDomain]float64, len(res.Weights))
	for name, w := range res.Weights {
		if !domain.ValidDomain(name) {
			return ResolveParams{}, fmt.Errorf("resolution weight for unknown domain %q: %w", name, ErrSchemaInvalid)
		}
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return ResolveParams{}, fmt.Errorf("resolution weight for %q must be a finite non-negative number: %w", name, ErrSchemaInvalid)
		}
		weights[domain.CareDomain(name)] = w
	}

	return ResolveParams{
		Weights:   weights,
		Overrides: overrides,
		Epsilon:   res.Epsilon,
	}, nil
}

type tableRow struct {
	QuestionID  string  `json:"question_id"`
	AnswerValue string  `json:"answer_value"`
	Setting     string  `json:"setting"`
	Points      float64 `json:"points"`
}

var tableRowFields = []string{"question_id", "answer_value", "setting", "points"}

// LoadTable parses the scoring table. A malformed row fails the whole
// load; a silently dropped row would change recommendations with no
// visible error. Zero rows is a legal (always-zero-scoring) table.
func LoadTable(path string) (*domain.ScoringTable, error) {
	rows, err := loadTableRows(path)
	if err != nil {
		return nil, err
	}
	return buildTable(rows), nil
}

func loadTableRows(path string) ([]tableRow, error) {
	data, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %v: %w", filepath.Base(path), err, ErrTableMalformed)
	}

	rows := make([]tableRow, 0, len(raw))
	for i, msg := range raw {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(msg, &fields); err != nil {
			return nil, fmt.Errorf("scoring row %d: not an object: %w", i, ErrTableMalformed)
		}
		for _, name := range tableRowFields {
			if _, ok := fields[name]; !ok {
				return nil, fmt.Errorf("scoring row %d: missing %s: %w", i, name, ErrTableMalformed)
			}
		}

		var row tableRow
		if err := json.Unmarshal(msg, &row); err != nil {
			return nil, fmt.Errorf("scoring row %d: %v: %w", i, err, ErrTableMalformed)
		}
		if row.QuestionID == "" {
			return nil, fmt.Errorf("scoring row %d: empty question_id: %w", i, ErrTableMalformed)
		}
		if row.AnswerValue == "" {
			return nil, fmt.Errorf("scoring row %d: empty answer_value: %w", i, ErrTableMalformed)
		}
		if !domain.ValidSetting(row.Setting) {
			return nil, fmt.Errorf("scoring row %d: unknown setting %q: %w", i, row.Setting, ErrTableMalformed)
		}
		if math.IsNaN(row.Points) || math.IsInf(row.Points, 0) {
			return nil, fmt.Errorf("scoring row %d: points must be finite: %w", i, ErrTableMalformed)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func buildTable(rows []tableRow) *domain.ScoringTable {
	table := domain.NewScoringTable()
	for _, row := range rows {
		table.Add(row.QuestionID, row.AnswerValue, domain.CareSetting(row.Setting), row.Points)
	}
	return table
}

// LoadBlurbs parses the presentational narrative texts keyed by
// "question_id.answer_value". Blurbs never influence scoring.
func LoadBlurbs(path string) (map[string]string, error) {
	data, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}

	var blurbs map[string]string
	if err := json.Unmarshal(data, &blurbs); err != nil {
		return nil, fmt.Errorf("parse %s: %v: %w", filepath.Base(path), err, ErrSchemaInvalid)
	}
	return blurbs, nil
}

// LoadBundle loads schema, scoring table, and blurbs from dir and
// cross-checks them: every scoring row must reference a question and an
// answer value the schema can actually produce. The digest covers the
// raw bytes of all three files so identical input always reports the
// same configuration version.
func LoadBundle(dir string) (*Bundle, error) {
	schemaPath := filepath.Join(dir, SchemaFileName)
	tablePath := filepath.Join(dir, TableFileName)
	blurbsPath := filepath.Join(dir, BlurbsFileName)

	cfg, err := LoadSchema(schemaPath)
	if err != nil {
		return nil, err
	}
	rows, err := loadTableRows(tablePath)
	if err != nil {
		return nil, err
	}
	blurbs, err := LoadBlurbs(blurbsPath)
	if err != nil {
		return nil, err
	}

	for i, row := range rows {
		q := cfg.Schema.Lookup(row.QuestionID)
		if q == nil {
			return nil, fmt.Errorf("scoring row %d: no question %q in schema: %w", i, row.QuestionID, ErrTableMalformed)
		}
		if !answerable(q, row.AnswerValue) {
			return nil, fmt.Errorf("scoring row %d: question %q cannot answer %q: %w", i, row.QuestionID, row.AnswerValue, ErrTableMalformed)
		}
	}

	digest, err := configDigest(schemaPath, tablePath, blurbsPath)
	if err != nil {
		return nil, err
	}

	return &Bundle{
		Schema:   cfg.Schema,
		Table:    buildTable(rows),
		Flags:    cfg.Flags,
		Params:   cfg.Params,
		Blurbs:   blurbs,
		Digest:   digest,
		LoadedAt: time.Now().UTC(),
	}, nil
}

// answerable reports whether value is in the question's answer space:
// an option value, or a bucket value for numeric questions. Text
// questions never score, so no value is answerable for them.
func answerable(q *domain.Question, value string) bool {
	switch q.Type {
	case domain.QuestionSingle, domain.QuestionMulti:
		return q.HasOption(value)
	case domain.QuestionNumeric:
		for _, b := range q.Buckets {
			if b.Value == value {
				return true
			}
		}
	}
	return false
}

func configDigest(paths ...string) (string, error) {
	h := sha256.New()
	for _, path := range paths {
		data, err := readConfigFile(path)
		if err != nil {
			return "", err
		}
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func readConfigFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrConfigMissing)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

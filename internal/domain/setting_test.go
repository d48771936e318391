package domain

import "testing"

func TestSettingRank(t *testing.T) {
	tests := []struct {
		setting CareSetting
		want    int
	}{
		{SettingInHome, 0},
		{SettingAssistedLiving, 1},
		{SettingMemoryCare, 2},
		{SettingSkilledNursing, 3},
		{CareSetting("unknown"), -1},
		{CareSetting(""), -1},
	}

	for _, tt := range tests {
		t.Run(string(tt.setting), func(t *testing.T) {
			if got := tt.setting.Rank(); got != tt.want {
				t.Errorf("Rank() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidSetting(t *testing.T) {
	valid := []string{"in_home", "assisted_living", "memory_care", "skilled_nursing"}
	for _, s := range valid {
		if !ValidSetting(s) {
			t.Errorf("ValidSetting(%q) = false, want true", s)
		}
	}

	invalid := []string{"", "home", "IN_HOME", "memory care", "hospice"}
	for _, s := range invalid {
		if ValidSetting(s) {
			t.Errorf("ValidSetting(%q) = true, want false", s)
		}
	}
}

func TestAllSettingsOrderedByAcuity(t *testing.T) {
	settings := AllSettings()
	if len(settings) != 4 {
		t.Fatalf("AllSettings() returned %d settings, want 4", len(settings))
	}
	for i := 1; i < len(settings); i++ {
		if settings[i].Rank() <= settings[i-1].Rank() {
			t.Errorf("settings out of acuity order at %d: %v after %v", i, settings[i], settings[i-1])
		}
	}
	if settings[0] != LowestAcuity() {
		t.Errorf("first setting = %v, want %v", settings[0], LowestAcuity())
	}
}

func TestHigherAcuity(t *testing.T) {
	tests := []struct {
		a, b, want CareSetting
	}{
		{SettingInHome, SettingMemoryCare, SettingMemoryCare},
		{SettingMemoryCare, SettingInHome, SettingMemoryCare},
		{SettingAssistedLiving, SettingAssistedLiving, SettingAssistedLiving},
		{SettingSkilledNursing, SettingMemoryCare, SettingSkilledNursing},
	}

	for _, tt := range tests {
		if got := HigherAcuity(tt.a, tt.b); got != tt.want {
			t.Errorf("HigherAcuity(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestBucketFor(t *testing.T) {
	one := 1.0
	three := 3.0
	q := Question{
		ID:   "falls_last_year",
		Type: QuestionNumeric,
		Buckets: []Bucket{
			{Max: &one, Value: "rare"},
			{Max: &three, Value: "occasional"},
			{Value: "frequent"},
		},
	}

	tests := []struct {
		n    float64
		want string
	}{
		{-2, "rare"}, // below range clamps to the first bucket
		{0, "rare"},
		{1, "rare"},
		{2, "occasional"},
		{3, "occasional"},
		{4, "frequent"},
		{100, "frequent"},
	}

	for _, tt := range tests {
		if got := q.BucketFor(tt.n); got != tt.want {
			t.Errorf("BucketFor(%v) = %q, want %q", tt.n, got, tt.want)
		}
	}

	noBuckets := Question{ID: "notes", Type: QuestionText}
	if got := noBuckets.BucketFor(5); got != "" {
		t.Errorf("BucketFor on question without buckets = %q, want empty", got)
	}
}

func TestAnswerSetMerge(t *testing.T) {
	two := 2.0
	base := AnswerSet{
		"q1": {Values: []string{"a"}},
		"q2": {Number: &two},
	}

	merged := base.Merge(AnswerSet{
		"q1": {Values: []string{"b"}},
		"q3": {Text: "note"},
		"q2": {}, // empty answer clears the previous response
	})

	if got := merged["q1"].Values[0]; got != "b" {
		t.Errorf("q1 = %q, want overwritten value b", got)
	}
	if _, ok := merged["q2"]; ok {
		t.Error("q2 should have been cleared by the empty answer")
	}
	if merged["q3"].Text != "note" {
		t.Error("q3 should carry the new text answer")
	}
	if base["q1"].Values[0] != "a" {
		t.Error("Merge must not mutate the receiver")
	}
}

func TestFlagSetSorted(t *testing.T) {
	fs := FlagSet{}
	fs.Raise("wander_risk")
	fs.Raise("fall_risk")
	fs.Raise("fall_risk") // raising twice is a no-op

	got := fs.Sorted()
	if len(got) != 2 {
		t.Fatalf("Sorted() returned %d flags, want 2", len(got))
	}
	if got[0] != "fall_risk" || got[1] != "wander_risk" {
		t.Errorf("Sorted() = %v, want lexical order", got)
	}
}

package scoring

import (
	"testing"

	"github.com/guidedcare/pathway/internal/domain"
)

// aggWith builds an aggregation straight from a contribution matrix,
// bypassing the table walk, so resolver behavior can be pinned exactly.
func aggWith(matrix map[domain.CareSetting]domain.DomainScores, flags ...string) Aggregation {
	agg := Aggregation{
		Matrix: matrix,
		Flags:  domain.FlagSet{},
	}
	for _, f := range flags {
		agg.Flags.Raise(f)
	}
	return agg
}

func TestResolveSingleScoredSetting(t *testing.T) {
	// One question, one answer, five points for memory care: the pick is
	// memory_care with full confidence over the zero totals of the rest.
	agg := aggWith(map[domain.CareSetting]domain.DomainScores{
		domain.SettingMemoryCare: {domain.DomainCognition: 5},
	})

	res := Resolve(agg, ResolveParams{})

	if res.Recommendation != domain.SettingMemoryCare {
		t.Errorf("Recommendation = %v, want memory_care", res.Recommendation)
	}
	if res.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", res.Confidence)
	}
	if res.Totals[domain.SettingMemoryCare] != 5 {
		t.Errorf("memory_care total = %v, want 5", res.Totals[domain.SettingMemoryCare])
	}
	if res.Totals[domain.SettingInHome] != 0 {
		t.Errorf("in_home total = %v, want 0", res.Totals[domain.SettingInHome])
	}
}

func TestResolveEmptyAggregation(t *testing.T) {
	res := Resolve(Aggregation{Flags: domain.FlagSet{}}, ResolveParams{})

	if res.Recommendation != domain.SettingInHome {
		t.Errorf("zero-information Recommendation = %v, want in_home", res.Recommendation)
	}
	if res.Confidence != 0 {
		t.Errorf("zero-information Confidence = %v, want 0", res.Confidence)
	}
	for _, s := range domain.AllSettings() {
		if res.Totals[s] != 0 {
			t.Errorf("total[%s] = %v, want 0", s, res.Totals[s])
		}
	}
}

func TestResolveTiePrefersLowerAcuity(t *testing.T) {
	tests := []struct {
		name    string
		matrix  map[domain.CareSetting]domain.DomainScores
		epsilon float64
		want    domain.CareSetting
	}{
		{
			"exact tie",
			map[domain.CareSetting]domain.DomainScores{
				domain.SettingInHome:         {domain.DomainADL: 10},
				domain.SettingAssistedLiving: {domain.DomainADL: 10},
			},
			0.01,
			domain.SettingInHome,
		},
		{
			"near tie inside epsilon band",
			map[domain.CareSetting]domain.DomainScores{
				domain.SettingAssistedLiving: {domain.DomainADL: 10},
				domain.SettingMemoryCare:     {domain.DomainCognition: 10.004},
			},
			0.01,
			domain.SettingAssistedLiving,
		},
		{
			"gap wider than epsilon is no tie",
			map[domain.CareSetting]domain.DomainScores{
				domain.SettingAssistedLiving: {domain.DomainADL: 10},
				domain.SettingMemoryCare:     {domain.DomainCognition: 10.5},
			},
			0.01,
			domain.SettingMemoryCare,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(aggWith(tt.matrix), ResolveParams{Epsilon: tt.epsilon})
			if res.Recommendation != tt.want {
				t.Errorf("Recommendation = %v, want %v", res.Recommendation, tt.want)
			}
		})
	}
}

func TestResolveFlagFloors(t *testing.T) {
	overrides := map[string]domain.CareSetting{
		"cognition_risk": domain.SettingMemoryCare,
	}

	t.Run("floor raises a lower computed winner", func(t *testing.T) {
		agg := aggWith(map[domain.CareSetting]domain.DomainScores{
			domain.SettingInHome: {domain.DomainADL: 5},
		}, "cognition_risk")

		res := Resolve(agg, ResolveParams{Overrides: overrides})

		if res.Recommendation != domain.SettingMemoryCare {
			t.Errorf("Recommendation = %v, want floored memory_care", res.Recommendation)
		}
		if res.FloorApplied != "cognition_risk" {
			t.Errorf("FloorApplied = %q, want cognition_risk", res.FloorApplied)
		}
		// The floored pick has no score support, so confidence collapses.
		if res.Confidence != 0 {
			t.Errorf("Confidence = %v, want 0 for unsupported floor", res.Confidence)
		}
	})

	t.Run("floor never lowers a higher computed winner", func(t *testing.T) {
		agg := aggWith(map[domain.CareSetting]domain.DomainScores{
			domain.SettingSkilledNursing: {domain.DomainHealth: 8},
		}, "cognition_risk")

		res := Resolve(agg, ResolveParams{Overrides: overrides})

		if res.Recommendation != domain.SettingSkilledNursing {
			t.Errorf("Recommendation = %v, want skilled_nursing kept", res.Recommendation)
		}
		if res.FloorApplied != "" {
			t.Errorf("FloorApplied = %q, want none", res.FloorApplied)
		}
	})

	t.Run("raised flag without an override changes nothing", func(t *testing.T) {
		agg := aggWith(map[domain.CareSetting]domain.DomainScores{
			domain.SettingInHome: {domain.DomainADL: 5},
		}, "fall_risk")

		res := Resolve(agg, ResolveParams{Overrides: overrides})
		if res.Recommendation != domain.SettingInHome {
			t.Errorf("Recommendation = %v, want in_home", res.Recommendation)
		}
	})

	// Whatever the computed winner, a firing floor guarantees the final
	// rank is at least the floor's rank.
	t.Run("final rank is never below a firing floor", func(t *testing.T) {
		for _, floor := range domain.AllSettings() {
			for _, scored := range domain.AllSettings() {
				agg := aggWith(map[domain.CareSetting]domain.DomainScores{
					scored: {domain.DomainADL: 7},
				}, "f")

				res := Resolve(agg, ResolveParams{
					Overrides: map[string]domain.CareSetting{"f": floor},
				})

				if res.Recommendation.Rank() < floor.Rank() {
					t.Errorf("floor=%s scored=%s: recommendation %s below floor", floor, scored, res.Recommendation)
				}
				if res.Recommendation.Rank() < scored.Rank() {
					t.Errorf("floor=%s scored=%s: recommendation %s below computed winner", floor, scored, res.Recommendation)
				}
			}
		}
	})
}

func TestResolveWeightsShiftTheWinner(t *testing.T) {
	matrix := map[domain.CareSetting]domain.DomainScores{
		domain.SettingAssistedLiving: {domain.DomainADL: 4},
		domain.SettingMemoryCare:     {domain.DomainCognition: 2},
	}

	unweighted := Resolve(aggWith(matrix), ResolveParams{})
	if unweighted.Recommendation != domain.SettingAssistedLiving {
		t.Errorf("unweighted Recommendation = %v, want assisted_living", unweighted.Recommendation)
	}

	weighted := Resolve(aggWith(matrix), ResolveParams{
		Weights: map[domain.CareDomain]float64{domain.DomainCognition: 3},
	})
	if weighted.Recommendation != domain.SettingMemoryCare {
		t.Errorf("cognition-weighted Recommendation = %v, want memory_care", weighted.Recommendation)
	}
	if weighted.Totals[domain.SettingMemoryCare] != 6 {
		t.Errorf("weighted memory_care total = %v, want 6", weighted.Totals[domain.SettingMemoryCare])
	}
}

func TestResolveConfidence(t *testing.T) {
	tests := []struct {
		name   string
		winner float64
		runner float64
		want   float64
	}{
		{"half margin", 10, 5, 0.5},
		{"no competition", 10, 0, 1},
		{"dead heat", 10, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := aggWith(map[domain.CareSetting]domain.DomainScores{
				domain.SettingMemoryCare:     {domain.DomainCognition: tt.winner},
				domain.SettingAssistedLiving: {domain.DomainADL: tt.runner},
			})

			res := Resolve(agg, ResolveParams{})
			if res.Confidence != tt.want {
				t.Errorf("Confidence = %v, want %v", res.Confidence, tt.want)
			}
		})
	}
}

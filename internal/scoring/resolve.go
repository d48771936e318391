package scoring

import (
	"github.com/guidedcare/pathway/internal/domain"
)

// ResolveParams tunes tier resolution. Weights multiply each domain's
// contribution uniformly across all settings' shares of that domain;
// a missing weight counts as 1.0. Overrides map flag IDs to the
// minimum setting they enforce. Epsilon is the band within which two
// settings count as tied.
type ResolveParams struct {
	Weights   map[domain.CareDomain]float64
	Overrides map[string]domain.CareSetting
	Epsilon   float64
}

func (p ResolveParams) weight(d domain.CareDomain) float64 {
	w, ok := p.Weights[d]
	if !ok {
		return 1.0
	}
	return w
}

// Resolution is the resolver's verdict: the recommended setting, the
// confidence in it, the weighted per-setting totals behind the pick,
// and the flag whose floor overrode the computed winner, if any.
type Resolution struct {
	Recommendation domain.CareSetting
	Confidence     float64
	Totals         map[domain.CareSetting]float64
	FloorApplied   string
}

// Resolve picks the recommended care setting from an aggregation.
//
// Weighted totals come from the aggregation's contribution matrix.
// Settings within epsilon of the maximum count as tied, and a tie goes
// to the lowest-acuity candidate: the least restrictive setting that
// meets assessed need. Flag floors only ever raise the recommendation,
// never lower it. Confidence is the winner's margin over the best
// other setting, normalized by the winner's total and clamped to
// [0,1]; an empty or zero-scoring answer set yields the lowest-acuity
// setting with confidence 0, never an error.
func Resolve(agg Aggregation, params ResolveParams) Resolution {
	totals := make(map[domain.CareSetting]float64, 4)
	for _, s := range domain.AllSettings() {
		var total float64
		for _, d := range domain.AllDomains() {
			total += agg.Matrix[s][d] * params.weight(d)
		}
		totals[s] = total
	}

	max := totals[domain.LowestAcuity()]
	for _, s := range domain.AllSettings() {
		if totals[s] > max {
			max = totals[s]
		}
	}

	// Lowest-acuity setting inside the epsilon band wins the tie.
	winner := domain.LowestAcuity()
	for _, s := range domain.AllSettings() {
		if totals[s] >= max-params.Epsilon {
			winner = s
			break
		}
	}

	res := Resolution{Recommendation: winner, Totals: totals}

	for _, flag := range agg.Flags.Sorted() {
		floor, ok := params.Overrides[flag]
		if !ok {
			continue
		}
		if floor.Rank() > res.Recommendation.Rank() {
			res.Recommendation = floor
			res.FloorApplied = flag
		}
	}

	res.Confidence = confidence(totals, res.Recommendation)
	return res
}

// confidence computes the normalized margin of the recommendation over
// the strongest other setting. A recommendation with no score support
// (total <= 0, e.g. a flag floor above every scored setting) gets 0.
func confidence(totals map[domain.CareSetting]float64, recommendation domain.CareSetting) float64 {
	winner := totals[recommendation]
	if winner <= 0 {
		return 0
	}

	bestOther := 0.0
	first := true
	for _, s := range domain.AllSettings() {
		if s == recommendation {
			continue
		}
		if first || totals[s] > bestOther {
			bestOther = totals[s]
			first = false
		}
	}

	c := (winner - bestOther) / winner
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

package domain

// CareDomain is the closed set of assessment domains. Every question
// belongs to exactly one domain; the resolver weights domain
// contributions when ranking settings.
type CareDomain string

const (
	DomainCognition CareDomain = "cognition"
	DomainADL       CareDomain = "adl"
	DomainMobility  CareDomain = "mobility"
	DomainHealth    CareDomain = "health"
	DomainSafety    CareDomain = "safety"
	DomainSupport   CareDomain = "support"
)

var careDomains = map[CareDomain]string{
	DomainCognition: "Cognitive Function",
	DomainADL:       "ADL/IADL Burden",
	DomainMobility:  "Mobility & Falls",
	DomainHealth:    "Health & Medication",
	DomainSafety:    "Home Safety",
	DomainSupport:   "Caregiver & Social Support",
}

func ValidDomain(d string) bool {
	_, ok := careDomains[CareDomain(d)]
	return ok
}

func (d CareDomain) Label() string {
	if l, ok := careDomains[d]; ok {
		return l
	}
	return string(d)
}

// AllDomains returns the domains in a fixed order so that iteration and
// serialization stay deterministic.
func AllDomains() []CareDomain {
	return []CareDomain{DomainCognition, DomainADL, DomainMobility, DomainHealth, DomainSafety, DomainSupport}
}

// DomainScores accumulates per-domain point totals for one assessment.
type DomainScores map[CareDomain]float64

func (ds DomainScores) Total() float64 {
	var sum float64
	for _, v := range ds {
		sum += v
	}
	return sum
}

func (ds DomainScores) Clone() DomainScores {
	out := make(DomainScores, len(ds))
	for k, v := range ds {
		out[k] = v
	}
	return out
}

package matching

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/carebridge/telehealth-platform/internal/directory"
)

// DefaultMaxResults caps how many ranked providers a request sees.
const DefaultMaxResults = 5

// maxDistance is the proxy assigned when a postal code does not parse;
// such providers stay eligible but rank behind every parseable one.
const maxDistance = math.MaxInt32

// Request is the narrow view of a care request the engine needs.
type Request struct {
	Specialty  string
	Insurance  string
	PostalCode string
	Urgent     bool
}

// Weights of the composite score for non-urgent requests.
const (
	ratingWeight     = 0.4
	distanceWeight   = 0.3
	experienceWeight = 0.3
)

// DistanceProxy approximates geographic distance as the absolute
// difference between two postal codes treated as integers. It is a
// stand-in, not miles or kilometers; a real geodistance function can
// replace it without changing the ranking shape.
func DistanceProxy(a, b string) int {
	ai, errA := strconv.Atoi(strings.TrimSpace(a))
	bi, errB := strconv.Atoi(strings.TrimSpace(b))
	if errA != nil || errB != nil {
		return maxDistance
	}
	d := ai - bi
	if d < 0 {
		d = -d
	}
	return d
}

// Eligible reports whether a provider passes every filter for the request:
// availability, specialty overlap, and insurance acceptance.
func Eligible(p *directory.Provider, req Request) bool {
	if p == nil || !p.Available {
		return false
	}
	if !specialtyOverlap(p.Specialties, req.Specialty) {
		return false
	}
	if req.Insurance != "" && !acceptsInsurance(p.AcceptedInsurance, req.Insurance) {
		return false
	}
	return true
}

// specialtyOverlap matches loosely in both directions so free-text
// specialty naming ("Family Medicine" vs "family medicine physician")
// still connects patients to providers.
func specialtyOverlap(specialties []string, requested string) bool {
	want := strings.ToLower(strings.TrimSpace(requested))
	if want == "" {
		return false
	}
	for _, s := range specialties {
		have := strings.ToLower(strings.TrimSpace(s))
		if have == "" {
			continue
		}
		if strings.Contains(have, want) || strings.Contains(want, have) {
			return true
		}
	}
	return false
}

func acceptsInsurance(accepted []string, name string) bool {
	for _, a := range accepted {
		if a == name {
			return true
		}
	}
	return false
}

// Score computes the composite match quality used for non-urgent
// requests. Higher is better.
func Score(p *directory.Provider, distance int) float64 {
	return p.Rating*ratingWeight +
		(100-float64(distance))*distanceWeight +
		float64(p.YearsExperience)*experienceWeight
}

// Rank filters providers to the eligible subset and orders them by
// match quality, capped at DefaultMaxResults. Inputs are never mutated;
// an empty result means no match yet, not an error.
func Rank(providers []*directory.Provider, req Request) []*directory.Provider {
	return RankN(providers, req, DefaultMaxResults)
}

// RankN is Rank with a caller-chosen result cap. A cap <= 0 falls back
// to DefaultMaxResults.
func RankN(providers []*directory.Provider, req Request, limit int) []*directory.Provider {
	if limit <= 0 {
		limit = DefaultMaxResults
	}

	type candidate struct {
		provider *directory.Provider
		distance int
	}
	eligible := make([]candidate, 0, len(providers))
	for _, p := range providers {
		if Eligible(p, req) {
			eligible = append(eligible, candidate{
				provider: p,
				distance: DistanceProxy(p.PostalCode, req.PostalCode),
			})
		}
	}

	if req.Urgent {
		// Proximity dominates for urgent care: closest-first, ties keep
		// their original relative order.
		sort.SliceStable(eligible, func(i, j int) bool {
			return eligible[i].distance < eligible[j].distance
		})
	} else {
		sort.SliceStable(eligible, func(i, j int) bool {
			return Score(eligible[i].provider, eligible[i].distance) >
				Score(eligible[j].provider, eligible[j].distance)
		})
	}

	if len(eligible) > limit {
		eligible = eligible[:limit]
	}
	out := make([]*directory.Provider, len(eligible))
	for i, c := range eligible {
		out[i] = c.provider
	}
	return out
}

package route

import "strings"

// Search terms, checked in order. Destination terms win over origin terms
// when a query mentions both.
var (
	destinationTerms = []string{"école", "ecole", "school", "المدرسة", "مدرسة", "ghazala"}
	originTerms      = []string{"maison", "home", "المنزل", "منزل"}
)

type SearchTarget string

const (
	TargetNone        SearchTarget = "none"
	TargetOrigin      SearchTarget = "origin"
	TargetDestination SearchTarget = "destination"
)

// ResolveSearch matches free text against the known points of interest.
// An unrecognized query is not an error: it returns TargetNone and the
// caller should leave its view unchanged.
func (r *Route) ResolveSearch(query string) (Waypoint, SearchTarget) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Waypoint{}, TargetNone
	}
	if containsAny(q, destinationTerms) {
		return r.Destination(), TargetDestination
	}
	if containsAny(q, originTerms) {
		return r.Origin(), TargetOrigin
	}
	return Waypoint{}, TargetNone
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

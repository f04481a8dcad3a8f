package geocode

import (
	"strings"

	"github.com/nolanv/doorstep/internal/domain"
)

// The territory filter is deliberately lenient: a candidate passes when ANY
// heuristic matches ANY saved territory. False positives are preferred over
// hiding legitimate matches, so each heuristic below stays independently
// simple and independently testable.

// usStateNames maps US postal codes to full state names, since geocoding
// services return "Texas" where a saved territory says "TX".
var usStateNames = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"FL": "Florida", "GA": "Georgia", "HI": "Hawaii", "ID": "Idaho",
	"IL": "Illinois", "IN": "Indiana", "IA": "Iowa", "KS": "Kansas",
	"KY": "Kentucky", "LA": "Louisiana", "ME": "Maine", "MD": "Maryland",
	"MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota", "MS": "Mississippi",
	"MO": "Missouri", "MT": "Montana", "NE": "Nebraska", "NV": "Nevada",
	"NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico", "NY": "New York",
	"NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio", "OK": "Oklahoma",
	"OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina",
	"SD": "South Dakota", "TN": "Tennessee", "TX": "Texas", "UT": "Utah",
	"VT": "Vermont", "VA": "Virginia", "WA": "Washington", "WV": "West Virginia",
	"WI": "Wisconsin", "WY": "Wyoming", "DC": "District of Columbia",
}

// streetSuffixes are tokens stripped before the containment comparison, so
// "Austin Street" in a locality name still matches the city "Austin".
var streetSuffixes = map[string]bool{
	"st": true, "street": true, "ave": true, "avenue": true, "rd": true,
	"road": true, "blvd": true, "boulevard": true, "dr": true, "drive": true,
	"ln": true, "lane": true, "ct": true, "court": true, "cir": true,
	"circle": true, "way": true, "pl": true, "place": true, "hwy": true,
	"highway": true, "pkwy": true, "parkway": true, "ter": true,
	"terrace": true, "trl": true, "trail": true,
}

// cityPostalPrefixes is a heuristic table of 3-digit ZIP prefixes for larger
// metros, used as a weak fallback when the structured address lacks a usable
// locality. Unknown cities simply never match this heuristic.
var cityPostalPrefixes = map[string][]string{
	"austin":        {"733", "786", "787"},
	"dallas":        {"752", "753"},
	"houston":       {"770", "772", "773", "774", "775"},
	"san antonio":   {"782"},
	"fort worth":    {"761"},
	"el paso":       {"798", "799"},
	"phoenix":       {"850", "852", "853"},
	"los angeles":   {"900", "901", "902"},
	"san francisco": {"941"},
	"new york":      {"100", "101", "102"},
	"chicago":       {"606", "607", "608"},
	"seattle":       {"981"},
	"denver":        {"802"},
	"atlanta":       {"303", "311"},
	"miami":         {"331", "332"},
}

// FilterByTerritories keeps candidates matching at least one territory under
// the OR-of-heuristics rules. With no saved territories there is nothing to
// filter against, so all candidates pass.
func FilterByTerritories(candidates []Candidate, territories []domain.Territory) []Candidate {
	if len(territories) == 0 {
		return candidates
	}
	kept := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		for _, t := range territories {
			if MatchesTerritory(c, t) {
				kept = append(kept, c)
				break
			}
		}
	}
	return kept
}

// MatchesTerritory reports whether the candidate plausibly lies in the
// territory, by ORing all heuristics together.
func MatchesTerritory(c Candidate, t domain.Territory) bool {
	return matchesCityState(c, t) ||
		countyContainsCity(c, t) ||
		postalPrefixMatches(c, t) ||
		displayContainsCityAndState(c, t)
}

// matchesCityState compares the candidate's structured locality and state
// against the territory: the locality must equal, contain, or be contained in
// the territory city (after case folding and street-suffix/punctuation
// stripping), and the state must be equivalent.
func matchesCityState(c Candidate, t domain.Territory) bool {
	locality := scrubTokens(c.Address.Locality())
	city := scrubTokens(t.City)
	if locality == "" || city == "" {
		return false
	}
	cityMatch := locality == city ||
		strings.Contains(locality, city) ||
		strings.Contains(city, locality)
	return cityMatch && stateEquivalent(c.Address.State, t.State)
}

// countyContainsCity matches candidates whose county is named after the
// territory city (e.g. "Travis County" never, but "Dallas County" for Dallas).
func countyContainsCity(c Candidate, t domain.Territory) bool {
	county := foldSpace(c.Address.County)
	city := foldSpace(t.City)
	return county != "" && city != "" && strings.Contains(county, city)
}

// postalPrefixMatches compares the candidate's 3-digit postal prefix against
// the heuristic prefix table for the territory city.
func postalPrefixMatches(c Candidate, t domain.Territory) bool {
	if len(c.Address.Postcode) < 3 {
		return false
	}
	prefix := c.Address.Postcode[:3]
	for _, p := range cityPostalPrefixes[foldSpace(t.City)] {
		if p == prefix {
			return true
		}
	}
	return false
}

// displayContainsCityAndState is the coarsest heuristic: the raw display
// string must mention both the territory city and its state (postal code or
// full name).
func displayContainsCityAndState(c Candidate, t domain.Territory) bool {
	display := foldSpace(c.DisplayName)
	city := foldSpace(t.City)
	if display == "" || city == "" || !strings.Contains(display, city) {
		return false
	}
	state := domain.NormalizeState(t.State)
	if containsToken(c.DisplayName, state) {
		return true
	}
	if name, ok := usStateNames[state]; ok {
		return strings.Contains(display, foldSpace(name))
	}
	return false
}

// stateEquivalent reports whether a candidate state ("Texas", "TX") refers to
// the territory state (stored as an uppercased code or name).
func stateEquivalent(candidate, territory string) bool {
	cand := foldSpace(candidate)
	terr := foldSpace(territory)
	if cand == "" || terr == "" {
		return false
	}
	if cand == terr {
		return true
	}
	if name, ok := usStateNames[domain.NormalizeState(territory)]; ok && cand == foldSpace(name) {
		return true
	}
	if name, ok := usStateNames[domain.NormalizeState(candidate)]; ok && terr == foldSpace(name) {
		return true
	}
	return false
}

// scrubTokens lowercases, strips punctuation, and drops street-suffix tokens.
func scrubTokens(s string) string {
	var kept []string
	for _, tok := range strings.Fields(stripPunct(strings.ToLower(s))) {
		if streetSuffixes[tok] {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// containsToken reports whether any whitespace/punctuation-delimited token of
// s equals tok, case-insensitively. Used for two-letter state codes, where a
// plain substring test would match inside unrelated words.
func containsToken(s, tok string) bool {
	tok = strings.ToUpper(tok)
	for _, f := range strings.Fields(stripPunct(strings.ToUpper(s))) {
		if f == tok {
			return true
		}
	}
	return false
}

// foldSpace lowercases, strips punctuation, and collapses whitespace.
func foldSpace(s string) string {
	return strings.Join(strings.Fields(stripPunct(strings.ToLower(s))), " ")
}

func stripPunct(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case ',', '.', ';', ':', '\'', '"', '(', ')', '#', '-', '/':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

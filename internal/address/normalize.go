package address

import "strings"

// compassWords expands single and double letter compass abbreviations.
var compassWords = map[string]string{
	"n":  "north",
	"s":  "south",
	"e":  "east",
	"w":  "west",
	"ne": "northeast",
	"nw": "northwest",
	"se": "southeast",
	"sw": "southwest",
}

// streetWords expands common US street-type abbreviations the way the
// geocoder indexes them.
var streetWords = map[string]string{
	"st":   "street",
	"ave":  "avenue",
	"av":   "avenue",
	"blvd": "boulevard",
	"dr":   "drive",
	"rd":   "road",
	"ln":   "lane",
	"ct":   "court",
	"cir":  "circle",
	"pl":   "place",
	"pkwy": "parkway",
	"hwy":  "highway",
	"sq":   "square",
	"ter":  "terrace",
	"trl":  "trail",
	"way":  "way",
}

// Normalize turns raw user input into a geocoder-friendly query: lowercase
// word tokens joined by single spaces, with abbreviations expanded and the
// trailing token wildcarded when it looks like it is still being typed.
// Empty or all-punctuation input normalizes to ""; callers treat that as
// "no search".
func Normalize(raw string) string {
	lowered := strings.ToLower(strings.ReplaceAll(raw, ",", " "))

	var out []string
	lastPartial := false

	for _, tok := range strings.Fields(lowered) {
		cleaned := stripNonWord(tok)
		if cleaned == "" {
			continue
		}

		word, partial := expandToken(cleaned)
		out = append(out, word)
		lastPartial = partial
	}

	if len(out) == 0 {
		return ""
	}

	// Only the final token can be a partially typed word; wildcarding it
	// lets the geocoder prefix-match while earlier tokens stay exact.
	if lastPartial {
		out[len(out)-1] += "*"
	}

	return strings.Join(out, " ")
}

// expandToken classifies a cleaned token, first match wins. The bool reports
// whether the token is a short plain word eligible for a trailing wildcard.
func expandToken(tok string) (string, bool) {
	if isDigits(tok) {
		return tok, false
	}
	if word, ok := compassWords[tok]; ok {
		return word, false
	}
	if word, ok := streetWords[tok]; ok {
		return word, false
	}
	if len(tok) >= 2 && len(tok) <= 4 && isAlpha(tok) {
		return tok, true
	}
	return tok, false
}

// stripNonWord keeps only word characters (letters, digits, underscore).
func stripNonWord(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '_' ||
			(r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return s != ""
}

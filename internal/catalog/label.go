package catalog

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultSmallWords are lowercased unless they open the label
var DefaultSmallWords = []string{
	"and", "or", "the", "a", "an", "for", "to", "of", "in", "on", "at", "by",
	"from", "with", "as", "vs", "via",
}

// DefaultAcronyms are always rendered in upper case
var DefaultAcronyms = []string{
	"API", "APIS", "SEO", "SEM", "FAQ", "FAQS", "UX", "UI", "PPC", "CRM",
	"OKR", "OKRS", "KPI", "KPIS", "HR", "CTA", "CTAS", "B2B", "B2C", "SAAS",
	"SQL", "NOSQL", "JSON", "CSV", "IOS", "AI",
}

// Correction rewrites a literal idiom that word-by-word casing gets wrong
type Correction struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// DefaultCorrections are applied in order after casing
var DefaultCorrections = []Correction{
	{Pattern: regexp.MustCompile(`(?i)faqs`), Replacement: "FAQs"},
	{Pattern: regexp.MustCompile(`(?i)\bA/B\b`), Replacement: "A/B"},
	{Pattern: regexp.MustCompile(`(?i)\bABM\b`), Replacement: "ABM"},
	{Pattern: regexp.MustCompile(`\bVip\b`), Replacement: "VIP"},
}

// LiteralCorrection builds a case-insensitive whole-word correction that
// replaces any casing of literal with literal itself.
func LiteralCorrection(literal string) Correction {
	return Correction{
		Pattern:     regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(literal) + `\b`),
		Replacement: literal,
	}
}

// LabelFormatter turns raw catalog labels into display titles. The lookup
// tables are configuration data tuned to the catalog vocabulary.
type LabelFormatter struct {
	acronyms    map[string]bool
	smallWords  map[string]bool
	corrections []Correction
}

// NewLabelFormatter creates a formatter from the given tables
func NewLabelFormatter(acronyms, smallWords []string, corrections []Correction) *LabelFormatter {
	f := &LabelFormatter{
		acronyms:    make(map[string]bool, len(acronyms)),
		smallWords:  make(map[string]bool, len(smallWords)),
		corrections: append([]Correction(nil), corrections...),
	}
	for _, a := range acronyms {
		f.acronyms[strings.ToUpper(a)] = true
	}
	for _, w := range smallWords {
		f.smallWords[strings.ToLower(w)] = true
	}
	return f
}

// DefaultLabelFormatter uses the built-in tables
func DefaultLabelFormatter() *LabelFormatter {
	return NewLabelFormatter(DefaultAcronyms, DefaultSmallWords, DefaultCorrections)
}

var defaultFormatter = DefaultLabelFormatter()

// FormatLabel formats raw with the default tables
func FormatLabel(raw string) string {
	return defaultFormatter.Format(raw)
}

// Format collapses whitespace, title-cases each word with acronym and
// small-word handling and then applies the literal corrections.
// Format(Format(s)) == Format(s) for labels made of words and punctuation.
func (f *LabelFormatter) Format(raw string) string {
	runes := []rune(strings.Join(strings.Fields(raw), " "))

	var b strings.Builder
	first := true
	for i := 0; i < len(runes); {
		if !isWordRune(runes[i]) {
			b.WriteRune(runes[i])
			i++
			continue
		}

		j := i
		for j < len(runes) && (isWordRune(runes[j]) || isApostrophe(runes[j])) {
			j++
		}
		end := j
		for end > i && isApostrophe(runes[end-1]) {
			end--
		}

		b.WriteString(f.formatWord(string(runes[i:end]), first))
		b.WriteString(string(runes[end:j]))
		first = false
		i = j
	}

	out := b.String()
	for _, c := range f.corrections {
		out = c.Pattern.ReplaceAllLiteralString(out, c.Replacement)
	}
	return out
}

func (f *LabelFormatter) formatWord(word string, first bool) string {
	upper := strings.ToUpper(word)
	if f.acronyms[upper] {
		return upper
	}
	lower := strings.ToLower(word)
	if !first && f.smallWords[lower] {
		return lower
	}
	r := []rune(lower)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func isApostrophe(r rune) bool {
	return r == '\'' || r == '’'
}

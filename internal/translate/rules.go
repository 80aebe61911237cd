package translate

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"pathweaver/internal/model"
)

// RuleTranslator parses requirement names lexically. It covers the common
// shapes of pathway requirement text without any model call, which makes
// it the offline fallback and the reference for deterministic tests.
type RuleTranslator struct{}

// NewRuleTranslator returns the deterministic lexical translator.
func NewRuleTranslator() *RuleTranslator {
	return &RuleTranslator{}
}

// Translate parses every name independently. Never fails; names it cannot
// interpret produce zero-value queries (pure semantic search downstream).
func (t *RuleTranslator) Translate(_ context.Context, names []string) ([]model.StructuredQuery, error) {
	queries := make([]model.StructuredQuery, len(names))
	for i, name := range names {
		queries[i] = parseRequirementName(name)
	}
	return queries, nil
}

var (
	// "ICS 300+", "MATH 241", "ENG 100A"
	subjectNumberRe = regexp.MustCompile(`\b([A-Z]{2,4})\s+(\d{3})([A-Z])?(\+)?`)
	// "FG (A/B/C)", "MEDT 331 (E, W)", "(DY)"
	parenGroupRe = regexp.MustCompile(`(\w+)?\s*\(([^)]+)\)`)
	parenOnlyRe  = regexp.MustCompile(`\([^)]*\)`)
	// standalone designation codes, e.g. "FQ designation elective"
	knownDesignations = map[string]bool{
		"FW": true, "FQ": true, "FS": true,
		"FGA": true, "FGB": true, "FGC": true,
		"DA": true, "DB": true, "DH": true, "DL": true, "DP": true, "DS": true, "DY": true,
		"HAP": true, "WI": true, "OC": true, "ETH": true, "HSL": true,
	}
)

func parseRequirementName(name string) model.StructuredQuery {
	var q model.StructuredQuery

	// Parenthesized groups carry designations: "(DY)" tags the course,
	// "FG (A/B/C)" expands against the prefix token. Single letters next
	// to a course number are suffix alternatives the index cannot express;
	// those are dropped and the number alone is searched.
	rest := name
	for _, m := range parenGroupRe.FindAllStringSubmatch(name, -1) {
		prefix, content := strings.ToUpper(m[1]), m[2]
		tokens := splitCodes(content)
		if len(tokens) == 0 {
			continue
		}
		allSingle := true
		for _, tok := range tokens {
			if len(tok) > 1 {
				allSingle = false
			}
		}
		switch {
		case !allSingle:
			q.Designations = append(q.Designations, tokens...)
		case prefix != "" && !isNumeric(prefix):
			for _, tok := range tokens {
				q.Designations = append(q.Designations, prefix+tok)
			}
			rest = strings.Replace(rest, m[0], "", 1)
		}
	}
	rest = parenOnlyRe.ReplaceAllString(rest, "")

	if m := subjectNumberRe.FindStringSubmatch(rest); m != nil {
		q.SubjectCode = m[1]
		number, _ := strconv.Atoi(m[2])
		if m[4] == "+" {
			q.CourseNumberGTE = number
		} else {
			q.CourseNumber = number
			q.CourseSuffix = m[3]
		}
		return q
	}

	// No course reference: pick up standalone designation codes.
	for _, tok := range strings.Fields(strings.ToUpper(rest)) {
		tok = strings.Trim(tok, ".,;:")
		if knownDesignations[tok] && !contains(q.Designations, tok) {
			q.Designations = append(q.Designations, tok)
		}
	}
	return q
}

// splitCodes breaks "A/B/C" or "E, W" or "DY" into upper-cased tokens.
func splitCodes(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == ',' || r == ' '
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ToUpper(strings.TrimSpace(f))
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func isNumeric(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

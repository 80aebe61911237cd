package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Catalog feeds encode credits inconsistently: fixed numbers, dash or "to"
// ranges, and "V" for variable-credit courses. These helpers normalize the
// raw strings before a course or template enters the stores.

var (
	rangeSeparatorRe = regexp.MustCompile(`(?i)\s*(–|—|to)\s*`)
	dashSpacingRe    = regexp.MustCompile(`\s*-\s*`)
	creditRangeRe    = regexp.MustCompile(`^(\d+(?:\.\d+)?)-(\d+(?:\.\d+)?)$`)
	creditFixedRe    = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	semesterTokenRe  = regexp.MustCompile(`\b(fall|spring|summer)\b`)
)

// ParseCredits normalizes a raw credit string into a CreditRange.
// Accepts "3", "1.5", "1-3", "1 – 3", "1 to 3", and "V"/"var"/"variable"
// (mapped to 1-4). Blank input is an error; callers drop such rows.
func ParseCredits(raw string) (CreditRange, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return CreditRange{}, fmt.Errorf("credits missing")
	}

	switch strings.ToLower(s) {
	case "v", "var", "variable":
		return CreditRange{Min: 1, Max: 4}, nil
	}

	s = rangeSeparatorRe.ReplaceAllString(s, "-")
	s = dashSpacingRe.ReplaceAllString(s, "-")

	if m := creditRangeRe.FindStringSubmatch(s); m != nil {
		lo, _ := strconv.ParseFloat(m[1], 64)
		hi, _ := strconv.ParseFloat(m[2], 64)
		r := CreditRange{Min: lo, Max: hi}
		if err := r.Validate(); err != nil {
			return CreditRange{}, fmt.Errorf("credits %q: %w", raw, err)
		}
		return r, nil
	}

	if creditFixedRe.MatchString(s) {
		x, _ := strconv.ParseFloat(s, 64)
		return CreditRange{Min: x, Max: x}, nil
	}

	return CreditRange{}, fmt.Errorf("unrecognized credits %q", raw)
}

// NormalizeSemesterName canonicalizes free-form term labels ("Fall
// Semester", "fall_semester") to a SemesterName. A label naming both
// summer and fall (a combined session) maps to fall. Unknown labels are
// returned as-is so template validation can reject them with context.
func NormalizeSemesterName(raw string) SemesterName {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	s = strings.Join(strings.Fields(s), " ")

	tokens := map[string]bool{}
	for _, t := range semesterTokenRe.FindAllString(s, -1) {
		tokens[t] = true
	}
	if tokens["fall"] && tokens["summer"] {
		return SemesterFall
	}
	if len(tokens) == 1 {
		for t := range tokens {
			return SemesterName(t)
		}
	}
	return SemesterName(s)
}

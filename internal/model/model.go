// Package model defines the domain types shared across the pathway
// completion engine: abstract degree-plan templates, concrete catalog
// courses, structured search queries, and the completed plan that pairs
// every requirement slot with a resolved course.
package model

import (
	"fmt"

	"github.com/google/uuid"
)

// =============================================================================
// CREDITS
// =============================================================================

// CreditRange is a normalized credit value expressed as a closed range
// [Min, Max]. Fixed-credit courses have Min == Max.
type CreditRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether v falls inside the range.
func (r CreditRange) Contains(v float64) bool {
	return r.Min <= v && v <= r.Max
}

// Validate checks the range invariants (non-negative, Min <= Max).
func (r CreditRange) Validate() error {
	if r.Min < 0 || r.Max < 0 {
		return fmt.Errorf("%w: negative credit range [%g, %g]", ErrMalformedTemplate, r.Min, r.Max)
	}
	if r.Max < r.Min {
		return fmt.Errorf("%w: credit range min %g > max %g", ErrMalformedTemplate, r.Min, r.Max)
	}
	return nil
}

// =============================================================================
// CATALOG COURSES
// =============================================================================

// CatalogCourse is a concrete course record from the institution catalog.
type CatalogCourse struct {
	CourseID      string      `json:"course_id"`
	SubjectCode   string      `json:"subject_code"`
	CourseNumber  int         `json:"course_number"`
	CourseSuffix  string      `json:"course_suffix,omitempty"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Credits       CreditRange `json:"credits"`
	Department    string      `json:"department,omitempty"`
	InstitutionID int         `json:"institution_id,omitempty"`
	Designations  []string    `json:"designations,omitempty"`
	Metadata      string      `json:"metadata,omitempty"`
}

// Code returns the display code for the course, e.g. "ICS 111" or "ENG 100A".
func (c CatalogCourse) Code() string {
	return fmt.Sprintf("%s %d%s", c.SubjectCode, c.CourseNumber, c.CourseSuffix)
}

// SearchText is the canonical text embedded for semantic retrieval.
func (c CatalogCourse) SearchText() string {
	return fmt.Sprintf("%s %s\n%s", c.Code(), c.Title, c.Description)
}

// =============================================================================
// PATHWAY TEMPLATES
// =============================================================================

// SemesterName is a canonical term name.
type SemesterName string

const (
	SemesterFall   SemesterName = "fall"
	SemesterSpring SemesterName = "spring"
	SemesterSummer SemesterName = "summer"
)

// RequirementSlot is one atomic line item of a plan: a named course-like
// requirement ("ICS 300+", "FQ elective") with its credit weight. Identity
// is positional; slots carry no stable ID across runs.
type RequirementSlot struct {
	Name    string  `json:"name"`
	Credits float64 `json:"credits"`
}

// SemesterPlan is one term of a year plan.
type SemesterPlan struct {
	SemesterName SemesterName      `json:"semester_name"`
	Credits      float64           `json:"credits"`
	Courses      []RequirementSlot `json:"courses"`
}

// YearPlan is one academic year of a pathway template.
type YearPlan struct {
	YearNumber int            `json:"year_number"`
	Semesters  []SemesterPlan `json:"semesters"`
}

// PathwayTemplate is an abstract, catalog-independent multi-year degree
// plan. Templates are immutable once loaded from the pathway store.
type PathwayTemplate struct {
	PathwayID    string     `json:"pathway_id"`
	ProgramName  string     `json:"program_name"`
	Institution  string     `json:"institution"`
	TotalCredits float64    `json:"total_credits"`
	Years        []YearPlan `json:"years"`
}

// Validate checks the structural invariants of a template. Violations are
// reported with position context and wrap ErrMalformedTemplate.
func (p PathwayTemplate) Validate() error {
	if p.ProgramName == "" {
		return fmt.Errorf("%w: missing program name", ErrMalformedTemplate)
	}
	if p.TotalCredits < 0 {
		return fmt.Errorf("%w: negative total credits %g", ErrMalformedTemplate, p.TotalCredits)
	}
	for yi, year := range p.Years {
		for si, sem := range year.Semesters {
			switch sem.SemesterName {
			case SemesterFall, SemesterSpring, SemesterSummer:
			default:
				return fmt.Errorf("%w: year %d semester %d: unknown semester name %q",
					ErrMalformedTemplate, yi, si, sem.SemesterName)
			}
			if sem.Credits < 0 {
				return fmt.Errorf("%w: year %d semester %d: negative credits %g",
					ErrMalformedTemplate, yi, si, sem.Credits)
			}
			for ci, slot := range sem.Courses {
				if slot.Name == "" {
					return fmt.Errorf("%w: year %d semester %d slot %d: empty requirement name",
						ErrMalformedTemplate, yi, si, ci)
				}
				if slot.Credits < 0 {
					return fmt.Errorf("%w: year %d semester %d slot %d: negative credits %g",
						ErrMalformedTemplate, yi, si, ci, slot.Credits)
				}
			}
		}
	}
	return nil
}

// =============================================================================
// STRUCTURED QUERIES
// =============================================================================

// StructuredQuery is the filter predicate derived from a requirement's
// free-text name. Zero-value fields mean "no filter on that dimension",
// never "match empty".
type StructuredQuery struct {
	SubjectCode     string   `json:"subject_code,omitempty"`
	CourseNumber    int      `json:"course_number,omitempty"`
	CourseNumberGTE int      `json:"course_number_gte,omitempty"`
	CourseSuffix    string   `json:"course_suffix,omitempty"`
	Designations    []string `json:"designations,omitempty"`
}

// IsZero reports whether the query carries no filters at all.
func (q StructuredQuery) IsZero() bool {
	return q.SubjectCode == "" && q.CourseNumber == 0 && q.CourseNumberGTE == 0 &&
		q.CourseSuffix == "" && len(q.Designations) == 0
}

// =============================================================================
// RESOLVED OUTPUT
// =============================================================================

// PlaceholderSubject marks a synthesized course standing in for a
// requirement with no catalog match.
const PlaceholderSubject = "TBD"

// ResolvedCourse is a catalog course chosen as the primary recommendation
// for one requirement slot, plus the full ranked result set. For a
// non-empty search the primary equals Candidates[0].
type ResolvedCourse struct {
	CatalogCourse
	Candidates []CatalogCourse `json:"candidates"`
}

// IsPlaceholder reports whether the course was synthesized rather than
// matched from the catalog.
func (c ResolvedCourse) IsPlaceholder() bool {
	return c.SubjectCode == PlaceholderSubject && len(c.Candidates) == 0
}

// NewPlaceholder synthesizes the stand-in course for a requirement with no
// catalog match. Its credit range is pinned to the requirement's credit
// value and its candidate list is empty.
func NewPlaceholder(slot RequirementSlot) ResolvedCourse {
	return ResolvedCourse{
		CatalogCourse: CatalogCourse{
			CourseID:     uuid.NewString(),
			SubjectCode:  PlaceholderSubject,
			Title:        fmt.Sprintf("%s (no match found)", slot.Name),
			Credits:      CreditRange{Min: slot.Credits, Max: slot.Credits},
			Designations: []string{},
		},
		Candidates: []CatalogCourse{},
	}
}

// CompletedSemester mirrors SemesterPlan with slots replaced by resolutions.
type CompletedSemester struct {
	SemesterName SemesterName     `json:"semester_name"`
	Credits      float64          `json:"credits"`
	Courses      []ResolvedCourse `json:"courses"`
}

// CompletedYear mirrors YearPlan with slots replaced by resolutions.
type CompletedYear struct {
	YearNumber int                 `json:"year_number"`
	Semesters  []CompletedSemester `json:"semesters"`
}

// CompletedPathway is the fully resolved plan: the template shape with
// every requirement slot replaced by a resolved course, the alternate
// templates that were considered (chosen template first), and a narrative
// summary of the fit.
type CompletedPathway struct {
	PathwayID    string          `json:"pathway_id"`
	ProgramName  string          `json:"program_name"`
	Institution  string          `json:"institution"`
	TotalCredits float64         `json:"total_credits"`
	Years        []CompletedYear `json:"years"`
	Candidates   []string        `json:"candidates"`
	Summary      string          `json:"summary"`
}

// Package export renders completed pathways into flat interchange formats
// for advising tools and SIS imports.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"pathweaver/internal/model"
)

// Plan CSV template. Keep header order EXACT; downstream imports match by
// position, not name.
var planHeader = []string{
	"PATHWAY_ID",
	"PROGRAM_NAME",
	"INSTITUTION",
	"YEAR",
	"SEMESTER",
	"COURSE_ID",
	"COURSE_CODE",
	"COURSE_TITLE",
	"CREDITS_MIN",
	"CREDITS_MAX",
	"DESIGNATIONS",
	"PLACEHOLDER",
	"ALTERNATE_COUNT",
}

// WriteCSV writes one row per resolved course, in plan order.
func WriteCSV(w io.Writer, p model.CompletedPathway) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(planHeader); err != nil {
		return err
	}

	for _, year := range p.Years {
		for _, sem := range year.Semesters {
			for _, course := range sem.Courses {
				if err := cw.Write(toPlanRow(p, year, sem, course)); err != nil {
					return err
				}
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func toPlanRow(p model.CompletedPathway, year model.CompletedYear, sem model.CompletedSemester, c model.ResolvedCourse) []string {
	placeholder := "false"
	code := c.Code()
	if c.IsPlaceholder() {
		placeholder = "true"
		// Placeholders have no real catalog code.
		code = ""
	}

	designations := ""
	if len(c.Designations) > 0 {
		// avoid commas to keep CSV clean
		designations = strings.Join(c.Designations, " | ")
	}

	return []string{
		p.PathwayID,                     // PATHWAY_ID
		p.ProgramName,                   // PROGRAM_NAME
		p.Institution,                   // INSTITUTION
		strconv.Itoa(year.YearNumber),   // YEAR
		string(sem.SemesterName),        // SEMESTER
		c.CourseID,                      // COURSE_ID
		code,                            // COURSE_CODE
		c.Title,                         // COURSE_TITLE
		formatCredits(c.Credits.Min),    // CREDITS_MIN
		formatCredits(c.Credits.Max),    // CREDITS_MAX
		designations,                    // DESIGNATIONS
		placeholder,                     // PLACEHOLDER
		strconv.Itoa(len(c.Candidates)), // ALTERNATE_COUNT
	}
}

func formatCredits(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

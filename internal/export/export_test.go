package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pathweaver/internal/model"
)

func testPathway() model.CompletedPathway {
	ics111 := model.CatalogCourse{
		CourseID:     "ics111",
		SubjectCode:  "ICS",
		CourseNumber: 111,
		Title:        "Introduction to Computer Science I",
		Description:  "programming fundamentals",
		Credits:      model.CreditRange{Min: 4, Max: 4},
		Designations: []string{"FS"},
	}
	return model.CompletedPathway{
		PathwayID:    "bs-ics",
		ProgramName:  "BS Computer Science",
		Institution:  "Manoa",
		TotalCredits: 120,
		Years: []model.CompletedYear{{
			YearNumber: 1,
			Semesters: []model.CompletedSemester{
				{
					SemesterName: model.SemesterFall,
					Credits:      4,
					Courses: []model.ResolvedCourse{{
						CatalogCourse: ics111,
						Candidates:    []model.CatalogCourse{ics111},
					}},
				},
				{
					SemesterName: model.SemesterSpring,
					Credits:      3,
					Courses: []model.ResolvedCourse{
						model.NewPlaceholder(model.RequirementSlot{Name: "ART 999", Credits: 3}),
					},
				},
			},
		}},
		Candidates: []string{"BS Computer Science", "BA Art History"},
		Summary:    "A solid first year.",
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testPathway()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // header + 2 courses

	assert.Equal(t, planHeader, records[0])

	matched := records[1]
	assert.Equal(t, "bs-ics", matched[0])
	assert.Equal(t, "BS Computer Science", matched[1])
	assert.Equal(t, "1", matched[3])
	assert.Equal(t, "fall", matched[4])
	assert.Equal(t, "ics111", matched[5])
	assert.Equal(t, "ICS 111", matched[6])
	assert.Equal(t, "4", matched[9])
	assert.Equal(t, "FS", matched[11])
	assert.Equal(t, "false", matched[12])
	assert.Equal(t, "1", matched[13])

	placeholder := records[2]
	assert.Equal(t, "spring", placeholder[4])
	assert.Empty(t, placeholder[6], "placeholders carry no catalog code")
	assert.Equal(t, "ART 999 (no match found)", placeholder[7])
	assert.Equal(t, "3", placeholder[9])
	assert.Equal(t, "true", placeholder[12])
	assert.Equal(t, "0", placeholder[13])
}

func TestWriteCSVEmptyPlan(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, model.CompletedPathway{ProgramName: "Empty"}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1) // header only
}

func TestWriteXML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXML(&buf, testPathway()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, `<Pathway_Plan pathway_id="bs-ics">`)
	assert.Contains(t, out, "<program_name>BS Computer Science</program_name>")
	assert.Contains(t, out, "<total_credits>120</total_credits>")
	assert.Contains(t, out, `<year number="1">`)
	assert.Contains(t, out, `<semester name="fall" credits="4">`)
	assert.Contains(t, out, `<course placeholder="false">`)
	assert.Contains(t, out, "<code>ICS 111</code>")
	assert.Contains(t, out, "<designation>FS</designation>")
	assert.Contains(t, out, `<course placeholder="true">`)
	assert.Contains(t, out, "<title>ART 999 (no match found)</title>")
	assert.Contains(t, out, "<candidate>BA Art History</candidate>")
	assert.Contains(t, out, "<summary>A solid first year.</summary>")

	// Placeholders have no catalog code element.
	placeholderPart := out[strings.Index(out, `placeholder="true"`):]
	assert.NotContains(t, placeholderPart, "<code>")
}

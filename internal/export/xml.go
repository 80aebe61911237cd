package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"pathweaver/internal/model"
)

/*
Plan XML shape:

<Pathway_Plan pathway_id="...">
  <program_name>...</program_name>
  <institution>...</institution>
  <total_credits>120</total_credits>
  <year number="1">
    <semester name="fall" credits="15">
      <course placeholder="false">
        <course_id>...</course_id>
        <code>ICS 111</code>
        <title>...</title>
        <credits_min>3</credits_min>
        <credits_max>3</credits_max>
        <designations>
          <designation>FS</designation>
        </designations>
        <alternate_count>4</alternate_count>
      </course>
    </semester>
  </year>
  <candidates>
    <candidate>BS Computer Science</candidate>
  </candidates>
  <summary>...</summary>
</Pathway_Plan>
*/

type xmlPlan struct {
	XMLName      xml.Name  `xml:"Pathway_Plan"`
	PathwayID    string    `xml:"pathway_id,attr,omitempty"`
	ProgramName  string    `xml:"program_name"`
	Institution  string    `xml:"institution,omitempty"`
	TotalCredits string    `xml:"total_credits,omitempty"`
	Years        []xmlYear `xml:"year"`

	Candidates *xmlCandidates `xml:"candidates,omitempty"`
	Summary    string         `xml:"summary,omitempty"`
}

type xmlYear struct {
	Number    int           `xml:"number,attr"`
	Semesters []xmlSemester `xml:"semester"`
}

type xmlSemester struct {
	Name    string      `xml:"name,attr"`
	Credits string      `xml:"credits,attr,omitempty"`
	Courses []xmlCourse `xml:"course"`
}

type xmlCourse struct {
	Placeholder bool   `xml:"placeholder,attr"`
	CourseID    string `xml:"course_id"`
	Code        string `xml:"code,omitempty"`
	Title       string `xml:"title,omitempty"`
	CreditsMin  string `xml:"credits_min"`
	CreditsMax  string `xml:"credits_max"`

	Designations *xmlDesignations `xml:"designations,omitempty"`

	AlternateCount int `xml:"alternate_count"`
}

type xmlDesignations struct {
	Designations []string `xml:"designation"`
}

type xmlCandidates struct {
	Candidates []string `xml:"candidate"`
}

// WriteXML writes the completed pathway as a single indented XML document.
func WriteXML(w io.Writer, p model.CompletedPathway) error {
	out := xmlPlan{
		PathwayID:    p.PathwayID,
		ProgramName:  strings.TrimSpace(p.ProgramName),
		Institution:  strings.TrimSpace(p.Institution),
		TotalCredits: formatCredits(p.TotalCredits),
		Years:        make([]xmlYear, 0, len(p.Years)),
		Summary:      strings.TrimSpace(p.Summary),
	}
	if p.TotalCredits == 0 {
		out.TotalCredits = ""
	}

	if len(p.Candidates) > 0 {
		out.Candidates = &xmlCandidates{Candidates: p.Candidates}
	}

	for _, year := range p.Years {
		xy := xmlYear{
			Number:    year.YearNumber,
			Semesters: make([]xmlSemester, 0, len(year.Semesters)),
		}
		for _, sem := range year.Semesters {
			xs := xmlSemester{
				Name:    string(sem.SemesterName),
				Courses: make([]xmlCourse, 0, len(sem.Courses)),
			}
			if sem.Credits > 0 {
				xs.Credits = formatCredits(sem.Credits)
			}
			for _, c := range sem.Courses {
				xs.Courses = append(xs.Courses, toXMLCourse(c))
			}
			xy.Semesters = append(xy.Semesters, xs)
		}
		out.Years = append(out.Years, xy)
	}

	b, err := xml.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("export: marshal xml: %w", err)
	}

	if _, err := w.Write(append([]byte(xml.Header), b...)); err != nil {
		return fmt.Errorf("export: write xml: %w", err)
	}
	return nil
}

func toXMLCourse(c model.ResolvedCourse) xmlCourse {
	row := xmlCourse{
		Placeholder:    c.IsPlaceholder(),
		CourseID:       c.CourseID,
		Title:          strings.TrimSpace(c.Title),
		CreditsMin:     formatCredits(c.Credits.Min),
		CreditsMax:     formatCredits(c.Credits.Max),
		AlternateCount: len(c.Candidates),
	}
	if !c.IsPlaceholder() {
		row.Code = c.Code()
	}
	if len(c.Designations) > 0 {
		row.Designations = &xmlDesignations{Designations: c.Designations}
	}
	return row
}

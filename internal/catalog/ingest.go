package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"pathweaver/internal/model"
)

// The catalog feed is a JSON array in the registrar's export shape. Credits
// arrive as loose strings ("3", "1-3", "V") or pre-normalized ranges; rows
// without credits are dropped rather than guessed at.

type rawCourse struct {
	CourseID     string          `json:"course_id"`
	CoursePrefix string          `json:"course_prefix"`
	CourseNumber string          `json:"course_number"`
	CourseTitle  string          `json:"course_title"`
	CourseDesc   string          `json:"course_desc"`
	NumUnits     json.RawMessage `json:"num_units"`
	DeptName     string          `json:"dept_name"`
	InstIPEDS    int             `json:"inst_ipeds"`
	Designations []string        `json:"designations"`
	Metadata     string          `json:"metadata"`
}

var courseNumberRe = regexp.MustCompile(`^(\d+)\s*([A-Z])?$`)

// LoadFile reads a catalog feed and normalizes it into CatalogCourse
// records. Returns the parsed courses and the number of rows skipped for
// missing or unparseable fields.
func LoadFile(path string) ([]model.CatalogCourse, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read catalog feed: %w", err)
	}
	return parseFeed(data)
}

func parseFeed(data []byte) ([]model.CatalogCourse, int, error) {
	var raws []rawCourse
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, 0, fmt.Errorf("failed to decode catalog feed: %w", err)
	}

	var courses []model.CatalogCourse
	skipped := 0
	for _, r := range raws {
		course, ok := normalizeCourse(r)
		if !ok {
			skipped++
			continue
		}
		courses = append(courses, course)
	}
	return courses, skipped, nil
}

func normalizeCourse(r rawCourse) (model.CatalogCourse, bool) {
	number, suffix, ok := parseCourseNumber(r.CourseNumber)
	if !ok || r.CoursePrefix == "" {
		return model.CatalogCourse{}, false
	}

	credits, ok := parseNumUnits(r.NumUnits)
	if !ok {
		return model.CatalogCourse{}, false
	}

	id := r.CourseID
	if id == "" {
		id = uuid.NewString()
	}

	return model.CatalogCourse{
		CourseID:      id,
		SubjectCode:   strings.ToUpper(strings.TrimSpace(r.CoursePrefix)),
		CourseNumber:  number,
		CourseSuffix:  suffix,
		Title:         strings.TrimSpace(r.CourseTitle),
		Description:   strings.TrimSpace(r.CourseDesc),
		Credits:       credits,
		Department:    r.DeptName,
		InstitutionID: r.InstIPEDS,
		Designations:  r.Designations,
		Metadata:      r.Metadata,
	}, true
}

// parseCourseNumber splits feed numbers like "101" or "101A" into the
// numeric part and an optional one-letter suffix.
func parseCourseNumber(raw string) (int, string, bool) {
	m := courseNumberRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, "", false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}
	return n, m[2], true
}

// parseNumUnits accepts either a {"min":..,"max":..} object or a loose
// credit string.
func parseNumUnits(raw json.RawMessage) (model.CreditRange, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return model.CreditRange{}, false
	}

	var r model.CreditRange
	if err := json.Unmarshal(raw, &r); err == nil && (r.Min != 0 || r.Max != 0) {
		if r.Validate() != nil {
			return model.CreditRange{}, false
		}
		return r, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		parsed, err := model.ParseCredits(s)
		if err != nil {
			return model.CreditRange{}, false
		}
		return parsed, true
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil && f >= 0 {
		return model.CreditRange{Min: f, Max: f}, true
	}

	return model.CreditRange{}, false
}

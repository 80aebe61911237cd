package engine

import "pathweaver/internal/model"

// assemble rebuilds the year/semester hierarchy from the template,
// replacing each requirement slot with its resolution. It re-walks the
// exact traversal order Flatten uses and consumes resolved courses
// strictly in sequence, which is what guarantees no slot receives another
// slot's resolution. Year numbers, semester names and credits are copied
// verbatim.
//
// Callers must pass exactly one resolved course per flattened requirement.
func assemble(tpl model.PathwayTemplate, resolved []model.ResolvedCourse, candidates []string, summary string) model.CompletedPathway {
	completed := model.CompletedPathway{
		PathwayID:    tpl.PathwayID,
		ProgramName:  tpl.ProgramName,
		Institution:  tpl.Institution,
		TotalCredits: tpl.TotalCredits,
		Years:        make([]model.CompletedYear, len(tpl.Years)),
		Candidates:   candidates,
		Summary:      summary,
	}

	next := 0
	for yi, year := range tpl.Years {
		completedYear := model.CompletedYear{
			YearNumber: year.YearNumber,
			Semesters:  make([]model.CompletedSemester, len(year.Semesters)),
		}
		for si, sem := range year.Semesters {
			completedSem := model.CompletedSemester{
				SemesterName: sem.SemesterName,
				Credits:      sem.Credits,
				Courses:      make([]model.ResolvedCourse, len(sem.Courses)),
			}
			for ci := range sem.Courses {
				completedSem.Courses[ci] = resolved[next]
				next++
			}
			completedYear.Semesters[si] = completedSem
		}
		completed.Years[yi] = completedYear
	}
	return completed
}

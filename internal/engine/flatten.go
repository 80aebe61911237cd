package engine

import "pathweaver/internal/model"

// FlatRequirement is one requirement slot with its position in the
// template. The flatten order is the contract the whole pipeline aligns
// on: translated queries, dispatched searches and resolved courses all
// index into this sequence.
type FlatRequirement struct {
	YearIndex     int
	SemesterIndex int
	SlotIndex     int
	Slot          model.RequirementSlot
}

// Flatten walks a template in document order and returns every requirement
// slot exactly once. Pure and total: years, semesters and slots keep their
// stored order, never re-sorted.
func Flatten(tpl model.PathwayTemplate) []FlatRequirement {
	var reqs []FlatRequirement
	for yi, year := range tpl.Years {
		for si, sem := range year.Semesters {
			for ci, slot := range sem.Courses {
				reqs = append(reqs, FlatRequirement{
					YearIndex:     yi,
					SemesterIndex: si,
					SlotIndex:     ci,
					Slot:          slot,
				})
			}
		}
	}
	return reqs
}

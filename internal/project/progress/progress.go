// Package progress computes section and overall completion for a customer.
// Every function is pure; inputs are snapshots read from the entity store.
package progress

import "github.com/smallbiznis/solarflow/internal/project/domain"

// Section weights in percent. They sum to 100.
const (
	WeightDocuments     = 25
	WeightChecklist     = 20
	WeightWiring        = 20
	WeightInspection    = 20
	WeightCommissioning = 15
)

// Score maps a status to its contribution.
func Score(status domain.Status) int {
	switch status {
	case domain.StatusCompleted:
		return 100
	case domain.StatusInProgress:
		return 50
	default:
		return 0
	}
}

// floorMean is 0 for an empty list and exactly 100 only when every entry
// is completed.
func floorMean(statuses []domain.Status) int {
	if len(statuses) == 0 {
		return 0
	}
	total := 0
	allDone := true
	for _, s := range statuses {
		total += Score(s)
		if s != domain.StatusCompleted {
			allDone = false
		}
	}
	if allDone {
		return 100
	}
	return total / len(statuses)
}

func Documents(docs []*domain.Document) int {
	statuses := make([]domain.Status, 0, len(docs))
	for _, d := range docs {
		statuses = append(statuses, d.Status)
	}
	return floorMean(statuses)
}

func Checklist(items []*domain.ChecklistItem) int {
	statuses := make([]domain.Status, 0, len(items))
	for _, item := range items {
		statuses = append(statuses, item.Status)
	}
	return floorMean(statuses)
}

func Inspections(inspections []*domain.Inspection) int {
	statuses := make([]domain.Status, 0, len(inspections))
	for _, in := range inspections {
		statuses = append(statuses, in.Status)
	}
	return floorMean(statuses)
}

func Wiring(w *domain.Wiring) int {
	if w == nil {
		return 0
	}
	return Score(w.Status)
}

func Commissioning(c *domain.Commissioning) int {
	if c == nil {
		return 0
	}
	return Score(c.Status)
}

// Snapshot holds every section record of one customer.
type Snapshot struct {
	Documents     []*domain.Document
	Checklist     []*domain.ChecklistItem
	Wiring        *domain.Wiring
	Inspections   []*domain.Inspection
	Commissioning *domain.Commissioning
}

// Breakdown is the computed progress of a Snapshot.
type Breakdown struct {
	Sections domain.SectionProgress
	Overall  int
	Status   domain.Status
}

func Compute(s Snapshot) Breakdown {
	sections := domain.SectionProgress{
		Documents:     Documents(s.Documents),
		Checklist:     Checklist(s.Checklist),
		Wiring:        Wiring(s.Wiring),
		Inspection:    Inspections(s.Inspections),
		Commissioning: Commissioning(s.Commissioning),
	}
	overall := Overall(sections)
	return Breakdown{
		Sections: sections,
		Overall:  overall,
		Status:   CustomerStatus(overall),
	}
}

// Overall weighs the sections. Missing sections count as 0 and the weights
// are never renormalized.
func Overall(p domain.SectionProgress) int {
	if p.Documents == 100 && p.Checklist == 100 && p.Wiring == 100 &&
		p.Inspection == 100 && p.Commissioning == 100 {
		return 100
	}
	sum := p.Documents*WeightDocuments +
		p.Checklist*WeightChecklist +
		p.Wiring*WeightWiring +
		p.Inspection*WeightInspection +
		p.Commissioning*WeightCommissioning
	return sum / 100
}

func CustomerStatus(overall int) domain.Status {
	switch {
	case overall <= 0:
		return domain.StatusPending
	case overall >= 100:
		return domain.StatusCompleted
	default:
		return domain.StatusInProgress
	}
}

package progress

import (
	"testing"

	"github.com/smallbiznis/solarflow/internal/project/domain"
	"github.com/stretchr/testify/assert"
)

func docs(statuses ...domain.Status) []*domain.Document {
	out := make([]*domain.Document, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, &domain.Document{Status: s})
	}
	return out
}

func checklist(statuses ...domain.Status) []*domain.ChecklistItem {
	out := make([]*domain.ChecklistItem, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, &domain.ChecklistItem{Status: s})
	}
	return out
}

func inspections(statuses ...domain.Status) []*domain.Inspection {
	out := make([]*domain.Inspection, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, &domain.Inspection{Status: s})
	}
	return out
}

func TestWeightsSumTo100(t *testing.T) {
	assert.Equal(t, 100, WeightDocuments+WeightChecklist+WeightWiring+WeightInspection+WeightCommissioning)
}

func TestScore(t *testing.T) {
	assert.Equal(t, 100, Score(domain.StatusCompleted))
	assert.Equal(t, 50, Score(domain.StatusInProgress))
	assert.Equal(t, 0, Score(domain.StatusPending))
	assert.Equal(t, 0, Score("bogus"))
}

func TestArraySections(t *testing.T) {
	tests := []struct {
		name     string
		statuses []domain.Status
		want     int
	}{
		{name: "empty", want: 0},
		{name: "all pending", statuses: []domain.Status{domain.StatusPending, domain.StatusPending}, want: 0},
		{name: "all completed", statuses: []domain.Status{domain.StatusCompleted, domain.StatusCompleted}, want: 100},
		{name: "floor of mean", statuses: []domain.Status{domain.StatusCompleted, domain.StatusInProgress, domain.StatusPending}, want: 50},
		{name: "floors down", statuses: []domain.Status{domain.StatusCompleted, domain.StatusCompleted, domain.StatusInProgress}, want: 83},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Documents(docs(tt.statuses...)))
			assert.Equal(t, tt.want, Checklist(checklist(tt.statuses...)))
			assert.Equal(t, tt.want, Inspections(inspections(tt.statuses...)))
		})
	}
}

func TestSingleRecordSections(t *testing.T) {
	assert.Equal(t, 0, Wiring(nil))
	assert.Equal(t, 0, Commissioning(nil))
	assert.Equal(t, 50, Wiring(&domain.Wiring{Status: domain.StatusInProgress}))
	assert.Equal(t, 100, Commissioning(&domain.Commissioning{Status: domain.StatusCompleted}))
}

func TestOverallAllCompleteIsExactly100(t *testing.T) {
	b := Compute(Snapshot{
		Documents:     docs(domain.StatusCompleted, domain.StatusCompleted),
		Checklist:     checklist(domain.StatusCompleted),
		Wiring:        &domain.Wiring{Status: domain.StatusCompleted},
		Inspections:   inspections(domain.StatusCompleted),
		Commissioning: &domain.Commissioning{Status: domain.StatusCompleted},
	})
	assert.Equal(t, 100, b.Overall)
	assert.Equal(t, domain.StatusCompleted, b.Status)
}

func TestOverallFloors(t *testing.T) {
	b := Compute(Snapshot{
		Documents:     docs(domain.StatusInProgress),
		Checklist:     checklist(domain.StatusPending),
		Wiring:        &domain.Wiring{Status: domain.StatusPending},
		Inspections:   inspections(domain.StatusPending),
		Commissioning: &domain.Commissioning{Status: domain.StatusPending},
	})
	assert.Equal(t, 50, b.Sections.Documents)
	assert.Equal(t, 12, b.Overall)
	assert.Equal(t, domain.StatusInProgress, b.Status)
}

func TestOverallDocumentsAndChecklistComplete(t *testing.T) {
	b := Compute(Snapshot{
		Documents:     docs(domain.StatusCompleted, domain.StatusCompleted, domain.StatusCompleted),
		Checklist:     checklist(domain.StatusCompleted, domain.StatusCompleted),
		Wiring:        &domain.Wiring{Status: domain.StatusPending},
		Inspections:   inspections(domain.StatusPending, domain.StatusPending),
		Commissioning: &domain.Commissioning{Status: domain.StatusPending},
	})
	assert.Equal(t, 45, b.Overall)
}

func TestMissingSectionsAreNotRenormalized(t *testing.T) {
	b := Compute(Snapshot{
		Wiring:        &domain.Wiring{Status: domain.StatusCompleted},
		Commissioning: &domain.Commissioning{Status: domain.StatusCompleted},
	})
	assert.Equal(t, 0, b.Sections.Documents)
	assert.Equal(t, 35, b.Overall)
}

func TestCustomerStatus(t *testing.T) {
	assert.Equal(t, domain.StatusPending, CustomerStatus(0))
	assert.Equal(t, domain.StatusInProgress, CustomerStatus(1))
	assert.Equal(t, domain.StatusInProgress, CustomerStatus(99))
	assert.Equal(t, domain.StatusCompleted, CustomerStatus(100))
}

// Package gate decides which workflow sections are unlocked and resets
// downstream sections to pending when an upstream section regresses.
package gate

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/solarflow/internal/project/domain"
	"github.com/smallbiznis/solarflow/internal/project/progress"
	"gorm.io/gorm"
)

// Store is the slice of the entity store the cascade reads and writes.
type Store interface {
	ListChecklistItems(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]*domain.ChecklistItem, error)
	FindWiring(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (*domain.Wiring, error)
	SaveWiring(ctx context.Context, db *gorm.DB, wiring *domain.Wiring) error
	ListInspections(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]*domain.Inspection, error)
	SaveInspection(ctx context.Context, db *gorm.DB, inspection *domain.Inspection) error
	FindCommissioning(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (*domain.Commissioning, error)
	SaveCommissioning(ctx context.Context, db *gorm.DB, commissioning *domain.Commissioning) error
}

// Unlocked reports whether section may be edited given the current progress.
// Documents and checklist are never gated.
func Unlocked(section domain.Section, p domain.SectionProgress) bool {
	switch section {
	case domain.SectionWiring:
		return p.Checklist == 100
	case domain.SectionInspection:
		return p.Wiring == 100
	case domain.SectionCommissioning:
		return p.Inspection == 100
	default:
		return true
	}
}

func LockedMessage(section domain.Section) string {
	switch section {
	case domain.SectionWiring:
		return "Complete all checklist items to unlock wiring section"
	case domain.SectionInspection:
		return "Complete wiring section to unlock inspection"
	case domain.SectionCommissioning:
		return "Complete inspection section to unlock commissioning"
	default:
		return "This section is locked"
	}
}

// Result lists the records a cascade forced back to pending.
type Result struct {
	Wiring        bool
	Inspections   int
	Commissioning bool
}

func (r Result) Resets() int {
	n := r.Inspections
	if r.Wiring {
		n++
	}
	if r.Commissioning {
		n++
	}
	return n
}

// Cascade runs after changed was mutated. It only ever downgrades and writes
// straight to the store, so it never re-enters itself.
func Cascade(ctx context.Context, db *gorm.DB, store Store, customerID snowflake.ID, changed domain.Section) (Result, error) {
	var (
		res                Result
		resetWiring        bool
		resetInspections   bool
		resetCommissioning bool
	)

	switch changed {
	case domain.SectionChecklist:
		items, err := store.ListChecklistItems(ctx, db, customerID)
		if err != nil {
			return res, fmt.Errorf("list checklist: %w", err)
		}
		if progress.Checklist(items) < 100 {
			resetWiring, resetInspections, resetCommissioning = true, true, true
		}
	case domain.SectionWiring:
		wiring, err := store.FindWiring(ctx, db, customerID)
		if err != nil {
			return res, fmt.Errorf("find wiring: %w", err)
		}
		if progress.Wiring(wiring) < 100 {
			resetInspections, resetCommissioning = true, true
		}
	case domain.SectionInspection:
		inspections, err := store.ListInspections(ctx, db, customerID)
		if err != nil {
			return res, fmt.Errorf("list inspections: %w", err)
		}
		if progress.Inspections(inspections) < 100 {
			resetCommissioning = true
		}
	default:
		return res, nil
	}

	if resetWiring {
		wiring, err := store.FindWiring(ctx, db, customerID)
		if err != nil {
			return res, fmt.Errorf("find wiring: %w", err)
		}
		if wiring != nil && wiring.Status != domain.StatusPending {
			wiring.Status = domain.StatusPending
			if err := store.SaveWiring(ctx, db, wiring); err != nil {
				return res, fmt.Errorf("reset wiring: %w", err)
			}
			res.Wiring = true
		}
	}

	if resetInspections {
		inspections, err := store.ListInspections(ctx, db, customerID)
		if err != nil {
			return res, fmt.Errorf("list inspections: %w", err)
		}
		for _, in := range inspections {
			if in.Status == domain.StatusPending {
				continue
			}
			in.Status = domain.StatusPending
			if err := store.SaveInspection(ctx, db, in); err != nil {
				return res, fmt.Errorf("reset inspection: %w", err)
			}
			res.Inspections++
		}
	}

	if resetCommissioning {
		commissioning, err := store.FindCommissioning(ctx, db, customerID)
		if err != nil {
			return res, fmt.Errorf("find commissioning: %w", err)
		}
		if commissioning != nil && commissioning.Status != domain.StatusPending {
			commissioning.Status = domain.StatusPending
			if err := store.SaveCommissioning(ctx, db, commissioning); err != nil {
				return res, fmt.Errorf("reset commissioning: %w", err)
			}
			res.Commissioning = true
		}
	}

	return res, nil
}

package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/solarflow/internal/project/domain"
	"github.com/smallbiznis/solarflow/internal/project/gate"
)

var gatedSections = []domain.Section{
	domain.SectionWiring,
	domain.SectionInspection,
	domain.SectionCommissioning,
}

// GetProgress projects the customer's stored section statuses into
// progress figures and unlock flags.
func (s *Service) GetProgress(ctx context.Context, customerID snowflake.ID) (domain.ProgressView, error) {
	db := s.db.WithContext(ctx)
	customer, err := s.repo.FindCustomer(ctx, db, customerID)
	if err != nil {
		return domain.ProgressView{}, err
	}
	if customer == nil {
		return domain.ProgressView{}, domain.ErrNotFound
	}
	b, err := s.compute(ctx, db, customerID)
	if err != nil {
		return domain.ProgressView{}, err
	}

	view := domain.ProgressView{
		CustomerID:            customerID,
		Sections:              b.Sections,
		Overall:               b.Overall,
		Status:                b.Status,
		WiringUnlocked:        gate.Unlocked(domain.SectionWiring, b.Sections),
		InspectionUnlocked:    gate.Unlocked(domain.SectionInspection, b.Sections),
		CommissioningUnlocked: gate.Unlocked(domain.SectionCommissioning, b.Sections),
	}
	for _, section := range gatedSections {
		if gate.Unlocked(section, b.Sections) {
			continue
		}
		if view.LockedMessages == nil {
			view.LockedMessages = make(map[domain.Section]string)
		}
		view.LockedMessages[section] = gate.LockedMessage(section)
	}
	return view, nil
}

func (s *Service) GetCustomer(ctx context.Context, id snowflake.ID) (domain.Customer, error) {
	customer, err := s.repo.FindCustomer(ctx, s.db.WithContext(ctx), id)
	if err != nil {
		return domain.Customer{}, err
	}
	if customer == nil {
		return domain.Customer{}, domain.ErrNotFound
	}
	return *customer, nil
}

func (s *Service) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	customers, err := s.repo.ListCustomers(ctx, s.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return deref(customers), nil
}

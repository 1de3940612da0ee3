package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/smallbiznis/solarflow/internal/activity/domain"
	"github.com/smallbiznis/solarflow/internal/project/domain"
	"github.com/smallbiznis/solarflow/pkg/db"
	"go.uber.org/zap"
)

func (s *Service) AddCustomer(ctx context.Context, actor domain.Actor, req domain.CreateCustomerRequest) (domain.Customer, error) {
	var created domain.Customer
	err := s.run(ctx, "add_customer", actor, func(ctx context.Context, u *unit) error {
		customer, err := s.addCustomer(ctx, u, req)
		if err != nil {
			return err
		}
		created = *customer
		return nil
	})
	if err != nil {
		return domain.Customer{}, err
	}
	return created, nil
}

func validateCustomer(consumerNumber string, capacity, amount float64, approval domain.CustomerApproval) error {
	if consumerNumber == "" {
		return domain.ErrInvalidConsumerNumber
	}
	if capacity < 0 {
		return domain.ErrInvalidSystemCapacity
	}
	if amount < 0 {
		return domain.ErrInvalidOrderAmount
	}
	if !approval.Valid() {
		return domain.ErrInvalidStatus
	}
	return nil
}

// addCustomer validates and inserts a customer with its blank section rows.
// Nothing is written when validation fails.
func (s *Service) addCustomer(ctx context.Context, u *unit, req domain.CreateCustomerRequest) (*domain.Customer, error) {
	consumerNumber := strings.TrimSpace(req.ConsumerNumber)
	approval := req.ApprovalStatus
	if approval == "" {
		approval = domain.CustomerApprovalPending
	}
	if err := validateCustomer(consumerNumber, req.SystemCapacity, req.OrderAmount, approval); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindCustomerByConsumerNumber(ctx, u.tx, consumerNumber)
	if err != nil {
		return nil, fmt.Errorf("find customer: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrDuplicateConsumerNumber
	}

	orderDate := req.OrderDate
	if orderDate == "" {
		orderDate = s.today()
	}
	customer := &domain.Customer{
		ID:             s.genID.Generate(),
		Name:           strings.TrimSpace(req.Name),
		ConsumerNumber: consumerNumber,
		Mobile:         req.Mobile,
		Address:        req.Address,
		SystemCapacity: req.SystemCapacity,
		OrderAmount:    req.OrderAmount,
		OrderDate:      orderDate,
		ApprovalStatus: approval,
		Locked:         req.Locked,
	}
	if err := s.repo.InsertCustomer(ctx, u.tx, customer); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateConsumerNumber
		}
		return nil, fmt.Errorf("insert customer: %w", err)
	}
	if err := s.seedSections(ctx, u, customer.ID); err != nil {
		return nil, err
	}

	u.record(customer.ID, activitydomain.SectionCustomer, "Created customer "+customer.Name)
	return customer, nil
}

// seedSections creates the template rows every customer starts with.
func (s *Service) seedSections(ctx context.Context, u *unit, customerID snowflake.ID) error {
	templates := s.templates.Get()

	docs := make([]*domain.Document, 0, len(templates.Documents))
	for _, name := range templates.Documents {
		docs = append(docs, &domain.Document{
			ID:         s.genID.Generate(),
			CustomerID: customerID,
			Name:       name,
			Status:     domain.StatusPending,
			AutoStatus: domain.StatusPending,
		})
	}
	if err := s.repo.InsertDocuments(ctx, u.tx, docs); err != nil {
		return fmt.Errorf("seed documents: %w", err)
	}

	items := make([]*domain.ChecklistItem, 0, len(templates.Checklist))
	for _, task := range templates.Checklist {
		items = append(items, &domain.ChecklistItem{
			ID:         s.genID.Generate(),
			CustomerID: customerID,
			Task:       task,
			Status:     domain.StatusPending,
		})
	}
	if err := s.repo.InsertChecklistItems(ctx, u.tx, items); err != nil {
		return fmt.Errorf("seed checklist: %w", err)
	}

	if err := s.repo.InsertWiring(ctx, u.tx, &domain.Wiring{
		CustomerID: customerID,
		Status:     domain.StatusPending,
	}); err != nil {
		return fmt.Errorf("seed wiring: %w", err)
	}

	inspections := make([]*domain.Inspection, 0, len(templates.Inspections))
	for _, label := range templates.Inspections {
		inspections = append(inspections, &domain.Inspection{
			ID:             s.genID.Generate(),
			CustomerID:     customerID,
			Document:       label,
			ApprovalStatus: domain.ApprovalPending,
			Status:         domain.StatusPending,
		})
	}
	if err := s.repo.InsertInspections(ctx, u.tx, inspections); err != nil {
		return fmt.Errorf("seed inspections: %w", err)
	}

	if err := s.repo.InsertCommissioning(ctx, u.tx, &domain.Commissioning{
		CustomerID: customerID,
		Status:     domain.StatusPending,
	}); err != nil {
		return fmt.Errorf("seed commissioning: %w", err)
	}
	return nil
}

func (s *Service) UpdateCustomer(ctx context.Context, actor domain.Actor, customer domain.Customer) (domain.Customer, error) {
	var updated domain.Customer
	err := s.run(ctx, "update_customer", actor, func(ctx context.Context, u *unit) error {
		existing, err := s.repo.FindCustomer(ctx, u.tx, customer.ID)
		if err != nil {
			return fmt.Errorf("find customer: %w", err)
		}
		if existing == nil {
			u.log.Debug("customer not found, update skipped", zap.String("customer_id", customer.ID.String()))
			return nil
		}

		consumerNumber := strings.TrimSpace(customer.ConsumerNumber)
		approval := customer.ApprovalStatus
		if approval == "" {
			approval = existing.ApprovalStatus
		}
		if err := validateCustomer(consumerNumber, customer.SystemCapacity, customer.OrderAmount, approval); err != nil {
			return err
		}
		if consumerNumber != existing.ConsumerNumber {
			other, err := s.repo.FindCustomerByConsumerNumber(ctx, u.tx, consumerNumber)
			if err != nil {
				return fmt.Errorf("find customer: %w", err)
			}
			if other != nil {
				return domain.ErrDuplicateConsumerNumber
			}
		}

		changes := customerChanges(*existing, customer)

		next := *existing
		next.Name = strings.TrimSpace(customer.Name)
		next.ConsumerNumber = consumerNumber
		next.Mobile = customer.Mobile
		next.Address = customer.Address
		next.SystemCapacity = customer.SystemCapacity
		next.OrderAmount = customer.OrderAmount
		if customer.OrderDate != "" {
			next.OrderDate = customer.OrderDate
		}
		next.AssignedTo = customer.AssignedTo
		next.ApprovalStatus = approval
		next.Locked = customer.Locked

		if err := s.repo.SaveCustomer(ctx, u.tx, &next); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrDuplicateConsumerNumber
			}
			return fmt.Errorf("save customer: %w", err)
		}
		if len(changes) > 0 {
			u.record(next.ID, activitydomain.SectionCustomer, "Updated "+strings.Join(changes, ", "))
		}
		updated = next
		return nil
	})
	if err != nil {
		return domain.Customer{}, err
	}
	return updated, nil
}

// customerChanges names the tracked fields that differ, in display order.
func customerChanges(old, next domain.Customer) []string {
	var changes []string
	if old.Name != strings.TrimSpace(next.Name) {
		changes = append(changes, "name")
	}
	if old.Mobile != next.Mobile {
		changes = append(changes, "mobile")
	}
	if old.Address != next.Address {
		changes = append(changes, "address")
	}
	if old.SystemCapacity != next.SystemCapacity {
		changes = append(changes, "system capacity")
	}
	return changes
}

func (s *Service) DeleteCustomer(ctx context.Context, actor domain.Actor, id snowflake.ID) error {
	return s.run(ctx, "delete_customer", actor, func(ctx context.Context, u *unit) error {
		existing, err := s.repo.FindCustomer(ctx, u.tx, id)
		if err != nil {
			return fmt.Errorf("find customer: %w", err)
		}
		if existing == nil {
			u.log.Debug("customer not found, delete skipped", zap.String("customer_id", id.String()))
			return nil
		}
		if err := s.repo.DeleteCustomer(ctx, u.tx, id); err != nil {
			return fmt.Errorf("delete customer: %w", err)
		}
		u.record(id, activitydomain.SectionCustomer, "Deleted customer "+existing.Name)
		return nil
	})
}

// ImportCustomers adds every row with a new, non-empty consumer number and
// valid amounts, and returns how many were added. Other rows are skipped.
func (s *Service) ImportCustomers(ctx context.Context, actor domain.Actor, rows []domain.ImportRow) (int, error) {
	imported := 0
	err := s.run(ctx, "import_customers", actor, func(ctx context.Context, u *unit) error {
		imported = 0
		for i, row := range rows {
			consumerNumber := strings.TrimSpace(row.ConsumerNumber)
			if consumerNumber == "" {
				u.log.Debug("import row skipped, missing consumer number", zap.Int("row", i))
				continue
			}
			existing, err := s.repo.FindCustomerByConsumerNumber(ctx, u.tx, consumerNumber)
			if err != nil {
				return fmt.Errorf("find customer: %w", err)
			}
			if existing != nil {
				u.log.Debug("import row skipped, duplicate consumer number",
					zap.Int("row", i),
					zap.String("consumer_number", consumerNumber),
				)
				continue
			}
			_, err = s.addCustomer(ctx, u, domain.CreateCustomerRequest{
				Name:           row.Name,
				ConsumerNumber: consumerNumber,
				Mobile:         row.Mobile,
				Address:        row.Address,
				SystemCapacity: row.SystemCapacity,
				OrderAmount:    row.OrderAmount,
				OrderDate:      row.OrderDate,
				ApprovalStatus: domain.CustomerApprovalPending,
			})
			if isValidation(err) {
				u.log.Warn("import row skipped, invalid values",
					zap.Int("row", i),
					zap.String("consumer_number", consumerNumber),
					zap.Error(err),
				)
				continue
			}
			if err != nil {
				return fmt.Errorf("import row %d: %w", i, err)
			}
			imported++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return imported, nil
}

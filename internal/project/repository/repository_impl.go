package repository

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/solarflow/internal/project/domain"
	"github.com/smallbiznis/solarflow/pkg/db/option"
	"github.com/smallbiznis/solarflow/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertCustomer(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return repository.ProvideStore[domain.Customer](db).Create(ctx, customer)
}

func (r *repo) SaveCustomer(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return repository.ProvideStore[domain.Customer](db).Save(ctx, customer)
}

func (r *repo) FindCustomer(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Customer, error) {
	if id == 0 {
		return nil, nil
	}
	return repository.ProvideStore[domain.Customer](db).FindOne(ctx, &domain.Customer{ID: id})
}

func (r *repo) FindCustomerByConsumerNumber(ctx context.Context, db *gorm.DB, consumerNumber string) (*domain.Customer, error) {
	if consumerNumber == "" {
		return nil, nil
	}
	return repository.ProvideStore[domain.Customer](db).FindOne(ctx, &domain.Customer{ConsumerNumber: consumerNumber})
}

func (r *repo) ListCustomers(ctx context.Context, db *gorm.DB) ([]*domain.Customer, error) {
	return repository.ProvideStore[domain.Customer](db).Find(ctx, &domain.Customer{}, option.WithOrder("id asc"))
}

func (r *repo) DeleteCustomer(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	if id == 0 {
		return nil
	}
	// Section rows first; activity entries live in their own module and are
	// never touched here.
	if err := repository.ProvideStore[domain.Document](db).DeleteWhere(ctx, &domain.Document{CustomerID: id}); err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}
	if err := repository.ProvideStore[domain.ChecklistItem](db).DeleteWhere(ctx, &domain.ChecklistItem{CustomerID: id}); err != nil {
		return fmt.Errorf("delete checklist: %w", err)
	}
	if err := repository.ProvideStore[domain.Wiring](db).DeleteWhere(ctx, &domain.Wiring{CustomerID: id}); err != nil {
		return fmt.Errorf("delete wiring: %w", err)
	}
	if err := repository.ProvideStore[domain.Inspection](db).DeleteWhere(ctx, &domain.Inspection{CustomerID: id}); err != nil {
		return fmt.Errorf("delete inspections: %w", err)
	}
	if err := repository.ProvideStore[domain.Commissioning](db).DeleteWhere(ctx, &domain.Commissioning{CustomerID: id}); err != nil {
		return fmt.Errorf("delete commissioning: %w", err)
	}
	return repository.ProvideStore[domain.Customer](db).Delete(ctx, id)
}

func (r *repo) InsertDocuments(ctx context.Context, db *gorm.DB, docs []*domain.Document) error {
	return repository.ProvideStore[domain.Document](db).BatchCreate(ctx, docs)
}

func (r *repo) FindDocument(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Document, error) {
	if id == 0 {
		return nil, nil
	}
	return repository.ProvideStore[domain.Document](db).FindOne(ctx, &domain.Document{ID: id})
}

func (r *repo) ListDocuments(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]*domain.Document, error) {
	return repository.ProvideStore[domain.Document](db).Find(ctx, &domain.Document{},
		option.WithWhere("customer_id = ?", customerID),
		option.WithOrder("id asc"),
	)
}

func (r *repo) SaveDocument(ctx context.Context, db *gorm.DB, doc *domain.Document) error {
	return repository.ProvideStore[domain.Document](db).Save(ctx, doc)
}

func (r *repo) InsertChecklistItems(ctx context.Context, db *gorm.DB, items []*domain.ChecklistItem) error {
	return repository.ProvideStore[domain.ChecklistItem](db).BatchCreate(ctx, items)
}

func (r *repo) FindChecklistItem(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.ChecklistItem, error) {
	if id == 0 {
		return nil, nil
	}
	return repository.ProvideStore[domain.ChecklistItem](db).FindOne(ctx, &domain.ChecklistItem{ID: id})
}

func (r *repo) ListChecklistItems(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]*domain.ChecklistItem, error) {
	return repository.ProvideStore[domain.ChecklistItem](db).Find(ctx, &domain.ChecklistItem{},
		option.WithWhere("customer_id = ?", customerID),
		option.WithOrder("id asc"),
	)
}

func (r *repo) SaveChecklistItem(ctx context.Context, db *gorm.DB, item *domain.ChecklistItem) error {
	return repository.ProvideStore[domain.ChecklistItem](db).Save(ctx, item)
}

func (r *repo) InsertWiring(ctx context.Context, db *gorm.DB, wiring *domain.Wiring) error {
	return repository.ProvideStore[domain.Wiring](db).Create(ctx, wiring)
}

func (r *repo) FindWiring(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (*domain.Wiring, error) {
	if customerID == 0 {
		return nil, nil
	}
	return repository.ProvideStore[domain.Wiring](db).FindOne(ctx, &domain.Wiring{CustomerID: customerID})
}

func (r *repo) SaveWiring(ctx context.Context, db *gorm.DB, wiring *domain.Wiring) error {
	return repository.ProvideStore[domain.Wiring](db).Save(ctx, wiring)
}

func (r *repo) InsertInspections(ctx context.Context, db *gorm.DB, inspections []*domain.Inspection) error {
	return repository.ProvideStore[domain.Inspection](db).BatchCreate(ctx, inspections)
}

func (r *repo) FindInspection(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Inspection, error) {
	if id == 0 {
		return nil, nil
	}
	return repository.ProvideStore[domain.Inspection](db).FindOne(ctx, &domain.Inspection{ID: id})
}

func (r *repo) ListInspections(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]*domain.Inspection, error) {
	return repository.ProvideStore[domain.Inspection](db).Find(ctx, &domain.Inspection{},
		option.WithWhere("customer_id = ?", customerID),
		option.WithOrder("id asc"),
	)
}

func (r *repo) SaveInspection(ctx context.Context, db *gorm.DB, inspection *domain.Inspection) error {
	return repository.ProvideStore[domain.Inspection](db).Save(ctx, inspection)
}

func (r *repo) InsertCommissioning(ctx context.Context, db *gorm.DB, commissioning *domain.Commissioning) error {
	return repository.ProvideStore[domain.Commissioning](db).Create(ctx, commissioning)
}

func (r *repo) FindCommissioning(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (*domain.Commissioning, error) {
	if customerID == 0 {
		return nil, nil
	}
	return repository.ProvideStore[domain.Commissioning](db).FindOne(ctx, &domain.Commissioning{CustomerID: customerID})
}

func (r *repo) SaveCommissioning(ctx context.Context, db *gorm.DB, commissioning *domain.Commissioning) error {
	return repository.ProvideStore[domain.Commissioning](db).Save(ctx, commissioning)
}

func (r *repo) InsertEmployee(ctx context.Context, db *gorm.DB, employee *domain.Employee) error {
	return repository.ProvideStore[domain.Employee](db).Create(ctx, employee)
}

func (r *repo) FindEmployee(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Employee, error) {
	if id == 0 {
		return nil, nil
	}
	return repository.ProvideStore[domain.Employee](db).FindOne(ctx, &domain.Employee{ID: id})
}

func (r *repo) ListEmployees(ctx context.Context, db *gorm.DB) ([]*domain.Employee, error) {
	return repository.ProvideStore[domain.Employee](db).Find(ctx, &domain.Employee{}, option.WithOrder("id asc"))
}

func (r *repo) SaveEmployee(ctx context.Context, db *gorm.DB, employee *domain.Employee) error {
	return repository.ProvideStore[domain.Employee](db).Save(ctx, employee)
}

func (r *repo) DeleteEmployee(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	if id == 0 {
		return nil
	}
	return repository.ProvideStore[domain.Employee](db).Delete(ctx, id)
}

func (r *repo) InsertTask(ctx context.Context, db *gorm.DB, task *domain.Task) error {
	return repository.ProvideStore[domain.Task](db).Create(ctx, task)
}

func (r *repo) FindTask(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Task, error) {
	if id == 0 {
		return nil, nil
	}
	return repository.ProvideStore[domain.Task](db).FindOne(ctx, &domain.Task{ID: id})
}

func (r *repo) ListTasks(ctx context.Context, db *gorm.DB, filter domain.TaskFilter) ([]*domain.Task, error) {
	opts := []option.QueryOption{option.WithOrder("id asc")}
	if filter.CustomerID != 0 {
		opts = append(opts, option.WithWhere("customer_id = ?", filter.CustomerID))
	}
	if filter.AssignedTo != 0 {
		opts = append(opts, option.WithWhere("assigned_to = ?", filter.AssignedTo))
	}
	if filter.Role != "" {
		opts = append(opts, option.WithWhere("role = ?", filter.Role))
	}
	if filter.Status != "" {
		opts = append(opts, option.WithWhere("status = ?", filter.Status))
	}
	return repository.ProvideStore[domain.Task](db).Find(ctx, &domain.Task{}, opts...)
}

func (r *repo) SaveTask(ctx context.Context, db *gorm.DB, task *domain.Task) error {
	return repository.ProvideStore[domain.Task](db).Save(ctx, task)
}

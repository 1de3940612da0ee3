package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type TaskFilter struct {
	CustomerID snowflake.ID
	AssignedTo snowflake.ID
	Role       TaskRole
	Status     TaskStatus
}

// Repository is the entity store. Finders return nil, nil when the record
// does not exist. Every method runs on the supplied handle so callers can
// compose them inside one transaction.
type Repository interface {
	InsertCustomer(ctx context.Context, db *gorm.DB, customer *Customer) error
	SaveCustomer(ctx context.Context, db *gorm.DB, customer *Customer) error
	FindCustomer(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Customer, error)
	FindCustomerByConsumerNumber(ctx context.Context, db *gorm.DB, consumerNumber string) (*Customer, error)
	ListCustomers(ctx context.Context, db *gorm.DB) ([]*Customer, error)
	// DeleteCustomer removes the customer and every section record keyed by it.
	DeleteCustomer(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	InsertDocuments(ctx context.Context, db *gorm.DB, docs []*Document) error
	FindDocument(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Document, error)
	ListDocuments(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]*Document, error)
	SaveDocument(ctx context.Context, db *gorm.DB, doc *Document) error

	InsertChecklistItems(ctx context.Context, db *gorm.DB, items []*ChecklistItem) error
	FindChecklistItem(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ChecklistItem, error)
	ListChecklistItems(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]*ChecklistItem, error)
	SaveChecklistItem(ctx context.Context, db *gorm.DB, item *ChecklistItem) error

	InsertWiring(ctx context.Context, db *gorm.DB, wiring *Wiring) error
	FindWiring(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (*Wiring, error)
	SaveWiring(ctx context.Context, db *gorm.DB, wiring *Wiring) error

	InsertInspections(ctx context.Context, db *gorm.DB, inspections []*Inspection) error
	FindInspection(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Inspection, error)
	ListInspections(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]*Inspection, error)
	SaveInspection(ctx context.Context, db *gorm.DB, inspection *Inspection) error

	InsertCommissioning(ctx context.Context, db *gorm.DB, commissioning *Commissioning) error
	FindCommissioning(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (*Commissioning, error)
	SaveCommissioning(ctx context.Context, db *gorm.DB, commissioning *Commissioning) error

	InsertEmployee(ctx context.Context, db *gorm.DB, employee *Employee) error
	FindEmployee(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Employee, error)
	ListEmployees(ctx context.Context, db *gorm.DB) ([]*Employee, error)
	SaveEmployee(ctx context.Context, db *gorm.DB, employee *Employee) error
	DeleteEmployee(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	InsertTask(ctx context.Context, db *gorm.DB, task *Task) error
	FindTask(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Task, error)
	ListTasks(ctx context.Context, db *gorm.DB, filter TaskFilter) ([]*Task, error)
	SaveTask(ctx context.Context, db *gorm.DB, task *Task) error
}

package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Actor identifies who performed an operation.
type Actor struct {
	UserName string `json:"user"`
	UserID   string `json:"user_id"`
}

// SystemActor attributes automatic follow-up changes.
var SystemActor = Actor{UserName: "System", UserID: "system"}

type CreateCustomerRequest struct {
	Name           string
	ConsumerNumber string
	Mobile         string
	Address        string
	SystemCapacity float64
	OrderAmount    float64
	OrderDate      string
	ApprovalStatus CustomerApproval
	Locked         bool
}

// ImportRow is one spreadsheet row. Missing fields are default-filled.
type ImportRow struct {
	Name           string
	ConsumerNumber string
	Mobile         string
	Address        string
	SystemCapacity float64
	OrderAmount    float64
	OrderDate      string
}

// TaskUpdate carries a partial task update; nil fields are left untouched.
type TaskUpdate struct {
	AssignedTo  *snowflake.ID
	Title       *string
	Description *string
	StartDate   *string
	EndDate     *string
	Priority    *TaskPriority
	Status      *TaskStatus
}

type QCSource string

const (
	QCSourceDocuments QCSource = "documents"
	QCSourceWiring    QCSource = "wiring"
)

type SectionProgress struct {
	Documents     int `json:"documents"`
	Checklist     int `json:"checklist"`
	Wiring        int `json:"wiring"`
	Inspection    int `json:"inspection"`
	Commissioning int `json:"commissioning"`
}

type ProgressView struct {
	CustomerID            snowflake.ID       `json:"customer_id"`
	Sections              SectionProgress    `json:"sections"`
	Overall               int                `json:"overall"`
	Status                Status             `json:"status"`
	WiringUnlocked        bool               `json:"wiring_unlocked"`
	InspectionUnlocked    bool               `json:"inspection_unlocked"`
	CommissioningUnlocked bool               `json:"commissioning_unlocked"`
	LockedMessages        map[Section]string `json:"locked_messages,omitempty"`
}

type DeadlineReport struct {
	Overdue      []Task `json:"overdue"`
	NearDeadline []Task `json:"near_deadline"`
}

// Subscription delivers payload-less change signals until closed.
type Subscription interface {
	C() <-chan struct{}
	Close()
}

// Service is the workflow orchestrator. Every mutator persists, recomputes
// progress, cascades section resets and appends activity as one unit.
type Service interface {
	AddCustomer(ctx context.Context, actor Actor, req CreateCustomerRequest) (Customer, error)
	UpdateCustomer(ctx context.Context, actor Actor, customer Customer) (Customer, error)
	DeleteCustomer(ctx context.Context, actor Actor, id snowflake.ID) error
	GetCustomer(ctx context.Context, id snowflake.ID) (Customer, error)
	ListCustomers(ctx context.Context) ([]Customer, error)
	ImportCustomers(ctx context.Context, actor Actor, rows []ImportRow) (int, error)

	UpdateDocument(ctx context.Context, actor Actor, doc Document) (Document, error)
	UploadDocument(ctx context.Context, actor Actor, documentID snowflake.ID, fileID string) (Document, error)
	VerifyDocument(ctx context.Context, actor Actor, documentID snowflake.ID, verified bool) (Document, error)
	ClearDocumentFile(ctx context.Context, actor Actor, documentID snowflake.ID) (Document, error)
	ListDocuments(ctx context.Context, customerID snowflake.ID) ([]Document, error)

	UpdateChecklistItem(ctx context.Context, actor Actor, item ChecklistItem) (ChecklistItem, error)
	ListChecklist(ctx context.Context, customerID snowflake.ID) ([]ChecklistItem, error)

	UpdateWiring(ctx context.Context, actor Actor, customerID snowflake.ID, wiring Wiring) (Wiring, error)
	GetWiring(ctx context.Context, customerID snowflake.ID) (Wiring, error)

	UpdateInspection(ctx context.Context, actor Actor, inspection Inspection) (Inspection, error)
	UpdateInspectionWithRework(ctx context.Context, actor Actor, inspection Inspection, approved bool) (Inspection, error)
	AutoUpdateInspectionQC(ctx context.Context, actor Actor, customerID snowflake.ID, source QCSource) error
	ListInspections(ctx context.Context, customerID snowflake.ID) ([]Inspection, error)

	UpdateCommissioning(ctx context.Context, actor Actor, customerID snowflake.ID, commissioning Commissioning) (Commissioning, error)
	GetCommissioning(ctx context.Context, customerID snowflake.ID) (Commissioning, error)

	AddEmployee(ctx context.Context, actor Actor, employee Employee) (Employee, error)
	UpdateEmployee(ctx context.Context, actor Actor, employee Employee) (Employee, error)
	DeleteEmployee(ctx context.Context, actor Actor, id snowflake.ID) error
	AssignEmployee(ctx context.Context, actor Actor, customerID, employeeID snowflake.ID) error
	ListEmployees(ctx context.Context) ([]Employee, error)

	AddTask(ctx context.Context, actor Actor, task Task) (Task, error)
	UpdateTask(ctx context.Context, actor Actor, taskID snowflake.ID, update TaskUpdate) (Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error)
	CheckTaskDeadlines(ctx context.Context) (DeadlineReport, error)

	GetProgress(ctx context.Context, customerID snowflake.ID) (ProgressView, error)
	Subscribe() Subscription
}

var (
	ErrDuplicateConsumerNumber = errors.New("duplicate_consumer_number")
	ErrInvalidConsumerNumber   = errors.New("invalid_consumer_number")
	ErrInvalidSystemCapacity   = errors.New("invalid_system_capacity")
	ErrInvalidOrderAmount      = errors.New("invalid_order_amount")
	ErrInvalidDocumentNumber   = errors.New("invalid_document_number")
	ErrInvalidStatus           = errors.New("invalid_status")
	ErrInvalidID               = errors.New("invalid_id")
	ErrNotFound                = errors.New("not_found")
)

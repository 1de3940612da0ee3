package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// DateLayout is the calendar-date format used by every date field.
const DateLayout = "2006-01-02"

type Customer struct {
	ID             snowflake.ID     `gorm:"primaryKey" json:"id"`
	Name           string           `gorm:"not null" json:"name"`
	ConsumerNumber string           `gorm:"not null;uniqueIndex" json:"consumer_number"`
	Mobile         string           `json:"mobile"`
	Address        string           `json:"address"`
	SystemCapacity float64          `json:"system_capacity"`
	OrderAmount    float64          `json:"order_amount"`
	OrderDate      string           `json:"order_date"`
	AssignedTo     snowflake.ID     `gorm:"index" json:"assigned_to,omitempty"`
	ApprovalStatus CustomerApproval `gorm:"not null;default:pending" json:"approval_status"`
	Locked         bool             `json:"locked"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

type Document struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID     snowflake.ID `gorm:"not null;index" json:"customer_id"`
	Name           string       `gorm:"not null" json:"name"`
	DocumentNumber string       `json:"document_number,omitempty"`
	Uploaded       bool         `json:"uploaded"`
	UploadDate     string       `json:"upload_date,omitempty"`
	Notes          string       `json:"notes,omitempty"`
	DoneBy         string       `json:"done_by,omitempty"`
	SubmittedTo    string       `json:"submitted_to,omitempty"`
	Verified       bool         `json:"verified"`
	VerifiedBy     string       `json:"verified_by,omitempty"`
	Status         Status       `gorm:"not null;default:pending" json:"status"`
	// AutoStatus is the derived status; Status differs only when
	// StatusOverride is set.
	AutoStatus     Status `gorm:"not null;default:pending" json:"auto_status"`
	StatusOverride bool   `json:"status_override"`
	Remark         string `json:"remark,omitempty"`
	StartDate      string `json:"start_date,omitempty"`
	EndDate        string `json:"end_date,omitempty"`
	FileID         string `json:"file_id,omitempty"`
}

// HasFile reports whether the document has an uploaded file reference.
func (d Document) HasFile() bool {
	return d.Uploaded || d.FileID != ""
}

type ChecklistItem struct {
	ID                   snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID           snowflake.ID `gorm:"not null;index" json:"customer_id"`
	Task                 string       `gorm:"not null" json:"task"`
	Status               Status       `gorm:"not null;default:pending" json:"status"`
	Remark               string       `json:"remark,omitempty"`
	DoneBy               string       `json:"done_by,omitempty"`
	Date                 string       `json:"date,omitempty"`
	StartDate            string       `json:"start_date,omitempty"`
	EndDate              string       `json:"end_date,omitempty"`
	AssignedEmployeeID   snowflake.ID `json:"assigned_employee_id,omitempty"`
	AssignedEmployeeName string       `json:"assigned_employee_name,omitempty"`
}

func (ChecklistItem) TableName() string { return "checklist_items" }

type Wiring struct {
	CustomerID        snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"customer_id"`
	TechnicianID      snowflake.ID `json:"technician_id,omitempty"`
	TechnicianName    string       `json:"technician_name,omitempty"`
	StartDate         string       `json:"start_date,omitempty"`
	EndDate           string       `json:"end_date,omitempty"`
	PVModuleNo        string       `gorm:"column:pv_module_no" json:"pv_module_no,omitempty"`
	AggregateCapacity float64      `json:"aggregate_capacity,omitempty"`
	InverterType      string       `json:"inverter_type,omitempty"`
	ACVoltage         string       `gorm:"column:ac_voltage" json:"ac_voltage,omitempty"`
	MountingStructure string       `json:"mounting_structure,omitempty"`
	DCDB              string       `gorm:"column:dcdb" json:"dcdb,omitempty"`
	ACDB              string       `gorm:"column:acdb" json:"acdb,omitempty"`
	Cables            string       `json:"cables,omitempty"`
	Status            Status       `gorm:"not null;default:pending" json:"status"`
	Remark            string       `json:"remark,omitempty"`
}

func (Wiring) TableName() string { return "wiring_details" }

type Inspection struct {
	ID             snowflake.ID   `gorm:"primaryKey" json:"id"`
	CustomerID     snowflake.ID   `gorm:"not null;index" json:"customer_id"`
	Document       string         `gorm:"not null" json:"document"`
	Submitted      bool           `json:"submitted"`
	Date           string         `json:"date,omitempty"`
	InwardNo       string         `json:"inward_no,omitempty"`
	QCName         string         `gorm:"column:qc_name" json:"qc_name,omitempty"`
	InspectionDate string         `json:"inspection_date,omitempty"`
	Approved       bool           `json:"approved"`
	ApprovalStatus ApprovalStatus `gorm:"not null;default:pending" json:"approval_status"`
	ApprovedBy     string         `json:"approved_by,omitempty"`
	ApprovalDate   string         `json:"approval_date,omitempty"`
	Status         Status         `gorm:"not null;default:pending" json:"status"`
	Remark         string         `json:"remark,omitempty"`
	StartDate      string         `json:"start_date,omitempty"`
	EndDate        string         `json:"end_date,omitempty"`
}

type Commissioning struct {
	CustomerID                snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"customer_id"`
	CommissioningReportFileID string       `json:"commissioning_report_file_id,omitempty"`
	SubsidyReceivedDate       string       `json:"subsidy_received_date,omitempty"`
	Status                    Status       `gorm:"not null;default:pending" json:"status"`
	Remark                    string       `json:"remark,omitempty"`
	StartDate                 string       `json:"start_date,omitempty"`
	EndDate                   string       `json:"end_date,omitempty"`
}

func (Commissioning) TableName() string { return "commissioning_records" }

type Employee struct {
	ID                snowflake.ID                    `gorm:"primaryKey" json:"id"`
	Name              string                          `gorm:"not null" json:"name"`
	Email             string                          `json:"email"`
	Phone             string                          `json:"phone"`
	Status            EmployeeStatus                  `gorm:"not null;default:pending" json:"status"`
	AssignedCustomers datatypes.JSONSlice[snowflake.ID] `json:"assigned_customers"`
	CreatedBy         string                          `json:"created_by"`
	CreatedDate       string                          `json:"created_date"`
	SuspendedAt       string                          `json:"suspended_at,omitempty"`
	SuspendedBy       string                          `json:"suspended_by,omitempty"`
	SuspensionReason  string                          `json:"suspension_reason,omitempty"`
}

// HasCustomer reports whether id is already in the employee's assignment set.
func (e Employee) HasCustomer(id snowflake.ID) bool {
	for _, existing := range e.AssignedCustomers {
		if existing == id {
			return true
		}
	}
	return false
}

type Task struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID  snowflake.ID `gorm:"not null;index" json:"customer_id"`
	AssignedTo  snowflake.ID `gorm:"index" json:"assigned_to"`
	Title       string       `gorm:"not null" json:"title"`
	Description string       `json:"description"`
	StartDate   string       `json:"start_date"`
	EndDate     string       `json:"end_date"`
	Priority    TaskPriority `gorm:"not null;default:medium" json:"priority"`
	Status      TaskStatus   `gorm:"not null;default:pending" json:"status"`
	Role        TaskRole     `json:"role,omitempty"`
	CreatedBy   string       `json:"created_by"`
	CreatedDate string       `json:"created_date"`
}

// Models lists the tables owned by the project module in migration order.
func Models() []any {
	return []any{
		&Customer{},
		&Document{},
		&ChecklistItem{},
		&Wiring{},
		&Inspection{},
		&Commissioning{},
		&Employee{},
		&Task{},
	}
}

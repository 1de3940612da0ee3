package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Cap is the number of entries retained globally; older ones are evicted.
const Cap = 500

const (
	SectionCustomer      = "Customer"
	SectionDocuments     = "Documents"
	SectionChecklist     = "Checklist"
	SectionWiring        = "Wiring"
	SectionInspection    = "Inspection"
	SectionCommissioning = "Commissioning"
	SectionEmployee      = "Employee"
	SectionAssignment    = "Assignment"
	SectionTasks         = "Tasks"
	SectionProject       = "Project"
	SectionProgress      = "Progress"
)

// Activity is one audit trail row. IDs are snowflakes, so ordering by id is
// insertion order.
type Activity struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	User          string       `gorm:"not null" json:"user"`
	UserID        string       `gorm:"index" json:"user_id"`
	CustomerID    snowflake.ID `gorm:"index" json:"customer_id,omitempty"`
	Section       string       `gorm:"index;not null" json:"section"`
	Action        string       `gorm:"not null" json:"action"`
	CorrelationID string       `json:"correlation_id,omitempty"`
	Date          time.Time    `gorm:"not null" json:"date"`
}

func (Activity) TableName() string { return "activity_logs" }

// Entry is what callers hand to Record; identity and timestamp are assigned
// on append.
type Entry struct {
	User       string
	UserID     string
	CustomerID snowflake.ID
	Section    string
	Action     string
}

type ListFilter struct {
	CustomerID snowflake.ID
	UserID     string
	Section    string
	BeforeID   snowflake.ID
	Limit      int
}

func Models() []any {
	return []any{&Activity{}}
}

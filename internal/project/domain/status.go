package domain

// Status is the three-state progress marker shared by every workflow section.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// CustomerApproval tracks the back-office approval of an order.
type CustomerApproval string

const (
	CustomerApprovalPending   CustomerApproval = "pending"
	CustomerApprovalVerified  CustomerApproval = "verified"
	CustomerApprovalCompleted CustomerApproval = "completed"
)

func (s CustomerApproval) Valid() bool {
	switch s {
	case CustomerApprovalPending, CustomerApprovalVerified, CustomerApprovalCompleted:
		return true
	}
	return false
}

// ApprovalStatus is the QC verdict on an inspection.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

type EmployeeStatus string

const (
	EmployeePending   EmployeeStatus = "pending"
	EmployeeApproved  EmployeeStatus = "approved"
	EmployeeActive    EmployeeStatus = "active"
	EmployeeSuspended EmployeeStatus = "suspended"
)

func (s EmployeeStatus) Valid() bool {
	switch s {
	case EmployeePending, EmployeeApproved, EmployeeActive, EmployeeSuspended:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskPending         TaskStatus = "pending"
	TaskInProgress      TaskStatus = "in_progress"
	TaskCompleted       TaskStatus = "completed"
	TaskPendingReassign TaskStatus = "pending_reassign"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted, TaskPendingReassign:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type TaskRole string

const (
	RoleTechnician TaskRole = "technician"
	RoleInspector  TaskRole = "inspector"
	RoleAdmin      TaskRole = "admin"
	RoleOther      TaskRole = "other"
)

func (r TaskRole) Valid() bool {
	switch r {
	case RoleTechnician, RoleInspector, RoleAdmin, RoleOther, "":
		return true
	}
	return false
}

// Section names a gated workflow stage.
type Section string

const (
	SectionDocuments     Section = "documents"
	SectionChecklist     Section = "checklist"
	SectionWiring        Section = "wiring"
	SectionInspection    Section = "inspection"
	SectionCommissioning Section = "commissioning"
)

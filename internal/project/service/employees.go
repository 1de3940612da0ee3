package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/smallbiznis/solarflow/internal/activity/domain"
	"github.com/smallbiznis/solarflow/internal/project/domain"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

func (s *Service) AddEmployee(ctx context.Context, actor domain.Actor, employee domain.Employee) (domain.Employee, error) {
	var out domain.Employee
	err := s.run(ctx, "add_employee", actor, func(ctx context.Context, u *unit) error {
		if employee.Status == "" {
			employee.Status = domain.EmployeePending
		}
		if !employee.Status.Valid() {
			return domain.ErrInvalidStatus
		}

		next := employee
		next.ID = s.genID.Generate()
		next.Name = strings.TrimSpace(employee.Name)
		next.AssignedCustomers = uniqueIDs(employee.AssignedCustomers)
		if next.CreatedBy == "" {
			next.CreatedBy = actor.UserName
		}
		if next.CreatedDate == "" {
			next.CreatedDate = s.today()
		}
		if err := s.repo.InsertEmployee(ctx, u.tx, &next); err != nil {
			return fmt.Errorf("insert employee: %w", err)
		}
		u.record(0, activitydomain.SectionEmployee, "Added employee "+next.Name)
		out = next
		return nil
	})
	if err != nil {
		return domain.Employee{}, err
	}
	return out, nil
}

func uniqueIDs(ids []snowflake.ID) datatypes.JSONSlice[snowflake.ID] {
	out := datatypes.JSONSlice[snowflake.ID]{}
	seen := make(map[snowflake.ID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// UpdateEmployee saves profile and status changes. Suspending parks the
// employee's open tasks in pending_reassign; reactivating releases them.
// The assignment set is owned by AssignEmployee and left untouched.
func (s *Service) UpdateEmployee(ctx context.Context, actor domain.Actor, employee domain.Employee) (domain.Employee, error) {
	var out domain.Employee
	err := s.run(ctx, "update_employee", actor, func(ctx context.Context, u *unit) error {
		if !employee.Status.Valid() {
			return domain.ErrInvalidStatus
		}
		existing, err := s.repo.FindEmployee(ctx, u.tx, employee.ID)
		if err != nil {
			return fmt.Errorf("find employee: %w", err)
		}
		if existing == nil {
			u.log.Debug("employee not found, update skipped", zap.String("employee_id", employee.ID.String()))
			return nil
		}

		prev := existing.Status
		existing.Name = strings.TrimSpace(employee.Name)
		existing.Email = employee.Email
		existing.Phone = employee.Phone
		existing.Status = employee.Status

		switch employee.Status {
		case domain.EmployeeSuspended:
			if prev != domain.EmployeeSuspended {
				existing.SuspendedAt = s.today()
				existing.SuspendedBy = actor.UserName
			}
			existing.SuspensionReason = employee.SuspensionReason
		case domain.EmployeeActive:
			existing.SuspendedAt = ""
			existing.SuspendedBy = ""
			existing.SuspensionReason = ""
		}
		if err := s.repo.SaveEmployee(ctx, u.tx, existing); err != nil {
			return fmt.Errorf("save employee: %w", err)
		}

		var action string
		switch employee.Status {
		case domain.EmployeeSuspended:
			if err := s.parkTasks(ctx, u, existing.ID); err != nil {
				return err
			}
			action = "Suspended employee " + existing.Name
		case domain.EmployeeActive:
			if err := s.releaseTasks(ctx, u, existing.ID); err != nil {
				return err
			}
			action = "Unsuspended employee " + existing.Name
		default:
			action = "Updated employee " + existing.Name
		}
		u.record(0, activitydomain.SectionEmployee, action)
		out = *existing
		return nil
	})
	if err != nil {
		return domain.Employee{}, err
	}
	return out, nil
}

func (s *Service) parkTasks(ctx context.Context, u *unit, employeeID snowflake.ID) error {
	tasks, err := s.repo.ListTasks(ctx, u.tx, domain.TaskFilter{AssignedTo: employeeID})
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	for _, task := range tasks {
		if task.Status == domain.TaskCompleted || task.Status == domain.TaskPendingReassign {
			continue
		}
		task.Status = domain.TaskPendingReassign
		if err := s.repo.SaveTask(ctx, u.tx, task); err != nil {
			return fmt.Errorf("save task: %w", err)
		}
	}
	return nil
}

func (s *Service) releaseTasks(ctx context.Context, u *unit, employeeID snowflake.ID) error {
	tasks, err := s.repo.ListTasks(ctx, u.tx, domain.TaskFilter{
		AssignedTo: employeeID,
		Status:     domain.TaskPendingReassign,
	})
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	for _, task := range tasks {
		task.Status = domain.TaskPending
		if err := s.repo.SaveTask(ctx, u.tx, task); err != nil {
			return fmt.Errorf("save task: %w", err)
		}
	}
	return nil
}

// DeleteEmployee removes the employee. Tasks keep their assignee id.
func (s *Service) DeleteEmployee(ctx context.Context, actor domain.Actor, id snowflake.ID) error {
	return s.run(ctx, "delete_employee", actor, func(ctx context.Context, u *unit) error {
		existing, err := s.repo.FindEmployee(ctx, u.tx, id)
		if err != nil {
			return fmt.Errorf("find employee: %w", err)
		}
		if existing == nil {
			u.log.Debug("employee not found, delete skipped", zap.String("employee_id", id.String()))
			return nil
		}
		if err := s.repo.DeleteEmployee(ctx, u.tx, id); err != nil {
			return fmt.Errorf("delete employee: %w", err)
		}
		u.record(0, activitydomain.SectionEmployee, "Deleted employee "+existing.Name)
		return nil
	})
}

func (s *Service) AssignEmployee(ctx context.Context, actor domain.Actor, customerID, employeeID snowflake.ID) error {
	return s.run(ctx, "assign_employee", actor, func(ctx context.Context, u *unit) error {
		customer, err := s.repo.FindCustomer(ctx, u.tx, customerID)
		if err != nil {
			return fmt.Errorf("find customer: %w", err)
		}
		employee, err := s.repo.FindEmployee(ctx, u.tx, employeeID)
		if err != nil {
			return fmt.Errorf("find employee: %w", err)
		}
		if customer == nil || employee == nil {
			u.log.Debug("assignment skipped",
				zap.String("customer_id", customerID.String()),
				zap.String("employee_id", employeeID.String()),
				zap.Bool("customer_found", customer != nil),
				zap.Bool("employee_found", employee != nil),
			)
			return nil
		}

		customer.AssignedTo = employee.ID
		if err := s.repo.SaveCustomer(ctx, u.tx, customer); err != nil {
			return fmt.Errorf("save customer: %w", err)
		}
		if !employee.HasCustomer(customer.ID) {
			employee.AssignedCustomers = append(employee.AssignedCustomers, customer.ID)
			if err := s.repo.SaveEmployee(ctx, u.tx, employee); err != nil {
				return fmt.Errorf("save employee: %w", err)
			}
		}
		u.record(customer.ID, activitydomain.SectionAssignment,
			fmt.Sprintf("Assigned %s to %s", employee.Name, customer.Name))
		return nil
	})
}

func (s *Service) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	employees, err := s.repo.ListEmployees(ctx, s.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return deref(employees), nil
}

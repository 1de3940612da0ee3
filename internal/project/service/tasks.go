package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/smallbiznis/solarflow/internal/activity/domain"
	"github.com/smallbiznis/solarflow/internal/clock"
	"github.com/smallbiznis/solarflow/internal/project/domain"
	"go.uber.org/zap"
)

// nearDeadlineDays is the inclusive window for the near-deadline list.
const nearDeadlineDays = 3

func validateTask(task domain.Task) error {
	if task.CustomerID == 0 {
		return domain.ErrInvalidID
	}
	if !task.Status.Valid() || !task.Priority.Valid() || !task.Role.Valid() {
		return domain.ErrInvalidStatus
	}
	return nil
}

func (s *Service) AddTask(ctx context.Context, actor domain.Actor, task domain.Task) (domain.Task, error) {
	var out domain.Task
	err := s.run(ctx, "add_task", actor, func(ctx context.Context, u *unit) error {
		next := task
		if next.Status == "" {
			next.Status = domain.TaskPending
		}
		if next.Priority == "" {
			next.Priority = domain.PriorityMedium
		}
		if err := validateTask(next); err != nil {
			return err
		}
		if err := u.touch(ctx, next.CustomerID); err != nil {
			return err
		}

		next.ID = s.genID.Generate()
		next.Title = strings.TrimSpace(next.Title)
		if next.CreatedBy == "" {
			next.CreatedBy = actor.UserName
		}
		if next.CreatedDate == "" {
			next.CreatedDate = s.today()
		}
		if err := s.repo.InsertTask(ctx, u.tx, &next); err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		if next.Role == domain.RoleTechnician {
			if err := s.bindTechnician(ctx, u, &next); err != nil {
				return err
			}
		}

		u.record(next.CustomerID, activitydomain.SectionTasks, "Created task: "+next.Title)
		out = next
		return nil
	})
	if err != nil {
		return domain.Task{}, err
	}
	return out, nil
}

// bindTechnician copies a technician task onto the customer's wiring record
// and stamps the installation checklist item for display. The checklist
// status is not changed.
func (s *Service) bindTechnician(ctx context.Context, u *unit, task *domain.Task) error {
	wiring, err := s.repo.FindWiring(ctx, u.tx, task.CustomerID)
	if err != nil {
		return fmt.Errorf("find wiring: %w", err)
	}
	employee, err := s.repo.FindEmployee(ctx, u.tx, task.AssignedTo)
	if err != nil {
		return fmt.Errorf("find employee: %w", err)
	}
	if wiring == nil || employee == nil {
		u.log.Debug("technician binding skipped",
			zap.String("customer_id", task.CustomerID.String()),
			zap.Bool("wiring_found", wiring != nil),
			zap.Bool("employee_found", employee != nil),
		)
		return nil
	}

	regressed := wiring.Status == domain.StatusCompleted
	wiring.TechnicianID = employee.ID
	wiring.TechnicianName = employee.Name
	wiring.StartDate = task.StartDate
	wiring.EndDate = task.EndDate
	wiring.Status = domain.StatusInProgress
	if err := s.repo.SaveWiring(ctx, u.tx, wiring); err != nil {
		return fmt.Errorf("save wiring: %w", err)
	}

	items, err := s.repo.ListChecklistItems(ctx, u.tx, task.CustomerID)
	if err != nil {
		return fmt.Errorf("list checklist: %w", err)
	}
	if item := findWiringItem(items); item != nil {
		item.AssignedEmployeeID = employee.ID
		item.AssignedEmployeeName = employee.Name
		item.StartDate = task.StartDate
		item.EndDate = task.EndDate
		if err := s.repo.SaveChecklistItem(ctx, u.tx, item); err != nil {
			return fmt.Errorf("save checklist item: %w", err)
		}
	}

	if regressed {
		return u.cascade(ctx, task.CustomerID, domain.SectionWiring)
	}
	return nil
}

func (s *Service) UpdateTask(ctx context.Context, actor domain.Actor, taskID snowflake.ID, update domain.TaskUpdate) (domain.Task, error) {
	var out domain.Task
	err := s.run(ctx, "update_task", actor, func(ctx context.Context, u *unit) error {
		task, err := s.repo.FindTask(ctx, u.tx, taskID)
		if err != nil {
			return fmt.Errorf("find task: %w", err)
		}
		if task == nil {
			u.log.Debug("task not found, update skipped", zap.String("task_id", taskID.String()))
			return nil
		}

		title := task.Title
		next := *task
		if update.AssignedTo != nil {
			next.AssignedTo = *update.AssignedTo
		}
		if update.Title != nil {
			next.Title = strings.TrimSpace(*update.Title)
		}
		if update.Description != nil {
			next.Description = *update.Description
		}
		if update.StartDate != nil {
			next.StartDate = *update.StartDate
		}
		if update.EndDate != nil {
			next.EndDate = *update.EndDate
		}
		if update.Priority != nil {
			next.Priority = *update.Priority
		}
		if update.Status != nil {
			next.Status = *update.Status
		}
		if err := validateTask(next); err != nil {
			return err
		}
		if err := u.touch(ctx, next.CustomerID); err != nil {
			return err
		}
		if err := s.repo.SaveTask(ctx, u.tx, &next); err != nil {
			return fmt.Errorf("save task: %w", err)
		}

		touchesWiring := update.StartDate != nil || update.EndDate != nil || update.Status != nil
		if task.Role == domain.RoleTechnician && touchesWiring {
			if err := s.syncTechnicianTask(ctx, u, next.CustomerID, update); err != nil {
				return err
			}
		}

		u.record(next.CustomerID, activitydomain.SectionTasks, "Updated task: "+title)
		out = next
		return nil
	})
	if err != nil {
		return domain.Task{}, err
	}
	return out, nil
}

// syncTechnicianTask mirrors technician task dates and completion onto the
// wiring record and its installation checklist item.
func (s *Service) syncTechnicianTask(ctx context.Context, u *unit, customerID snowflake.ID, update domain.TaskUpdate) error {
	wiring, err := s.repo.FindWiring(ctx, u.tx, customerID)
	if err != nil {
		return fmt.Errorf("find wiring: %w", err)
	}
	if wiring == nil {
		u.log.Debug("wiring not found, task sync skipped", zap.String("customer_id", customerID.String()))
		return nil
	}

	completed := update.Status != nil && *update.Status == domain.TaskCompleted
	if update.StartDate != nil && *update.StartDate != "" {
		wiring.StartDate = *update.StartDate
	}
	if update.EndDate != nil && *update.EndDate != "" {
		wiring.EndDate = *update.EndDate
	}
	if completed {
		wiring.Status = domain.StatusCompleted
	}
	if err := s.repo.SaveWiring(ctx, u.tx, wiring); err != nil {
		return fmt.Errorf("save wiring: %w", err)
	}
	if !completed {
		return nil
	}

	items, err := s.repo.ListChecklistItems(ctx, u.tx, customerID)
	if err != nil {
		return fmt.Errorf("list checklist: %w", err)
	}
	item := findWiringItem(items)
	if item == nil {
		return nil
	}
	item.Status = domain.StatusCompleted
	item.DoneBy = actorOr(wiring.TechnicianName, u.actor.UserName)
	item.Date = s.today()
	if err := s.repo.SaveChecklistItem(ctx, u.tx, item); err != nil {
		return fmt.Errorf("save checklist item: %w", err)
	}
	return nil
}

func (s *Service) ListTasks(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	tasks, err := s.repo.ListTasks(ctx, s.db.WithContext(ctx), filter)
	if err != nil {
		return nil, err
	}
	return deref(tasks), nil
}

// CheckTaskDeadlines partitions open tasks by calendar days left until their
// end date. It never writes.
func (s *Service) CheckTaskDeadlines(ctx context.Context) (domain.DeadlineReport, error) {
	tasks, err := s.repo.ListTasks(ctx, s.db.WithContext(ctx), domain.TaskFilter{})
	if err != nil {
		return domain.DeadlineReport{}, err
	}

	today := clock.Today(s.clock)
	report := domain.DeadlineReport{
		Overdue:      []domain.Task{},
		NearDeadline: []domain.Task{},
	}
	for _, task := range tasks {
		if task.Status == domain.TaskCompleted || task.Status == domain.TaskPendingReassign {
			continue
		}
		days, ok := daysUntil(today, task.EndDate)
		if !ok {
			continue
		}
		switch {
		case days < 0:
			report.Overdue = append(report.Overdue, *task)
		case days <= nearDeadlineDays:
			report.NearDeadline = append(report.NearDeadline, *task)
		}
	}
	return report, nil
}

func daysUntil(today time.Time, endDate string) (int, bool) {
	end, err := time.Parse(domain.DateLayout, strings.TrimSpace(endDate))
	if err != nil {
		return 0, false
	}
	return int(end.Sub(today).Hours() / 24), true
}

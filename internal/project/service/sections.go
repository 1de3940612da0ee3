package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/smallbiznis/solarflow/internal/activity/domain"
	"github.com/smallbiznis/solarflow/internal/clock"
	"github.com/smallbiznis/solarflow/internal/project/domain"
	"go.uber.org/zap"
)

const reworkWindowDays = 7

func (s *Service) UpdateChecklistItem(ctx context.Context, actor domain.Actor, item domain.ChecklistItem) (domain.ChecklistItem, error) {
	var out domain.ChecklistItem
	err := s.run(ctx, "update_checklist_item", actor, func(ctx context.Context, u *unit) error {
		if !item.Status.Valid() {
			return domain.ErrInvalidStatus
		}
		existing, err := s.repo.FindChecklistItem(ctx, u.tx, item.ID)
		if err != nil {
			return fmt.Errorf("find checklist item: %w", err)
		}
		if existing == nil {
			u.log.Debug("checklist item not found, update skipped", zap.String("item_id", item.ID.String()))
			return nil
		}
		if err := u.touch(ctx, existing.CustomerID); err != nil {
			return err
		}

		prev := existing.Status
		existing.Status = item.Status
		existing.Remark = item.Remark
		existing.DoneBy = item.DoneBy
		existing.Date = item.Date
		existing.StartDate = item.StartDate
		existing.EndDate = item.EndDate
		existing.AssignedEmployeeID = item.AssignedEmployeeID
		existing.AssignedEmployeeName = item.AssignedEmployeeName
		if err := s.repo.SaveChecklistItem(ctx, u.tx, existing); err != nil {
			return fmt.Errorf("save checklist item: %w", err)
		}
		if err := u.cascade(ctx, existing.CustomerID, domain.SectionChecklist); err != nil {
			return err
		}

		if prev != existing.Status {
			verb := "Updated"
			if existing.Status == domain.StatusCompleted {
				verb = "Completed"
			}
			u.record(existing.CustomerID, activitydomain.SectionChecklist, verb+" "+existing.Task)
		}
		out = *existing
		return nil
	})
	if err != nil {
		return domain.ChecklistItem{}, err
	}
	return out, nil
}

func (s *Service) ListChecklist(ctx context.Context, customerID snowflake.ID) ([]domain.ChecklistItem, error) {
	items, err := s.repo.ListChecklistItems(ctx, s.db.WithContext(ctx), customerID)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (s *Service) UpdateWiring(ctx context.Context, actor domain.Actor, customerID snowflake.ID, wiring domain.Wiring) (domain.Wiring, error) {
	var out domain.Wiring
	err := s.run(ctx, "update_wiring", actor, func(ctx context.Context, u *unit) error {
		if !wiring.Status.Valid() {
			return domain.ErrInvalidStatus
		}
		existing, err := s.repo.FindWiring(ctx, u.tx, customerID)
		if err != nil {
			return fmt.Errorf("find wiring: %w", err)
		}
		if existing == nil {
			u.log.Debug("wiring not found, update skipped", zap.String("customer_id", customerID.String()))
			return nil
		}
		if err := u.touch(ctx, customerID); err != nil {
			return err
		}

		prev := existing.Status
		next := wiring
		next.CustomerID = customerID
		if err := s.repo.SaveWiring(ctx, u.tx, &next); err != nil {
			return fmt.Errorf("save wiring: %w", err)
		}

		if next.Status == domain.StatusCompleted && prev != domain.StatusCompleted {
			if err := s.completeWiringChecklist(ctx, u, &next); err != nil {
				return err
			}
		}
		if err := u.cascade(ctx, customerID, domain.SectionWiring); err != nil {
			return err
		}
		if next.Status == domain.StatusCompleted {
			if err := s.autoUpdateInspectionQC(ctx, u, customerID, domain.QCSourceWiring); err != nil {
				return err
			}
		}

		u.record(customerID, activitydomain.SectionWiring, "Updated wiring details - Status: "+string(next.Status))
		out = next
		return nil
	})
	if err != nil {
		return domain.Wiring{}, err
	}
	return out, nil
}

// completeWiringChecklist completes the installation checklist item when the
// wiring record becomes completed. The entry is attributed to the technician.
func (s *Service) completeWiringChecklist(ctx context.Context, u *unit, wiring *domain.Wiring) error {
	items, err := s.repo.ListChecklistItems(ctx, u.tx, wiring.CustomerID)
	if err != nil {
		return fmt.Errorf("list checklist: %w", err)
	}
	item := findWiringItem(items)
	if item == nil {
		u.log.Debug("no installation checklist item", zap.String("customer_id", wiring.CustomerID.String()))
		return nil
	}

	doneBy := actorOr(wiring.TechnicianName, u.actor.UserName)
	item.Status = domain.StatusCompleted
	item.DoneBy = doneBy
	item.Date = s.today()
	if err := s.repo.SaveChecklistItem(ctx, u.tx, item); err != nil {
		return fmt.Errorf("save checklist item: %w", err)
	}

	who := domain.Actor{UserName: doneBy, UserID: u.actor.UserID}
	if wiring.TechnicianID != 0 {
		who.UserID = wiring.TechnicianID.String()
	}
	u.recordAs(who, wiring.CustomerID, activitydomain.SectionWiring, "Wiring completed by "+doneBy)
	return nil
}

func (s *Service) GetWiring(ctx context.Context, customerID snowflake.ID) (domain.Wiring, error) {
	wiring, err := s.repo.FindWiring(ctx, s.db.WithContext(ctx), customerID)
	if err != nil {
		return domain.Wiring{}, err
	}
	if wiring == nil {
		return domain.Wiring{}, domain.ErrNotFound
	}
	return *wiring, nil
}

func validateInspection(in domain.Inspection) error {
	if !in.Status.Valid() {
		return domain.ErrInvalidStatus
	}
	if in.ApprovalStatus != "" && !in.ApprovalStatus.Valid() {
		return domain.ErrInvalidStatus
	}
	return nil
}

func mergeInspection(dst *domain.Inspection, src domain.Inspection) {
	dst.Submitted = src.Submitted
	dst.Date = src.Date
	dst.InwardNo = src.InwardNo
	dst.QCName = src.QCName
	dst.InspectionDate = src.InspectionDate
	dst.Approved = src.Approved
	if src.ApprovalStatus != "" {
		dst.ApprovalStatus = src.ApprovalStatus
	}
	dst.ApprovedBy = src.ApprovedBy
	dst.ApprovalDate = src.ApprovalDate
	dst.Status = src.Status
	dst.Remark = src.Remark
	dst.StartDate = src.StartDate
	dst.EndDate = src.EndDate
}

func (s *Service) UpdateInspection(ctx context.Context, actor domain.Actor, inspection domain.Inspection) (domain.Inspection, error) {
	var out domain.Inspection
	err := s.run(ctx, "update_inspection", actor, func(ctx context.Context, u *unit) error {
		if err := validateInspection(inspection); err != nil {
			return err
		}
		existing, err := s.repo.FindInspection(ctx, u.tx, inspection.ID)
		if err != nil {
			return fmt.Errorf("find inspection: %w", err)
		}
		if existing == nil {
			u.log.Debug("inspection not found, update skipped", zap.String("inspection_id", inspection.ID.String()))
			return nil
		}
		if err := u.touch(ctx, existing.CustomerID); err != nil {
			return err
		}

		mergeInspection(existing, inspection)
		if err := s.repo.SaveInspection(ctx, u.tx, existing); err != nil {
			return fmt.Errorf("save inspection: %w", err)
		}
		if err := u.cascade(ctx, existing.CustomerID, domain.SectionInspection); err != nil {
			return err
		}

		if existing.ApprovalStatus == domain.ApprovalApproved {
			u.record(existing.CustomerID, activitydomain.SectionInspection,
				fmt.Sprintf("QC Approved by %s - %s", existing.ApprovedBy, existing.Document))
		}
		verb := "Updated"
		if existing.Approved {
			verb = "Approved"
		}
		u.record(existing.CustomerID, activitydomain.SectionInspection, verb+" "+existing.Document)
		out = *existing
		return nil
	})
	if err != nil {
		return domain.Inspection{}, err
	}
	return out, nil
}

// UpdateInspectionWithRework records a QC verdict. A rejection reopens the
// wiring and schedules a rework task for the customer's technician.
func (s *Service) UpdateInspectionWithRework(ctx context.Context, actor domain.Actor, inspection domain.Inspection, approved bool) (domain.Inspection, error) {
	var out domain.Inspection
	err := s.run(ctx, "update_inspection_with_rework", actor, func(ctx context.Context, u *unit) error {
		existing, err := s.repo.FindInspection(ctx, u.tx, inspection.ID)
		if err != nil {
			return fmt.Errorf("find inspection: %w", err)
		}
		if existing == nil {
			u.log.Debug("inspection not found, verdict skipped", zap.String("inspection_id", inspection.ID.String()))
			return nil
		}
		customerID := existing.CustomerID
		if err := u.touch(ctx, customerID); err != nil {
			return err
		}

		if inspection.Remark != "" {
			existing.Remark = inspection.Remark
		}
		if inspection.QCName != "" {
			existing.QCName = inspection.QCName
		}
		existing.Approved = approved
		if approved {
			existing.Status = domain.StatusCompleted
			existing.ApprovalStatus = domain.ApprovalApproved
			existing.ApprovedBy = actorOr(inspection.ApprovedBy, actor.UserName)
			existing.ApprovalDate = actorOr(inspection.ApprovalDate, s.today())
		} else {
			existing.Status = domain.StatusPending
			existing.ApprovalStatus = domain.ApprovalRejected
		}
		if err := s.repo.SaveInspection(ctx, u.tx, existing); err != nil {
			return fmt.Errorf("save inspection: %w", err)
		}

		if approved {
			u.record(customerID, activitydomain.SectionInspection, "Inspection approved for "+existing.Document)
		} else {
			if err := s.scheduleRework(ctx, u, existing); err != nil {
				return err
			}
			u.record(customerID, activitydomain.SectionInspection,
				fmt.Sprintf("Inspection rejected for %s - Rework assigned", existing.Document))
		}

		if err := u.cascade(ctx, customerID, domain.SectionInspection); err != nil {
			return err
		}
		out = *existing
		return nil
	})
	if err != nil {
		return domain.Inspection{}, err
	}
	return out, nil
}

// scheduleRework reopens the wiring record and creates a high priority
// rework task for the employee behind the customer's first technician task.
func (s *Service) scheduleRework(ctx context.Context, u *unit, inspection *domain.Inspection) error {
	customerID := inspection.CustomerID

	wiring, err := s.repo.FindWiring(ctx, u.tx, customerID)
	if err != nil {
		return fmt.Errorf("find wiring: %w", err)
	}
	if wiring != nil {
		wiring.Status = domain.StatusInProgress
		if err := s.repo.SaveWiring(ctx, u.tx, wiring); err != nil {
			return fmt.Errorf("save wiring: %w", err)
		}
	}

	tasks, err := s.repo.ListTasks(ctx, u.tx, domain.TaskFilter{
		CustomerID: customerID,
		Role:       domain.RoleTechnician,
	})
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	if len(tasks) == 0 {
		u.log.Debug("no technician task, rework task skipped", zap.String("customer_id", customerID.String()))
		return nil
	}

	today := clock.Today(s.clock)
	rework := &domain.Task{
		ID:          s.genID.Generate(),
		CustomerID:  customerID,
		AssignedTo:  tasks[0].AssignedTo,
		Title:       "Rework Required - " + inspection.Document,
		Description: "Inspection rejected. Please address issues and resubmit.",
		StartDate:   today.Format(domain.DateLayout),
		EndDate:     today.AddDate(0, 0, reworkWindowDays).Format(domain.DateLayout),
		Priority:    domain.PriorityHigh,
		Status:      domain.TaskInProgress,
		Role:        domain.RoleTechnician,
		CreatedBy:   u.actor.UserName,
		CreatedDate: today.Format(domain.DateLayout),
	}
	if err := s.repo.InsertTask(ctx, u.tx, rework); err != nil {
		return fmt.Errorf("insert rework task: %w", err)
	}
	return nil
}

// AutoUpdateInspectionQC syncs inspections with upstream progress.
func (s *Service) AutoUpdateInspectionQC(ctx context.Context, actor domain.Actor, customerID snowflake.ID, source domain.QCSource) error {
	return s.run(ctx, "auto_update_inspection_qc", actor, func(ctx context.Context, u *unit) error {
		return s.autoUpdateInspectionQC(ctx, u, customerID, source)
	})
}

func (s *Service) autoUpdateInspectionQC(ctx context.Context, u *unit, customerID snowflake.ID, source domain.QCSource) error {
	if err := u.touch(ctx, customerID); err != nil {
		return err
	}
	inspections, err := s.repo.ListInspections(ctx, u.tx, customerID)
	if err != nil {
		return fmt.Errorf("list inspections: %w", err)
	}

	switch source {
	case domain.QCSourceDocuments:
		docs, err := s.repo.ListDocuments(ctx, u.tx, customerID)
		if err != nil {
			return fmt.Errorf("list documents: %w", err)
		}
		if len(docs) == 0 {
			return nil
		}
		for _, doc := range docs {
			if !doc.HasFile() {
				return nil
			}
		}
		changed := 0
		for _, in := range inspections {
			if in.Submitted {
				continue
			}
			in.Submitted = true
			in.Date = s.today()
			if err := s.repo.SaveInspection(ctx, u.tx, in); err != nil {
				return fmt.Errorf("save inspection: %w", err)
			}
			changed++
		}
		if changed > 0 {
			u.recordAs(domain.SystemActor, customerID, activitydomain.SectionInspection,
				"Auto-updated: All documents uploaded, marked as submitted")
		}

	case domain.QCSourceWiring:
		wiring, err := s.repo.FindWiring(ctx, u.tx, customerID)
		if err != nil {
			return fmt.Errorf("find wiring: %w", err)
		}
		if wiring == nil || wiring.Status != domain.StatusCompleted {
			return nil
		}
		in := findWiringInspection(inspections)
		if in == nil || in.Status == domain.StatusCompleted {
			return nil
		}
		in.Status = domain.StatusInProgress
		in.QCName = u.actor.UserName
		in.InspectionDate = s.today()
		if err := s.repo.SaveInspection(ctx, u.tx, in); err != nil {
			return fmt.Errorf("save inspection: %w", err)
		}
		u.recordAs(domain.SystemActor, customerID, activitydomain.SectionInspection,
			"Auto-updated: Wiring completed, inspection ready for QC")

	default:
		return domain.ErrInvalidStatus
	}
	return nil
}

func (s *Service) ListInspections(ctx context.Context, customerID snowflake.ID) ([]domain.Inspection, error) {
	inspections, err := s.repo.ListInspections(ctx, s.db.WithContext(ctx), customerID)
	if err != nil {
		return nil, err
	}
	return deref(inspections), nil
}

func (s *Service) UpdateCommissioning(ctx context.Context, actor domain.Actor, customerID snowflake.ID, commissioning domain.Commissioning) (domain.Commissioning, error) {
	var out domain.Commissioning
	err := s.run(ctx, "update_commissioning", actor, func(ctx context.Context, u *unit) error {
		if !commissioning.Status.Valid() {
			return domain.ErrInvalidStatus
		}
		existing, err := s.repo.FindCommissioning(ctx, u.tx, customerID)
		if err != nil {
			return fmt.Errorf("find commissioning: %w", err)
		}
		if existing == nil {
			u.log.Debug("commissioning not found, update skipped", zap.String("customer_id", customerID.String()))
			return nil
		}
		if err := u.touch(ctx, customerID); err != nil {
			return err
		}

		prev := existing.Status
		next := commissioning
		next.CustomerID = customerID
		if next.Status == domain.StatusCompleted && strings.TrimSpace(next.SubsidyReceivedDate) == "" {
			approved, err := s.hasApprovedInspection(ctx, u, customerID)
			if err != nil {
				return err
			}
			if approved {
				next.SubsidyReceivedDate = s.today()
			}
		}
		if err := s.repo.SaveCommissioning(ctx, u.tx, &next); err != nil {
			return fmt.Errorf("save commissioning: %w", err)
		}

		u.record(customerID, activitydomain.SectionCommissioning, "Updated commissioning details")
		if next.Status == domain.StatusCompleted && prev != domain.StatusCompleted {
			customer, err := s.repo.FindCustomer(ctx, u.tx, customerID)
			if err != nil {
				return fmt.Errorf("find customer: %w", err)
			}
			if customer != nil {
				u.recordAs(domain.SystemActor, customerID, activitydomain.SectionProject,
					fmt.Sprintf("Project %s commissioned successfully", customer.Name))
			}
		}
		out = next
		return nil
	})
	if err != nil {
		return domain.Commissioning{}, err
	}
	return out, nil
}

func (s *Service) hasApprovedInspection(ctx context.Context, u *unit, customerID snowflake.ID) (bool, error) {
	inspections, err := s.repo.ListInspections(ctx, u.tx, customerID)
	if err != nil {
		return false, fmt.Errorf("list inspections: %w", err)
	}
	for _, in := range inspections {
		if in.Approved || in.ApprovalStatus == domain.ApprovalApproved {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) GetCommissioning(ctx context.Context, customerID snowflake.ID) (domain.Commissioning, error) {
	c, err := s.repo.FindCommissioning(ctx, s.db.WithContext(ctx), customerID)
	if err != nil {
		return domain.Commissioning{}, err
	}
	if c == nil {
		return domain.Commissioning{}, domain.ErrNotFound
	}
	return *c, nil
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/smallbiznis/solarflow/internal/activity/domain"
	"github.com/smallbiznis/solarflow/internal/project/domain"
	"go.uber.org/zap"
)

// applyDocumentStatus refreshes the derived status and, unless an override
// is in force, mirrors it into Status.
func applyDocumentStatus(doc *domain.Document) {
	doc.AutoStatus = domain.DeriveDocumentStatus(*doc)
	if !doc.StatusOverride {
		doc.Status = doc.AutoStatus
	}
}

// mutateDocument loads the document, applies fn, persists it, queues the
// activity returned by fn and then syncs the QC inspections.
func (s *Service) mutateDocument(ctx context.Context, op string, actor domain.Actor, id snowflake.ID, fn func(u *unit, doc *domain.Document) (string, error)) (domain.Document, error) {
	var out domain.Document
	err := s.run(ctx, op, actor, func(ctx context.Context, u *unit) error {
		doc, err := s.repo.FindDocument(ctx, u.tx, id)
		if err != nil {
			return fmt.Errorf("find document: %w", err)
		}
		if doc == nil {
			u.log.Debug("document not found, update skipped", zap.String("document_id", id.String()))
			return nil
		}
		if err := u.touch(ctx, doc.CustomerID); err != nil {
			return err
		}

		action, err := fn(u, doc)
		if err != nil {
			return err
		}
		applyDocumentStatus(doc)
		if err := s.repo.SaveDocument(ctx, u.tx, doc); err != nil {
			return fmt.Errorf("save document: %w", err)
		}
		u.record(doc.CustomerID, activitydomain.SectionDocuments, action)
		if err := s.autoUpdateInspectionQC(ctx, u, doc.CustomerID, domain.QCSourceDocuments); err != nil {
			return err
		}
		out = *doc
		return nil
	})
	if err != nil {
		return domain.Document{}, err
	}
	return out, nil
}

func (s *Service) UpdateDocument(ctx context.Context, actor domain.Actor, doc domain.Document) (domain.Document, error) {
	return s.mutateDocument(ctx, "update_document", actor, doc.ID, func(u *unit, existing *domain.Document) (string, error) {
		if err := domain.ValidateDocumentNumber(existing.Name, doc.DocumentNumber); err != nil {
			return "", err
		}
		if doc.StatusOverride && !doc.Status.Valid() {
			return "", domain.ErrInvalidStatus
		}

		existing.DocumentNumber = strings.TrimSpace(doc.DocumentNumber)
		existing.Uploaded = doc.Uploaded
		existing.UploadDate = doc.UploadDate
		existing.Notes = doc.Notes
		existing.DoneBy = doc.DoneBy
		existing.SubmittedTo = doc.SubmittedTo
		existing.Verified = doc.Verified
		existing.VerifiedBy = doc.VerifiedBy
		existing.Remark = doc.Remark
		existing.StartDate = doc.StartDate
		existing.EndDate = doc.EndDate
		existing.FileID = doc.FileID
		existing.StatusOverride = doc.StatusOverride
		if doc.StatusOverride {
			existing.Status = doc.Status
		}
		return "Updated " + existing.Name, nil
	})
}

// UploadDocument attaches an externally stored file reference.
func (s *Service) UploadDocument(ctx context.Context, actor domain.Actor, documentID snowflake.ID, fileID string) (domain.Document, error) {
	return s.mutateDocument(ctx, "upload_document", actor, documentID, func(u *unit, doc *domain.Document) (string, error) {
		doc.Uploaded = true
		doc.FileID = fileID
		doc.UploadDate = s.today()
		doc.DoneBy = actor.UserName
		doc.StatusOverride = false
		return "Uploaded " + doc.Name, nil
	})
}

func (s *Service) VerifyDocument(ctx context.Context, actor domain.Actor, documentID snowflake.ID, verified bool) (domain.Document, error) {
	return s.mutateDocument(ctx, "verify_document", actor, documentID, func(u *unit, doc *domain.Document) (string, error) {
		doc.Verified = verified
		doc.StatusOverride = false
		if verified {
			doc.VerifiedBy = actor.UserName
			return "Verified " + doc.Name, nil
		}
		doc.VerifiedBy = ""
		return "Unverified " + doc.Name, nil
	})
}

// ClearDocumentFile drops the file reference. The file itself lives outside
// this system and is not touched.
func (s *Service) ClearDocumentFile(ctx context.Context, actor domain.Actor, documentID snowflake.ID) (domain.Document, error) {
	return s.mutateDocument(ctx, "clear_document_file", actor, documentID, func(u *unit, doc *domain.Document) (string, error) {
		doc.Uploaded = false
		doc.FileID = ""
		doc.UploadDate = ""
		doc.StatusOverride = false
		return "Deleted " + doc.Name, nil
	})
}

func (s *Service) ListDocuments(ctx context.Context, customerID snowflake.ID) ([]domain.Document, error) {
	docs, err := s.repo.ListDocuments(ctx, s.db.WithContext(ctx), customerID)
	if err != nil {
		return nil, err
	}
	return deref(docs), nil
}

func deref[T any](items []*T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out
}

package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/solarflow/internal/activity/domain"
	"github.com/smallbiznis/solarflow/internal/clock"
	"github.com/smallbiznis/solarflow/pkg/db/pagination"
	"github.com/smallbiznis/solarflow/pkg/telemetry/correlation"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 50
	maxPageSize     = domain.Cap
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("activity.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, db *gorm.DB, entries ...domain.Entry) ([]domain.Activity, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	if db == nil {
		db = s.db
	}

	correlationID := correlation.ExtractCorrelationID(ctx)
	now := s.clock.Now().UTC()

	rows := make([]*domain.Activity, 0, len(entries))
	for _, entry := range entries {
		action := strings.TrimSpace(entry.Action)
		if action == "" {
			return nil, domain.ErrInvalidAction
		}
		section := strings.TrimSpace(entry.Section)
		if section == "" {
			return nil, domain.ErrInvalidSection
		}
		rows = append(rows, &domain.Activity{
			ID:            s.genID.Generate(),
			User:          entry.User,
			UserID:        entry.UserID,
			CustomerID:    entry.CustomerID,
			Section:       section,
			Action:        action,
			CorrelationID: correlationID,
			Date:          now,
		})
	}

	if err := s.repo.Insert(ctx, db, rows); err != nil {
		s.log.Warn("failed to write activity", zap.Int("entries", len(rows)), zap.Error(err))
		return nil, err
	}

	evicted, err := s.repo.Trim(ctx, db, domain.Cap)
	if err != nil {
		s.log.Warn("failed to trim activity log", zap.Error(err))
		return nil, err
	}
	if evicted > 0 {
		s.log.Debug("evicted activity entries", zap.Int64("evicted", evicted))
	}

	out := make([]domain.Activity, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out, nil
}

func (s *Service) List(ctx context.Context, req domain.ListActivityRequest) (domain.ListActivityResponse, error) {
	var beforeID snowflake.ID
	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return domain.ListActivityResponse{}, domain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(strings.TrimSpace(decoded.ID))
		if err != nil || id == 0 {
			return domain.ListActivityResponse{}, domain.ErrInvalidPageToken
		}
		beforeID = id
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		CustomerID: req.CustomerID,
		UserID:     req.UserID,
		Section:    req.Section,
		BeforeID:   beforeID,
		Limit:      pageSize,
	})
	if err != nil {
		return domain.ListActivityResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(item *domain.Activity) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: item.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	logs := make([]domain.Activity, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		logs = append(logs, *item)
	}

	resp := domain.ListActivityResponse{Activities: logs}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

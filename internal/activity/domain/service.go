package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/solarflow/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListActivityRequest struct {
	pagination.Pagination
	CustomerID snowflake.ID
	UserID     string
	Section    string
}

type ListActivityResponse struct {
	pagination.PageInfo
	Activities []Activity `json:"activities"`
}

type Service interface {
	// Record appends entries on db, which may be an open transaction, then
	// evicts anything beyond Cap.
	Record(ctx context.Context, db *gorm.DB, entries ...Entry) ([]Activity, error)
	List(ctx context.Context, req ListActivityRequest) (ListActivityResponse, error)
}

var (
	ErrInvalidAction    = errors.New("invalid_action")
	ErrInvalidSection   = errors.New("invalid_section")
	ErrInvalidPageToken = errors.New("invalid_page_token")
)

package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/solarflow/internal/activity/domain"
	"github.com/smallbiznis/solarflow/internal/activity/repository"
	"github.com/smallbiznis/solarflow/internal/clock"
	"github.com/smallbiznis/solarflow/pkg/db/dbtest"
	"github.com/smallbiznis/solarflow/pkg/telemetry/correlation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := dbtest.Open(t, domain.Models()...)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{
		DB:    db,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	}).(*Service)
	return svc, db
}

func TestRecordEvictsOldestBeyondCap(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)

	first, err := svc.Record(ctx, nil, domain.Entry{User: "admin", UserID: "u1", Section: domain.SectionCustomer, Action: "entry 0"})
	require.NoError(t, err)
	require.Len(t, first, 1)

	batch := make([]domain.Entry, 0, domain.Cap-1)
	for i := 1; i < domain.Cap; i++ {
		batch = append(batch, domain.Entry{User: "admin", UserID: "u1", Section: domain.SectionCustomer, Action: fmt.Sprintf("entry %d", i)})
	}
	_, err = svc.Record(ctx, nil, batch...)
	require.NoError(t, err)

	count, err := repository.Provide().Count(ctx, db)
	require.NoError(t, err)
	assert.EqualValues(t, domain.Cap, count)

	_, err = svc.Record(ctx, nil, domain.Entry{User: "admin", UserID: "u1", Section: domain.SectionCustomer, Action: "entry 500"})
	require.NoError(t, err)

	count, err = repository.Provide().Count(ctx, db)
	require.NoError(t, err)
	assert.EqualValues(t, domain.Cap, count)

	resp, err := svc.List(ctx, domain.ListActivityRequest{})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Activities)
	assert.Equal(t, "entry 500", resp.Activities[0].Action)
	assert.Equal(t, "entry 499", resp.Activities[1].Action)

	var oldest domain.Activity
	require.NoError(t, db.Order("id asc").First(&oldest).Error)
	assert.Equal(t, "entry 1", oldest.Action)
	assert.NotEqual(t, first[0].ID, oldest.ID)
}

func TestRecordInsideRolledBackTransaction(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := svc.Record(ctx, tx, domain.Entry{User: "admin", UserID: "u1", Section: domain.SectionTasks, Action: "Created task: x"}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	count, err := repository.Provide().Count(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRecordValidatesAndStampsCorrelation(t *testing.T) {
	ctx := correlation.ContextWithCorrelationID(context.Background(), "corr-1")
	svc, _ := newTestService(t)

	_, err := svc.Record(ctx, nil, domain.Entry{Section: domain.SectionCustomer})
	require.ErrorIs(t, err, domain.ErrInvalidAction)

	_, err = svc.Record(ctx, nil, domain.Entry{Action: "x"})
	require.ErrorIs(t, err, domain.ErrInvalidSection)

	out, err := svc.Record(ctx, nil, domain.Entry{User: "System", UserID: "system", Section: domain.SectionProgress, Action: "Progress updated to 12% (in_progress)"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "corr-1", out[0].CorrelationID)
	assert.Equal(t, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), out[0].Date)
}

func TestListFiltersAndPaginates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Record(ctx, nil,
		domain.Entry{User: "a", UserID: "u1", CustomerID: 1, Section: domain.SectionDocuments, Action: "Uploaded Aadhaar Card"},
		domain.Entry{User: "a", UserID: "u1", CustomerID: 1, Section: domain.SectionChecklist, Action: "Completed Site Survey"},
		domain.Entry{User: "b", UserID: "u2", CustomerID: 2, Section: domain.SectionDocuments, Action: "Uploaded Light Bill"},
		domain.Entry{User: "a", UserID: "u1", CustomerID: 1, Section: domain.SectionDocuments, Action: "Verified Aadhaar Card"},
	)
	require.NoError(t, err)

	byCustomer, err := svc.List(ctx, domain.ListActivityRequest{CustomerID: 1})
	require.NoError(t, err)
	assert.Len(t, byCustomer.Activities, 3)

	byUser, err := svc.List(ctx, domain.ListActivityRequest{UserID: "u2"})
	require.NoError(t, err)
	require.Len(t, byUser.Activities, 1)
	assert.Equal(t, "Uploaded Light Bill", byUser.Activities[0].Action)

	page1, err := svc.List(ctx, domain.ListActivityRequest{CustomerID: 1, Section: domain.SectionDocuments})
	require.NoError(t, err)
	require.Len(t, page1.Activities, 2)
	assert.Equal(t, "Verified Aadhaar Card", page1.Activities[0].Action)

	all, err := svc.List(ctx, domain.ListActivityRequest{})
	require.NoError(t, err)
	require.Len(t, all.Activities, 4)
	assert.False(t, all.HasMore)

	req := domain.ListActivityRequest{}
	req.PageSize = 3
	head, err := svc.List(ctx, req)
	require.NoError(t, err)
	require.Len(t, head.Activities, 3)
	assert.True(t, head.HasMore)
	require.NotEmpty(t, head.NextPageToken)

	req.PageToken = head.NextPageToken
	tail, err := svc.List(ctx, req)
	require.NoError(t, err)
	require.Len(t, tail.Activities, 1)
	assert.Equal(t, "Uploaded Aadhaar Card", tail.Activities[0].Action)
	assert.False(t, tail.HasMore)
}

func TestListRejectsBadPageToken(t *testing.T) {
	svc, _ := newTestService(t)
	req := domain.ListActivityRequest{}
	req.PageToken = "not-a-token"
	_, err := svc.List(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrInvalidPageToken)
}

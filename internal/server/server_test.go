package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	activitydomain "github.com/smallbiznis/solarflow/internal/activity/domain"
	"github.com/smallbiznis/solarflow/internal/observability"
	projectdomain "github.com/smallbiznis/solarflow/internal/project/domain"
	"github.com/smallbiznis/solarflow/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type fakeProjectService struct {
	projectdomain.Service

	views     map[snowflake.ID]projectdomain.ProgressView
	report    projectdomain.DeadlineReport
	reportErr error
}

func (f *fakeProjectService) GetProgress(ctx context.Context, customerID snowflake.ID) (projectdomain.ProgressView, error) {
	view, ok := f.views[customerID]
	if !ok {
		return projectdomain.ProgressView{}, projectdomain.ErrNotFound
	}
	return view, nil
}

func (f *fakeProjectService) CheckTaskDeadlines(ctx context.Context) (projectdomain.DeadlineReport, error) {
	return f.report, f.reportErr
}

type fakeActivityService struct {
	lastReq activitydomain.ListActivityRequest
	resp    activitydomain.ListActivityResponse
	err     error
}

func (f *fakeActivityService) Record(ctx context.Context, db *gorm.DB, entries ...activitydomain.Entry) ([]activitydomain.Activity, error) {
	return nil, nil
}

func (f *fakeActivityService) List(ctx context.Context, req activitydomain.ListActivityRequest) (activitydomain.ListActivityResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

func newTestServer(t *testing.T, project *fakeProjectService, activity *fakeActivityService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := NewEngine(observability.Config{LogLevel: "info"}, zaptest.NewLogger(t), nil)
	NewServer(ServerParams{
		Gin:         engine,
		ProjectSvc:  project,
		ActivitySvc: activity,
	})
	return engine
}

func doGet(engine *gin.Engine, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestHealth(t *testing.T) {
	engine := newTestServer(t, &fakeProjectService{}, &fakeActivityService{})

	rec := doGet(engine, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetProgress(t *testing.T) {
	customerID := snowflake.ID(1790000000000000001)
	project := &fakeProjectService{
		views: map[snowflake.ID]projectdomain.ProgressView{
			customerID: {
				CustomerID: customerID,
				Sections:   projectdomain.SectionProgress{Documents: 100, Checklist: 50},
				Overall:    45,
				Status:     projectdomain.StatusInProgress,
				LockedMessages: map[projectdomain.Section]string{
					projectdomain.SectionCommissioning: "Complete Inspection section first",
				},
			},
		},
	}
	engine := newTestServer(t, project, &fakeActivityService{})

	rec := doGet(engine, "/v1/customers/"+customerID.String()+"/progress")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data projectdomain.ProgressView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, customerID, body.Data.CustomerID)
	assert.Equal(t, 45, body.Data.Overall)
	assert.Equal(t, 50, body.Data.Sections.Checklist)
	assert.Equal(t, projectdomain.StatusInProgress, body.Data.Status)
	assert.Equal(t, "Complete Inspection section first", body.Data.LockedMessages[projectdomain.SectionCommissioning])
}

func TestGetProgressErrors(t *testing.T) {
	engine := newTestServer(t, &fakeProjectService{}, &fakeActivityService{})

	t.Run("unknown customer", func(t *testing.T) {
		rec := doGet(engine, "/v1/customers/1790000000000000099/progress")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "not_found", decodeError(t, rec).Type)
	})

	t.Run("malformed id", func(t *testing.T) {
		rec := doGet(engine, "/v1/customers/abc/progress")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		payload := decodeError(t, rec)
		assert.Equal(t, "validation_error", payload.Type)
		require.Len(t, payload.Errors, 1)
		assert.Equal(t, "invalid_id", payload.Errors[0].Code)
	})
}

func TestListActivities(t *testing.T) {
	activity := &fakeActivityService{
		resp: activitydomain.ListActivityResponse{
			PageInfo: pagination.PageInfo{HasMore: true, NextPageToken: "next"},
			Activities: []activitydomain.Activity{
				{ID: 2, User: "Asha", UserID: "u-1", CustomerID: 7, Section: "Checklist", Action: "Completed PV Application"},
			},
		},
	}
	engine := newTestServer(t, &fakeProjectService{}, activity)

	rec := doGet(engine, "/v1/activities?customer_id=7&user_id=u-1&section=Checklist&limit=20&page_token=abc")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, snowflake.ID(7), activity.lastReq.CustomerID)
	assert.Equal(t, "u-1", activity.lastReq.UserID)
	assert.Equal(t, "Checklist", activity.lastReq.Section)
	assert.Equal(t, 20, activity.lastReq.PageSize)
	assert.Equal(t, "abc", activity.lastReq.PageToken)

	var body struct {
		Data     []activitydomain.Activity `json:"data"`
		PageInfo pagination.PageInfo       `json:"page_info"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Completed PV Application", body.Data[0].Action)
	assert.True(t, body.PageInfo.HasMore)
	assert.Equal(t, "next", body.PageInfo.NextPageToken)
}

func TestListActivitiesErrors(t *testing.T) {
	t.Run("malformed customer id", func(t *testing.T) {
		activity := &fakeActivityService{}
		engine := newTestServer(t, &fakeProjectService{}, activity)

		rec := doGet(engine, "/v1/activities?customer_id=nope")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		payload := decodeError(t, rec)
		require.Len(t, payload.Errors, 1)
		assert.Equal(t, "customer_id", payload.Errors[0].Field)
	})

	t.Run("bad page token", func(t *testing.T) {
		activity := &fakeActivityService{err: activitydomain.ErrInvalidPageToken}
		engine := newTestServer(t, &fakeProjectService{}, activity)

		rec := doGet(engine, "/v1/activities?page_token=zzz")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		payload := decodeError(t, rec)
		require.Len(t, payload.Errors, 1)
		assert.Equal(t, "invalid_page_token", payload.Errors[0].Code)
		assert.Equal(t, "page_token", payload.Errors[0].Field)
	})
}

func TestCheckTaskDeadlines(t *testing.T) {
	project := &fakeProjectService{
		report: projectdomain.DeadlineReport{
			Overdue:      []projectdomain.Task{{ID: 11, Title: "Install panels"}},
			NearDeadline: []projectdomain.Task{},
		},
	}
	engine := newTestServer(t, project, &fakeActivityService{})

	rec := doGet(engine, "/v1/tasks/deadlines")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data projectdomain.DeadlineReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data.Overdue, 1)
	assert.Equal(t, "Install panels", body.Data.Overdue[0].Title)
	assert.Empty(t, body.Data.NearDeadline)
}

func TestCheckTaskDeadlinesInternalError(t *testing.T) {
	project := &fakeProjectService{reportErr: errors.New("database is locked")}
	engine := newTestServer(t, project, &fakeActivityService{})

	rec := doGet(engine, "/v1/tasks/deadlines")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	payload := decodeError(t, rec)
	assert.Equal(t, "internal_error", payload.Type)
	assert.NotContains(t, rec.Body.String(), "database is locked")
}

func TestClassifyErrorForLog(t *testing.T) {
	errType, code := classifyErrorForLog(projectdomain.ErrInvalidStatus)
	assert.Equal(t, "validation_error", errType)
	assert.Equal(t, "invalid_status", code)

	errType, code = classifyErrorForLog(projectdomain.ErrNotFound)
	assert.Equal(t, "not_found", errType)
	assert.Equal(t, "not_found", code)

	errType, code = classifyErrorForLog(errors.New("boom"))
	assert.Equal(t, "internal_error", errType)
	assert.Equal(t, "internal_error", code)
}

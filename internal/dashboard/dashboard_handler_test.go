package dashboard_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MySundayS/employee-lita/internal/dashboard"
	"github.com/MySundayS/employee-lita/internal/shared/apperror"
	"github.com/MySundayS/employee-lita/internal/syncer"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeService struct {
	summaryFn   func(ctx context.Context, asOf time.Time) (dashboard.SummaryResponse, error)
	employeesFn func(ctx context.Context, asOf time.Time) ([]dashboard.EmployeeDaySummary, error)
	employeeFn  func(ctx context.Context, id string, asOf time.Time) (dashboard.EmployeeDaySummary, error)
}

func (f *fakeService) Summary(ctx context.Context, asOf time.Time) (dashboard.SummaryResponse, error) {
	return f.summaryFn(ctx, asOf)
}
func (f *fakeService) Employees(ctx context.Context, asOf time.Time) ([]dashboard.EmployeeDaySummary, error) {
	return f.employeesFn(ctx, asOf)
}
func (f *fakeService) Employee(ctx context.Context, id string, asOf time.Time) (dashboard.EmployeeDaySummary, error) {
	return f.employeeFn(ctx, id, asOf)
}

type fakeSyncService struct {
	syncFn func(ctx context.Context, since *time.Time) (syncer.Result, error)
	status syncer.Status
}

func (f *fakeSyncService) Sync(ctx context.Context, since *time.Time) (syncer.Result, error) {
	return f.syncFn(ctx, since)
}
func (f *fakeSyncService) Status() syncer.Status { return f.status }

func emptySummary(asOf time.Time) dashboard.SummaryResponse {
	return dashboard.Aggregate(nil, asOf)
}

func newRouter(svc dashboard.Service, sync syncer.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := dashboard.NewHandler(svc, sync, nil, 5*time.Minute)
	api := router.Group("/api/v1")
	dashboard.RegisterRoutes(api, h)
	dashboard.RegisterUI(router, h)
	return router
}

func TestHandler_Summary(t *testing.T) {
	svc := &fakeService{
		summaryFn: func(ctx context.Context, asOf time.Time) (dashboard.SummaryResponse, error) {
			assert.Equal(t, "2024-03-04", asOf.Format("2006-01-02"))
			s := emptySummary(asOf)
			s.TotalEmployees = 5
			s.CheckedIn = 3
			s.NotCheckedIn = 2
			s.Rate = 0.6
			return s, nil
		},
	}
	router := newRouter(svc, &fakeSyncService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/summary?date=2024-03-04", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"checked_in":3`)
	assert.Contains(t, w.Body.String(), `"rate":0.6`)
}

func TestHandler_Summary_BadDate(t *testing.T) {
	router := newRouter(&fakeService{}, &fakeSyncService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/summary?date=04-03-2024", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_INPUT")
}

func TestHandler_Employee_NotFound(t *testing.T) {
	svc := &fakeService{
		employeeFn: func(ctx context.Context, id string, asOf time.Time) (dashboard.EmployeeDaySummary, error) {
			return dashboard.EmployeeDaySummary{}, apperror.ErrNotFound
		},
	}
	router := newRouter(svc, &fakeSyncService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/employees/999", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_TriggerSync(t *testing.T) {
	sync := &fakeSyncService{
		syncFn: func(ctx context.Context, since *time.Time) (syncer.Result, error) {
			assert.Nil(t, since)
			return syncer.Result{Written: 4, Fetched: 10}, nil
		},
	}
	router := newRouter(&fakeService{}, sync)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"written":4`)
}

func TestHandler_TriggerSync_AlreadyRunning(t *testing.T) {
	sync := &fakeSyncService{
		syncFn: func(ctx context.Context, since *time.Time) (syncer.Result, error) {
			return syncer.Result{}, apperror.ErrSyncInProgress
		},
	}
	router := newRouter(&fakeService{}, sync)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "CONFLICT")
}

func TestHandler_SyncStatus(t *testing.T) {
	sync := &fakeSyncService{status: syncer.Status{State: "idle", SyncCount: 7}}
	router := newRouter(&fakeService{}, sync)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync/status", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sync_count":7`)
}

func TestHandler_IndexRendersPage(t *testing.T) {
	svc := &fakeService{
		summaryFn: func(ctx context.Context, asOf time.Time) (dashboard.SummaryResponse, error) {
			s := emptySummary(asOf)
			s.TotalEmployees = 2
			s.CheckedIn = 1
			s.NotCheckedIn = 1
			s.Rate = 0.5
			return s, nil
		},
		employeesFn: func(ctx context.Context, asOf time.Time) ([]dashboard.EmployeeDaySummary, error) {
			return []dashboard.EmployeeDaySummary{{EmployeeID: "001", Name: "Somchai", Present: true}}, nil
		},
	}
	router := newRouter(svc, &fakeSyncService{status: syncer.Status{State: "idle"}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Attendance Dashboard")
	assert.Contains(t, w.Body.String(), "Somchai")
	assert.Contains(t, w.Body.String(), `content="300"`)
}

func TestHandler_Healthz(t *testing.T) {
	router := newRouter(&fakeService{}, &fakeSyncService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

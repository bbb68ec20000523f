package dashboard

import (
	"context"
	"time"

	"github.com/MySundayS/employee-lita/internal/shared/apperror"
	"github.com/MySundayS/employee-lita/internal/store"

	"go.uber.org/zap"
)

//go:generate mockgen -source=dashboard_service.go -destination=mock/dashboard_service_mock.go -package=mock
type Service interface {
	Summary(ctx context.Context, asOf time.Time) (SummaryResponse, error)
	Employees(ctx context.Context, asOf time.Time) ([]EmployeeDaySummary, error)
	Employee(ctx context.Context, employeeID string, asOf time.Time) (EmployeeDaySummary, error)
}

type Loader interface {
	Load(ctx context.Context) ([]store.Record, error)
}

type service struct {
	loader Loader
	logger *zap.Logger
}

func NewService(loader Loader, logger ...*zap.Logger) Service {
	l := zap.L().Named("dashboard.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("dashboard.service")
	}
	return &service{loader: loader, logger: l}
}

// Summary never fails on store trouble: an unreachable store degrades to a
// zero-valued placeholder so the page still renders.
func (s *service) Summary(ctx context.Context, asOf time.Time) (SummaryResponse, error) {
	records, err := s.loader.Load(ctx)
	if err != nil {
		s.logger.Warn("store read failed, serving placeholder summary", zap.Error(err))
		placeholder := Aggregate(nil, asOf)
		placeholder.Degraded = true
		return placeholder, nil
	}
	return Aggregate(records, asOf), nil
}

func (s *service) Employees(ctx context.Context, asOf time.Time) ([]EmployeeDaySummary, error) {
	records, err := s.loader.Load(ctx)
	if err != nil {
		s.logger.Warn("store read failed, serving empty employee list", zap.Error(err))
		return []EmployeeDaySummary{}, nil
	}
	return DaySummaries(records, asOf), nil
}

func (s *service) Employee(ctx context.Context, employeeID string, asOf time.Time) (EmployeeDaySummary, error) {
	records, err := s.loader.Load(ctx)
	if err != nil {
		return EmployeeDaySummary{}, apperror.ErrStoreUnavailable
	}
	summary, ok := DaySummaryFor(records, employeeID, asOf)
	if !ok {
		return EmployeeDaySummary{}, apperror.ErrNotFound
	}
	return summary, nil
}

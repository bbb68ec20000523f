package syncer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/MySundayS/employee-lita/internal/device"
	"github.com/MySundayS/employee-lita/internal/events"
	"github.com/MySundayS/employee-lita/internal/shared/apperror"
	"github.com/MySundayS/employee-lita/internal/store"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Result reports one sync pass. LastTimestamp is the newest punch seen and
// feeds the next pass's since filter in continuous mode.
type Result struct {
	Written       int
	Fetched       int
	LastTimestamp time.Time
}

// Status is the operator-facing view served by the sync status endpoint.
type Status struct {
	State     string     `json:"state"` // idle | syncing
	SyncCount int        `json:"sync_count"`
	LastSync  *time.Time `json:"last_sync,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

//go:generate mockgen -source=syncer_service.go -destination=mock/syncer_service_mock.go -package=mock
type Service interface {
	// Sync pulls punches from the terminal and appends the ones not yet in
	// the store. If since is non-nil, older punches are not candidates.
	// Only one Sync runs at a time; a concurrent call gets ErrSyncInProgress.
	Sync(ctx context.Context, since *time.Time) (Result, error)
	Status() Status
}

type Options struct {
	DeviceIP    string
	Retries     int           // bounded connect attempts
	RetryDelay  time.Duration // base backoff, grows linearly per attempt
	CallTimeout time.Duration // bounds every device/store network call
}

type service struct {
	client    device.Client
	store     store.Store
	publisher EventPublisher
	opts      Options
	logger    *zap.Logger
	caser     cases.Caser

	mu        sync.Mutex // guards one-sync-at-a-time plus the fields below
	running   bool
	syncCount int
	lastSync  *time.Time
	lastError string
}

func NewService(client device.Client, st store.Store, publisher EventPublisher, opts Options, logger ...*zap.Logger) Service {
	l := zap.L().Named("syncer.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("syncer.service")
	}
	if publisher == nil {
		publisher = noopEventPublisher{}
	}
	if opts.Retries < 1 {
		opts.Retries = 1
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 30 * time.Second
	}
	return &service{
		client:    client,
		store:     st,
		publisher: publisher,
		opts:      opts,
		logger:    l,
		caser:     cases.Title(language.Und),
	}
}

func (s *service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := "idle"
	if s.running {
		state = "syncing"
	}
	return Status{
		State:     state,
		SyncCount: s.syncCount,
		LastSync:  s.lastSync,
		LastError: s.lastError,
	}
}

func (s *service) Sync(ctx context.Context, since *time.Time) (Result, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return Result{}, apperror.ErrSyncInProgress
	}
	s.running = true
	s.mu.Unlock()

	res, err := s.sync(ctx, since)

	s.mu.Lock()
	s.running = false
	if err != nil {
		s.lastError = err.Error()
	} else {
		s.lastError = ""
		s.syncCount++
		now := time.Now()
		s.lastSync = &now
	}
	s.mu.Unlock()

	return res, err
}

func (s *service) sync(ctx context.Context, since *time.Time) (Result, error) {
	if err := s.connectWithRetry(ctx); err != nil {
		return Result{}, err
	}
	defer func() {
		if err := s.client.Disconnect(); err != nil {
			s.logger.Warn("disconnect failed", zap.Error(err))
		}
	}()

	if info, err := s.callInfo(ctx); err == nil {
		s.logger.Info("connected to terminal",
			zap.String("device", info.DeviceName),
			zap.String("firmware", info.FirmwareVersion))
	}

	names := s.userNames(ctx)

	punches, err := s.callAttendanceLogs(ctx)
	if err != nil {
		return Result{}, err
	}
	s.logger.Info("fetched punches", zap.Int("count", len(punches)))

	// Everything below is store-side; nothing has been written yet, so any
	// failure here leaves the store untouched.
	existing, err := s.callExistingIDs(ctx)
	if err != nil {
		return Result{}, err
	}

	var (
		batch   []store.Record
		ids     []string
		latest  time.Time
		fetched int
	)
	seen := make(map[string]struct{}, len(punches))
	for _, p := range punches {
		if since != nil && p.Timestamp.Before(*since) {
			continue
		}
		fetched++
		if p.Timestamp.After(latest) {
			latest = p.Timestamp
		}

		rec := s.transform(p, names)
		if _, ok := existing[rec.ID]; ok {
			continue
		}
		if _, ok := seen[rec.ID]; ok {
			continue
		}
		seen[rec.ID] = struct{}{}
		batch = append(batch, rec)
		ids = append(ids, rec.ID)
	}

	if len(batch) == 0 {
		s.logger.Info("no new records to write")
		return Result{Fetched: fetched, LastTimestamp: latest}, nil
	}

	if err := s.callAppendRows(ctx, batch); err != nil {
		return Result{}, err
	}
	s.logger.Info("wrote new records", zap.Int("written", len(batch)))

	// Event publishing is best-effort; the batch is already durable.
	event := events.AttendanceSyncedEvent{
		DeviceIP:  s.opts.DeviceIP,
		Written:   len(batch),
		RecordIDs: ids,
		SyncedAt:  time.Now(),
	}
	if err := s.publisher.PublishAttendanceSynced(ctx, event); err != nil {
		s.logger.Warn("publish attendance.synced failed", zap.Error(err))
	}

	return Result{Written: len(batch), Fetched: fetched, LastTimestamp: latest}, nil
}

// transform maps one raw punch into a store row. The id is the composite
// key userID_YYYYMMDD_HHMMSS, stable across repeated fetches of the same
// punch, which is what makes Sync idempotent.
func (s *service) transform(p device.Punch, names map[string]string) store.Record {
	name, ok := names[p.UserID]
	if !ok || name == "" {
		name = "Unknown"
	}
	return store.Record{
		ID:        p.UserID + "_" + p.Timestamp.Format("20060102_150405"),
		UserID:    p.UserID,
		Name:      name,
		Timestamp: p.Timestamp,
		Status:    p.Status,
		Punch:     p.Punch,
		DeviceIP:  s.opts.DeviceIP,
	}
}

func (s *service) connectWithRetry(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= s.opts.Retries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, s.opts.CallTimeout)
		err := s.client.Connect(callCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if !errors.Is(err, device.ErrConnection) {
			return err
		}
		s.logger.Warn("terminal connect failed",
			zap.Int("attempt", attempt),
			zap.Int("max", s.opts.Retries),
			zap.Error(err))

		if attempt < s.opts.Retries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.opts.RetryDelay * time.Duration(attempt)):
			}
		}
	}
	return apperror.Wrap(lastErr, apperror.CodeDeviceUnreachable,
		apperror.ErrDeviceUnreachable.Message, apperror.ErrDeviceUnreachable.HTTPStatus)
}

// userNames pulls the enrollment directory for display names. A failure
// here only degrades names to "Unknown", it never fails the sync.
func (s *service) userNames(ctx context.Context) map[string]string {
	callCtx, cancel := context.WithTimeout(ctx, s.opts.CallTimeout)
	defer cancel()

	users, err := s.client.GetUsers(callCtx)
	if err != nil {
		s.logger.Warn("user directory read failed", zap.Error(err))
		return nil
	}

	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.UserID] = s.displayName(u.Name)
	}
	return names
}

func (s *service) displayName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return s.caser.String(strings.ToLower(name))
}

func (s *service) callInfo(ctx context.Context) (device.Info, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.opts.CallTimeout)
	defer cancel()
	return s.client.Info(callCtx)
}

func (s *service) callAttendanceLogs(ctx context.Context) ([]device.Punch, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.opts.CallTimeout)
	defer cancel()
	return s.client.GetAttendanceLogs(callCtx)
}

func (s *service) callExistingIDs(ctx context.Context) (map[string]struct{}, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.opts.CallTimeout)
	defer cancel()
	return s.store.ExistingIDs(callCtx)
}

func (s *service) callAppendRows(ctx context.Context, rows []store.Record) error {
	callCtx, cancel := context.WithTimeout(ctx, s.opts.CallTimeout)
	defer cancel()
	return s.store.AppendRows(callCtx, rows)
}

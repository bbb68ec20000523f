package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/MySundayS/employee-lita/internal/store"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

type fakeStore struct {
	records []store.Record
	err     error
	reads   int
}

func (f *fakeStore) EnsureSchema(ctx context.Context) error { return nil }
func (f *fakeStore) AppendRows(ctx context.Context, rows []store.Record) error {
	return nil
}
func (f *fakeStore) ReadAll(ctx context.Context) ([]store.Record, error) {
	f.reads++
	return f.records, f.err
}
func (f *fakeStore) ExistingIDs(ctx context.Context) (map[string]struct{}, error) {
	return nil, nil
}

func TestSnapshotLoader_NoCacheFallsThroughToStore(t *testing.T) {
	day := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	st := &fakeStore{records: []store.Record{rec("001", day)}}
	loader := NewSnapshotLoader(st, nil, time.Minute)

	records, err := loader.Load(context.Background())
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, st.reads)
}

func TestSnapshotLoader_CacheHitSkipsStore(t *testing.T) {
	day := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	cached, _ := json.Marshal([]store.Record{rec("001", day)})

	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet(snapshotCacheKey).SetVal(string(cached))

	st := &fakeStore{}
	loader := NewSnapshotLoader(st, rdb, time.Minute)

	records, err := loader.Load(context.Background())
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "001", records[0].UserID)
	assert.Equal(t, 0, st.reads)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotLoader_CacheMissReadsAndFills(t *testing.T) {
	day := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	records := []store.Record{rec("001", day)}
	payload, _ := json.Marshal(records)

	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet(snapshotCacheKey).RedisNil()
	mock.ExpectSet(snapshotCacheKey, payload, time.Minute).SetVal("OK")

	st := &fakeStore{records: records}
	loader := NewSnapshotLoader(st, rdb, time.Minute)

	got, err := loader.Load(context.Background())
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, st.reads)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotLoader_StoreErrorPropagates(t *testing.T) {
	st := &fakeStore{err: errors.New("sheet unreachable")}
	loader := NewSnapshotLoader(st, nil, time.Minute)

	_, err := loader.Load(context.Background())
	assert.Error(t, err)
}

func TestService_DegradesToPlaceholderOnStoreFailure(t *testing.T) {
	st := &fakeStore{err: errors.New("sheet unreachable")}
	svc := NewService(NewSnapshotLoader(st, nil, time.Minute))
	asOf := time.Date(2024, 3, 4, 0, 0, 0, 0, time.Local)

	summary, err := svc.Summary(context.Background(), asOf)
	assert.NoError(t, err)
	assert.True(t, summary.Degraded)
	assert.Zero(t, summary.CheckedIn)
	assert.Len(t, summary.Trend, 7)

	employees, err := svc.Employees(context.Background(), asOf)
	assert.NoError(t, err)
	assert.Empty(t, employees)
}

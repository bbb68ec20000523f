package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/MySundayS/employee-lita/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	pg "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(pg.New(pg.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)
	return New(gormDB), mock
}

func TestStore_AppendRows_SingleTransaction(t *testing.T) {
	st, mock := newMockStore(t)
	ts := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "attendance_records"`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := st.AppendRows(context.Background(), []store.Record{
		{ID: "001_20240304_080000", UserID: "001", Name: "Somchai", Timestamp: ts, Status: 1, Punch: 0, DeviceIP: "192.168.1.2"},
		{ID: "002_20240304_081000", UserID: "002", Name: "Suda", Timestamp: ts.Add(10 * time.Minute), Status: 1, Punch: 0, DeviceIP: "192.168.1.2"},
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_AppendRows_EmptyBatchIsNoop(t *testing.T) {
	st, mock := newMockStore(t)

	err := st.AppendRows(context.Background(), nil)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_AppendRows_RollsBackOnFailure(t *testing.T) {
	st, mock := newMockStore(t)
	ts := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "attendance_records"`).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := st.AppendRows(context.Background(), []store.Record{
		{ID: "001_20240304_080000", UserID: "001", Timestamp: ts},
	})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ReadAll(t *testing.T) {
	st, mock := newMockStore(t)
	ts := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "user_id", "name", "punched_at", "status", "punch", "device_ip", "created_at"}).
		AddRow("001_20240304_080000", "001", "Somchai", ts, 1, 0, "192.168.1.2", ts).
		AddRow("002_20240304_081000", "002", "Suda", ts.Add(10*time.Minute), 1, 0, "192.168.1.2", ts)
	mock.ExpectQuery(`SELECT \* FROM "attendance_records"`).WillReturnRows(rows)

	records, err := st.ReadAll(context.Background())
	assert.NoError(t, err)
	if assert.Len(t, records, 2) {
		assert.Equal(t, "001", records[0].UserID)
		assert.Equal(t, "Somchai", records[0].Name)
		assert.True(t, records[0].Timestamp.Equal(ts))
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ExistingIDs(t *testing.T) {
	st, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id"}).
		AddRow("001_20240304_080000").
		AddRow("002_20240304_081000")
	mock.ExpectQuery(`SELECT "id" FROM "attendance_records"`).WillReturnRows(rows)

	ids, err := st.ExistingIDs(context.Background())
	assert.NoError(t, err)
	assert.Len(t, ids, 2)
	_, ok := ids["001_20240304_080000"]
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

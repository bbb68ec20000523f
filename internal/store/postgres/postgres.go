// Package postgres mirrors the spreadsheet store onto a relational table
// for installations that outgrow the sheet's row limits.
package postgres

import (
	"context"
	"time"

	"github.com/MySundayS/employee-lita/internal/shared/apperror"
	"github.com/MySundayS/employee-lita/internal/store"

	"gorm.io/gorm"
)

type attendanceRow struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	UserID    string    `gorm:"column:user_id;type:varchar(32);not null;index"`
	Name      string    `gorm:"column:name;type:varchar(100)"`
	Timestamp time.Time `gorm:"column:punched_at;type:timestamptz;not null;index"`
	Status    int       `gorm:"column:status;not null"`
	Punch     int       `gorm:"column:punch;not null"`
	DeviceIP  string    `gorm:"column:device_ip;type:varchar(45)"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (attendanceRow) TableName() string {
	return "attendance_records"
}

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&attendanceRow{}); err != nil {
		return apperror.Wrap(err, apperror.CodeStoreUnavailable, "attendance table migration failed", 503)
	}
	return nil
}

func (s *Store) AppendRows(ctx context.Context, rows []store.Record) error {
	if len(rows) == 0 {
		return nil
	}
	batch := make([]attendanceRow, len(rows))
	for i, r := range rows {
		batch[i] = attendanceRow{
			ID:        r.ID,
			UserID:    r.UserID,
			Name:      r.Name,
			Timestamp: r.Timestamp,
			Status:    r.Status,
			Punch:     r.Punch,
			DeviceIP:  r.DeviceIP,
		}
	}

	// Single transaction so the batch lands all-or-nothing.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&batch).Error
	})
	if err != nil {
		return apperror.Wrap(err, apperror.CodeStoreUnavailable, "attendance batch insert failed", 503)
	}
	return nil
}

func (s *Store) ReadAll(ctx context.Context) ([]store.Record, error) {
	var rows []attendanceRow
	err := s.db.WithContext(ctx).
		Order("punched_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeStoreUnavailable, "attendance read failed", 503)
	}

	records := make([]store.Record, len(rows))
	for i, r := range rows {
		records[i] = store.Record{
			ID:        r.ID,
			UserID:    r.UserID,
			Name:      r.Name,
			Timestamp: r.Timestamp,
			Status:    r.Status,
			Punch:     r.Punch,
			DeviceIP:  r.DeviceIP,
		}
	}
	return records, nil
}

func (s *Store) ExistingIDs(ctx context.Context) (map[string]struct{}, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&attendanceRow{}).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeStoreUnavailable, "attendance id read failed", 503)
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

package store

import (
	"context"
	"time"
)

// Record is one normalized attendance row. Rows are append-only: once
// written they are never mutated or deleted, and ID is unique across the
// whole table.
type Record struct {
	ID        string
	UserID    string
	Name      string
	Timestamp time.Time
	Status    int
	Punch     int
	DeviceIP  string
}

// Columns of the backing table, in order.
var Columns = []string{"ID", "User ID", "Name", "Timestamp", "Status", "Punch", "Date", "Time", "Device IP"}

const (
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
	TimeLayout      = "15:04:05"
)

func (r Record) Date() string { return r.Timestamp.Format(DateLayout) }
func (r Record) Time() string { return r.Timestamp.Format(TimeLayout) }

//go:generate mockgen -source=store.go -destination=mock/store_mock.go -package=mock
type Store interface {
	// EnsureSchema bootstraps the table (header row / migration). Idempotent.
	EnsureSchema(ctx context.Context) error
	// AppendRows writes the batch as a single append so a batch is either
	// fully visible or not at all.
	AppendRows(ctx context.Context, rows []Record) error
	ReadAll(ctx context.Context) ([]Record, error)
	// ExistingIDs returns the set of ids already written, for dedup.
	ExistingIDs(ctx context.Context) (map[string]struct{}, error)
}

package device

import (
	"context"
	"errors"
	"time"
)

// ErrConnection marks any failure to reach or talk to the terminal.
// Callers use errors.Is to decide between retrying and giving up.
var ErrConnection = errors.New("device connection failed")

// Punch is one raw attendance event as the terminal reports it.
type Punch struct {
	UID       int       // device-internal record slot
	UserID    string    // enrolled employee id
	Timestamp time.Time // local device clock
	Status    int       // verification mode (fingerprint, card, ...)
	Punch     int       // 0 = check-in, 1 = check-out
}

// User is one entry of the terminal's enrollment directory.
type User struct {
	UID    int
	UserID string
	Name   string
}

// Info describes the connected terminal, logged once per session.
type Info struct {
	DeviceName      string
	FirmwareVersion string
}

//go:generate mockgen -source=device.go -destination=mock/device_mock.go -package=mock
type Client interface {
	Connect(ctx context.Context) error
	Info(ctx context.Context) (Info, error)
	GetAttendanceLogs(ctx context.Context) ([]Punch, error)
	GetUsers(ctx context.Context) ([]User, error)
	Disconnect() error
}

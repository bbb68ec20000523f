package device

import (
	"context"
	"fmt"
	"time"
)

// DemoClient serves deterministic punches for five employees over the last
// three days. It stands in for a real terminal in cloud deployments where
// no device is reachable.
type DemoClient struct {
	Now func() time.Time
}

func NewDemoClient() *DemoClient {
	return &DemoClient{Now: time.Now}
}

func (d *DemoClient) Connect(ctx context.Context) error { return nil }
func (d *DemoClient) Disconnect() error                 { return nil }

func (d *DemoClient) Info(ctx context.Context) (Info, error) {
	return Info{DeviceName: "Demo Terminal", FirmwareVersion: "demo"}, nil
}

func (d *DemoClient) GetUsers(ctx context.Context) ([]User, error) {
	users := make([]User, 0, 5)
	for i := 1; i <= 5; i++ {
		users = append(users, User{
			UID:    i,
			UserID: fmt.Sprintf("%03d", i),
			Name:   fmt.Sprintf("Employee %03d", i),
		})
	}
	return users, nil
}

func (d *DemoClient) GetAttendanceLogs(ctx context.Context) ([]Punch, error) {
	now := d.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var punches []Punch
	for daysAgo := 0; daysAgo < 3; daysAgo++ {
		day := midnight.AddDate(0, 0, -daysAgo)
		for i := 1; i <= 5; i++ {
			userID := fmt.Sprintf("%03d", i)
			checkIn := day.Add(time.Duration(8+i%2)*time.Hour + time.Duration(30+(i*5)%30)*time.Minute)
			checkOut := day.Add(time.Duration(17+i%2)*time.Hour + time.Duration((i*7)%30)*time.Minute)

			punches = append(punches,
				Punch{UID: i, UserID: userID, Timestamp: checkIn, Status: 1, Punch: 0},
				Punch{UID: i, UserID: userID, Timestamp: checkOut, Status: 1, Punch: 1},
			)
		}
	}
	return punches, nil
}

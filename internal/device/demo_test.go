package device

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDemoClient_GetUsers(t *testing.T) {
	d := NewDemoClient()

	users, err := d.GetUsers(context.Background())
	assert.NoError(t, err)
	assert.Len(t, users, 5)
	assert.Equal(t, "001", users[0].UserID)
	assert.Equal(t, "Employee 001", users[0].Name)
	assert.Equal(t, "005", users[4].UserID)
}

func TestDemoClient_GetAttendanceLogs(t *testing.T) {
	d := NewDemoClient()
	d.Now = func() time.Time {
		return time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)
	}

	punches, err := d.GetAttendanceLogs(context.Background())
	assert.NoError(t, err)

	// 5 employees, 3 days, one check-in and one check-out each.
	assert.Len(t, punches, 30)

	byDay := map[string]int{}
	for _, p := range punches {
		byDay[p.Timestamp.Format("2006-01-02")]++
		assert.Contains(t, []int{0, 1}, p.Punch)
	}
	assert.Equal(t, map[string]int{
		"2024-03-04": 10,
		"2024-03-05": 10,
		"2024-03-06": 10,
	}, byDay)
}

func TestDemoClient_IsDeterministic(t *testing.T) {
	d := NewDemoClient()
	now := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)
	d.Now = func() time.Time { return now }

	first, err := d.GetAttendanceLogs(context.Background())
	assert.NoError(t, err)
	second, err := d.GetAttendanceLogs(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

package events

import "time"

const AttendanceSyncedTopic = "attendance.synced"

// AttendanceSyncedEvent is published once per sync batch that wrote rows.
type AttendanceSyncedEvent struct {
	DeviceIP  string    `json:"device_ip"`
	Written   int       `json:"written"`
	RecordIDs []string  `json:"record_ids"`
	SyncedAt  time.Time `json:"synced_at"`
}

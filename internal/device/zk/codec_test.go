package zk

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChecksum_MarshalValidates(t *testing.T) {
	p := packet{Command: cmdConnect, SessionID: 0, ReplyID: 1, Payload: []byte("abc")}
	buf := p.marshal()

	// Recomputing over the wire bytes with the checksum field zeroed must
	// reproduce the embedded checksum.
	want := binary.LittleEndian.Uint16(buf[2:4])
	cleared := append([]byte(nil), buf...)
	cleared[2], cleared[3] = 0, 0
	assert.Equal(t, want, checksum(cleared))
}

func TestPacket_Roundtrip(t *testing.T) {
	p := packet{Command: cmdAttLogRRQ, SessionID: 0x1234, ReplyID: 7, Payload: []byte{1, 2, 3}}
	got, err := unmarshalPacket(p.marshal())
	assert.NoError(t, err)
	assert.Equal(t, p.Command, got.Command)
	assert.Equal(t, p.SessionID, got.SessionID)
	assert.Equal(t, p.ReplyID, got.ReplyID)
	assert.Equal(t, p.Payload, got.Payload)
}

func TestUnmarshalPacket_Short(t *testing.T) {
	_, err := unmarshalPacket([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestTime_Roundtrip(t *testing.T) {
	for _, ts := range []time.Time{
		time.Date(2024, 3, 4, 8, 30, 15, 0, time.UTC),
		time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2031, 12, 31, 23, 59, 59, 0, time.UTC),
	} {
		got := decodeTime(encodeTime(ts), time.UTC)
		assert.True(t, got.Equal(ts), "want %v, got %v", ts, got)
	}
}

func make40ByteRecord(uid uint16, userID string, status byte, ts time.Time, punch byte) []byte {
	rec := make([]byte, 40)
	binary.LittleEndian.PutUint16(rec[0:2], uid)
	copy(rec[2:26], userID)
	rec[26] = status
	binary.LittleEndian.PutUint32(rec[27:31], encodeTime(ts))
	rec[31] = punch
	return rec
}

func TestParseAttendance_40ByteRecords(t *testing.T) {
	ts1 := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	ts2 := time.Date(2024, 3, 4, 17, 0, 0, 0, time.UTC)
	data := append(
		make40ByteRecord(1, "001", 1, ts1, 0),
		make40ByteRecord(2, "002", 1, ts2, 1)...,
	)

	punches, err := parseAttendance(data, time.UTC)
	assert.NoError(t, err)
	if assert.Len(t, punches, 2) {
		assert.Equal(t, "001", punches[0].UserID)
		assert.True(t, punches[0].Timestamp.Equal(ts1))
		assert.Equal(t, 0, punches[0].Punch)
		assert.Equal(t, "002", punches[1].UserID)
		assert.Equal(t, 1, punches[1].Punch)
	}
}

func TestParseAttendance_BadLength(t *testing.T) {
	_, err := parseAttendance(make([]byte, 13), time.UTC)
	assert.Error(t, err)
}

func TestParseAttendance_Empty(t *testing.T) {
	punches, err := parseAttendance(nil, time.UTC)
	assert.NoError(t, err)
	assert.Empty(t, punches)
}

func TestParseUsers_72ByteRecords(t *testing.T) {
	rec := make([]byte, 72)
	binary.LittleEndian.PutUint16(rec[0:2], 9)
	copy(rec[11:35], "Somchai Jaidee")
	copy(rec[48:72], "009")

	users, err := parseUsers(rec)
	assert.NoError(t, err)
	if assert.Len(t, users, 1) {
		assert.Equal(t, 9, users[0].UID)
		assert.Equal(t, "009", users[0].UserID)
		assert.Equal(t, "Somchai Jaidee", users[0].Name)
	}
}

func TestParseUsers_MissingUserIDFallsBackToUID(t *testing.T) {
	rec := make([]byte, 72)
	binary.LittleEndian.PutUint16(rec[0:2], 42)

	users, err := parseUsers(rec)
	assert.NoError(t, err)
	if assert.Len(t, users, 1) {
		assert.Equal(t, "42", users[0].UserID)
	}
}

func TestCString(t *testing.T) {
	assert.Equal(t, "abc", cstring([]byte{'a', 'b', 'c', 0, 'x'}))
	assert.Equal(t, "abc", cstring([]byte("abc   ")))
	assert.Equal(t, "", cstring([]byte{0}))
}

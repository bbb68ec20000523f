package zk

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

// Command words of the terminal's TCP protocol.
const (
	cmdConnect     uint16 = 1000
	cmdExit        uint16 = 1001
	cmdAuth        uint16 = 1102
	cmdGetVersion  uint16 = 1100
	cmdOptionsRRQ  uint16 = 11
	cmdUserTempRRQ uint16 = 9
	cmdAttLogRRQ   uint16 = 13

	cmdAckOK       uint16 = 2000
	cmdAckError    uint16 = 2001
	cmdAckData     uint16 = 2002
	cmdAckUnauth   uint16 = 2005
	cmdPrepareData uint16 = 1500
	cmdData        uint16 = 1501
	cmdFreeData    uint16 = 1502

	fctUser uint8 = 5
)

// tcpMagic prefixes every framed packet on the TCP transport.
var tcpMagic = []byte{0x50, 0x50, 0x82, 0x7d}

type packet struct {
	Command   uint16
	SessionID uint16
	ReplyID   uint16
	Payload   []byte
}

// checksum is the protocol's 16-bit ones'-complement sum over the packet
// with the checksum field zeroed.
func checksum(data []byte) uint16 {
	var sum uint32
	for len(data) >= 2 {
		sum += uint32(binary.LittleEndian.Uint16(data))
		data = data[2:]
	}
	if len(data) == 1 {
		sum += uint32(data[0])
	}
	for sum > 0xffff {
		sum = (sum & 0xffff) + (sum >> 16)
	}
	return ^uint16(sum) & 0xffff
}

func (p packet) marshal() []byte {
	buf := make([]byte, 8+len(p.Payload))
	binary.LittleEndian.PutUint16(buf[0:2], p.Command)
	binary.LittleEndian.PutUint16(buf[4:6], p.SessionID)
	binary.LittleEndian.PutUint16(buf[6:8], p.ReplyID)
	copy(buf[8:], p.Payload)
	binary.LittleEndian.PutUint16(buf[2:4], checksum(buf))
	return buf
}

func unmarshalPacket(buf []byte) (packet, error) {
	if len(buf) < 8 {
		return packet{}, fmt.Errorf("short packet: %d bytes", len(buf))
	}
	return packet{
		Command:   binary.LittleEndian.Uint16(buf[0:2]),
		SessionID: binary.LittleEndian.Uint16(buf[4:6]),
		ReplyID:   binary.LittleEndian.Uint16(buf[6:8]),
		Payload:   buf[8:],
	}, nil
}

// decodeTime unpacks the terminal's packed calendar format. The device has
// no timezone notion, so the result is placed in loc.
func decodeTime(v uint32, loc *time.Location) time.Time {
	second := int(v % 60)
	v /= 60
	minute := int(v % 60)
	v /= 60
	hour := int(v % 24)
	v /= 24
	day := int(v%31) + 1
	v /= 31
	month := time.Month(v%12) + 1
	v /= 12
	year := int(v) + 2000
	return time.Date(year, month, day, hour, minute, second, 0, loc)
}

func encodeTime(t time.Time) uint32 {
	return uint32(((t.Year()-2000)*12*31+(int(t.Month())-1)*31+t.Day()-1)*(24*60*60) +
		(t.Hour()*60+t.Minute())*60 + t.Second())
}

// rawPunch mirrors one fixed-size attendance slot before it is mapped to
// the exported device types.
type rawPunch struct {
	UID       int
	UserID    string
	Timestamp time.Time
	Status    int
	Punch     int
}

// parseAttendance splits an attendance dump into records. Terminals ship
// three record layouts (40, 16 and 8 bytes); the layout is inferred from
// the dump length.
func parseAttendance(data []byte, loc *time.Location) ([]rawPunch, error) {
	if len(data) == 0 {
		return nil, nil
	}
	size := recordSize(len(data), 40, 16, 8)
	if size == 0 {
		return nil, fmt.Errorf("attendance dump of %d bytes matches no known record size", len(data))
	}

	punches := make([]rawPunch, 0, len(data)/size)
	for off := 0; off+size <= len(data); off += size {
		rec := data[off : off+size]
		var p rawPunch
		switch size {
		case 40:
			p.UID = int(binary.LittleEndian.Uint16(rec[0:2]))
			p.UserID = cstring(rec[2:26])
			p.Status = int(rec[26])
			p.Timestamp = decodeTime(binary.LittleEndian.Uint32(rec[27:31]), loc)
			p.Punch = int(rec[31])
		case 16:
			uid := binary.LittleEndian.Uint32(rec[0:4])
			p.UID = int(uid)
			p.UserID = fmt.Sprintf("%d", uid)
			p.Timestamp = decodeTime(binary.LittleEndian.Uint32(rec[4:8]), loc)
			p.Status = int(rec[8])
			p.Punch = int(rec[9])
		case 8:
			uid := binary.LittleEndian.Uint16(rec[0:2])
			p.UID = int(uid)
			p.UserID = fmt.Sprintf("%d", uid)
			p.Status = int(rec[2])
			p.Timestamp = decodeTime(binary.LittleEndian.Uint32(rec[3:7]), loc)
			p.Punch = int(rec[7])
		}
		punches = append(punches, p)
	}
	return punches, nil
}

type rawUser struct {
	UID    int
	UserID string
	Name   string
}

// parseUsers splits an enrollment directory dump (72- or 28-byte slots).
func parseUsers(data []byte) ([]rawUser, error) {
	if len(data) == 0 {
		return nil, nil
	}
	size := recordSize(len(data), 72, 28)
	if size == 0 {
		return nil, fmt.Errorf("user dump of %d bytes matches no known record size", len(data))
	}

	users := make([]rawUser, 0, len(data)/size)
	for off := 0; off+size <= len(data); off += size {
		rec := data[off : off+size]
		var u rawUser
		switch size {
		case 72:
			u.UID = int(binary.LittleEndian.Uint16(rec[0:2]))
			u.Name = cstring(rec[11:35])
			u.UserID = cstring(rec[48:72])
			if u.UserID == "" {
				u.UserID = fmt.Sprintf("%d", u.UID)
			}
		case 28:
			u.UID = int(binary.LittleEndian.Uint16(rec[0:2]))
			u.Name = cstring(rec[8:16])
			u.UserID = fmt.Sprintf("%d", binary.LittleEndian.Uint32(rec[24:28]))
		}
		if u.Name == "" {
			u.Name = u.UserID
		}
		users = append(users, u)
	}
	return users, nil
}

// recordSize picks the first candidate that evenly divides the dump.
func recordSize(total int, candidates ...int) int {
	if total == 0 {
		return 0
	}
	for _, c := range candidates {
		if total%c == 0 {
			return c
		}
	}
	return 0
}

func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(bytes.TrimRight(b, " "))
}

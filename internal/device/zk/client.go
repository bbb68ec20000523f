// Package zk speaks the attendance terminal's TCP command protocol: framed
// request/ack exchanges plus a chunked bulk-read path for log and user
// dumps. Only the read-side commands the sync needs are implemented.
package zk

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/MySundayS/employee-lita/internal/device"

	"go.uber.org/zap"
)

type Client struct {
	addr    string
	timeout time.Duration
	loc     *time.Location
	logger  *zap.Logger

	conn      net.Conn
	sessionID uint16
	replyID   uint16
}

var _ device.Client = (*Client)(nil)

func NewClient(ip string, port int, timeout time.Duration) *Client {
	return &Client{
		addr:    fmt.Sprintf("%s:%d", ip, port),
		timeout: timeout,
		loc:     time.Local,
		logger:  zap.L().Named("device.zk"),
	}
}

func (c *Client) Connect(ctx context.Context) error {
	d := net.Dialer{Timeout: c.timeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %v", device.ErrConnection, c.addr, err)
	}
	c.conn = conn
	c.sessionID = 0
	c.replyID = 0

	resp, err := c.exchange(packet{Command: cmdConnect})
	if err != nil {
		conn.Close()
		c.conn = nil
		return err
	}
	if resp.Command == cmdAckUnauth {
		conn.Close()
		c.conn = nil
		return fmt.Errorf("%w: terminal requires a comm key, which this client does not support", device.ErrConnection)
	}
	if resp.Command != cmdAckOK {
		conn.Close()
		c.conn = nil
		return fmt.Errorf("%w: connect rejected with command %d", device.ErrConnection, resp.Command)
	}

	// The connect ack carries the session id for every later exchange.
	c.sessionID = resp.SessionID
	c.logger.Debug("session opened", zap.String("addr", c.addr), zap.Uint16("session", c.sessionID))
	return nil
}

func (c *Client) Disconnect() error {
	if c.conn == nil {
		return nil
	}
	_, err := c.exchange(packet{Command: cmdExit, SessionID: c.sessionID})
	closeErr := c.conn.Close()
	c.conn = nil
	if err != nil {
		return err
	}
	return closeErr
}

func (c *Client) Info(ctx context.Context) (device.Info, error) {
	fw, err := c.commandString(ctx, cmdGetVersion, nil)
	if err != nil {
		return device.Info{}, err
	}
	name, err := c.option(ctx, "~DeviceName")
	if err != nil {
		return device.Info{}, err
	}
	return device.Info{DeviceName: name, FirmwareVersion: fw}, nil
}

func (c *Client) GetAttendanceLogs(ctx context.Context) ([]device.Punch, error) {
	data, err := c.readBulk(ctx, cmdAttLogRRQ, nil)
	if err != nil {
		return nil, err
	}
	raw, err := parseAttendance(data, c.loc)
	if err != nil {
		return nil, err
	}
	punches := make([]device.Punch, len(raw))
	for i, r := range raw {
		punches[i] = device.Punch{
			UID:       r.UID,
			UserID:    r.UserID,
			Timestamp: r.Timestamp,
			Status:    r.Status,
			Punch:     r.Punch,
		}
	}
	return punches, nil
}

func (c *Client) GetUsers(ctx context.Context) ([]device.User, error) {
	data, err := c.readBulk(ctx, cmdUserTempRRQ, []byte{fctUser})
	if err != nil {
		return nil, err
	}
	raw, err := parseUsers(data)
	if err != nil {
		return nil, err
	}
	users := make([]device.User, len(raw))
	for i, r := range raw {
		users[i] = device.User{UID: r.UID, UserID: r.UserID, Name: r.Name}
	}
	return users, nil
}

// option reads one key from the terminal's options table ("key=value").
func (c *Client) option(ctx context.Context, key string) (string, error) {
	val, err := c.commandString(ctx, cmdOptionsRRQ, append([]byte(key), 0))
	if err != nil {
		return "", err
	}
	if _, v, ok := strings.Cut(val, "="); ok {
		return v, nil
	}
	return val, nil
}

func (c *Client) commandString(ctx context.Context, cmd uint16, payload []byte) (string, error) {
	resp, err := c.exchangeCtx(ctx, packet{Command: cmd, SessionID: c.sessionID, Payload: payload})
	if err != nil {
		return "", err
	}
	if resp.Command != cmdAckOK {
		return "", fmt.Errorf("%w: command %d rejected with %d", device.ErrConnection, cmd, resp.Command)
	}
	return cstring(resp.Payload), nil
}

// readBulk runs one command expecting either an inline ack payload or the
// prepare/data/free chunked dump the terminal uses for large reads.
func (c *Client) readBulk(ctx context.Context, cmd uint16, payload []byte) ([]byte, error) {
	resp, err := c.exchangeCtx(ctx, packet{Command: cmd, SessionID: c.sessionID, Payload: payload})
	if err != nil {
		return nil, err
	}

	switch resp.Command {
	case cmdAckOK, cmdAckData:
		return resp.Payload, nil
	case cmdPrepareData:
		// fall through to chunked receive below
	default:
		return nil, fmt.Errorf("%w: bulk read %d rejected with %d", device.ErrConnection, cmd, resp.Command)
	}

	if len(resp.Payload) < 4 {
		return nil, fmt.Errorf("%w: prepare-data without size", device.ErrConnection)
	}
	total := int(binary.LittleEndian.Uint32(resp.Payload[:4]))

	data := make([]byte, 0, total)
	for len(data) < total {
		chunk, err := c.receive()
		if err != nil {
			return nil, err
		}
		switch chunk.Command {
		case cmdData:
			data = append(data, chunk.Payload...)
		case cmdAckOK:
			// Early OK means the dump was shorter than announced.
			return data, c.freeData()
		default:
			return nil, fmt.Errorf("%w: unexpected command %d during dump", device.ErrConnection, chunk.Command)
		}
	}

	// Final ack closes the dump; some firmwares skip it.
	if ack, err := c.receive(); err == nil && ack.Command != cmdAckOK {
		c.logger.Debug("dump ended without ack", zap.Uint16("command", ack.Command))
	}
	if err := c.freeData(); err != nil {
		return nil, err
	}
	if len(data) > total {
		data = data[:total]
	}
	return data, nil
}

func (c *Client) freeData() error {
	_, err := c.exchange(packet{Command: cmdFreeData, SessionID: c.sessionID})
	return err
}

func (c *Client) exchangeCtx(ctx context.Context, p packet) (packet, error) {
	if err := ctx.Err(); err != nil {
		return packet{}, err
	}
	return c.exchange(p)
}

func (c *Client) exchange(p packet) (packet, error) {
	if c.conn == nil {
		return packet{}, fmt.Errorf("%w: not connected", device.ErrConnection)
	}
	c.replyID++
	p.ReplyID = c.replyID

	deadline := time.Now().Add(c.timeout)
	if err := c.conn.SetDeadline(deadline); err != nil {
		return packet{}, fmt.Errorf("%w: %v", device.ErrConnection, err)
	}

	if err := c.send(p); err != nil {
		return packet{}, err
	}
	return c.receive()
}

func (c *Client) send(p packet) error {
	body := p.marshal()
	frame := make([]byte, 0, 8+len(body))
	frame = append(frame, tcpMagic...)
	frame = binary.LittleEndian.AppendUint32(frame, uint32(len(body)))
	frame = append(frame, body...)

	if _, err := c.conn.Write(frame); err != nil {
		return fmt.Errorf("%w: write: %v", device.ErrConnection, err)
	}
	return nil
}

func (c *Client) receive() (packet, error) {
	header := make([]byte, 8)
	if _, err := io.ReadFull(c.conn, header); err != nil {
		return packet{}, fmt.Errorf("%w: read header: %v", device.ErrConnection, err)
	}
	if string(header[:4]) != string(tcpMagic) {
		return packet{}, fmt.Errorf("%w: bad frame magic", device.ErrConnection)
	}
	size := binary.LittleEndian.Uint32(header[4:8])
	if size < 8 || size > 16<<20 {
		return packet{}, fmt.Errorf("%w: implausible frame size %d", device.ErrConnection, size)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(c.conn, body); err != nil {
		return packet{}, fmt.Errorf("%w: read body: %v", device.ErrConnection, err)
	}
	return unmarshalPacket(body)
}

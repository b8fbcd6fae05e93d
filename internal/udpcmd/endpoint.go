// Package udpcmd implements the UDP command endpoint: a bound datagram
// listener with bounded-wait polling that decodes one
// datagram into a typed Command, binding with net.ListenUDP/ReadFromUDP
// and a read deadline per poll.
package udpcmd

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/diffstorm/processWatchdog/internal/logx"
)

// MaxAppCmdLength bounds a decoded command payload; the wire datagram itself
// is capped at 255 bytes.
const MaxAppCmdLength = 256

// CmdType tags a decoded command.
type CmdType int

const (
	// CmdHeartbeat: a child reported its own PID as a liveness signal.
	CmdHeartbeat CmdType = iota
	// CmdStartApp, CmdStopApp, CmdRestartApp are reserved wire vocabulary:
	// the parser recognises them but the supervisor loop does not act on
	// them.
	CmdStartApp
	CmdStopApp
	CmdRestartApp
	// CmdUnknown: empty datagram, first byte not in {p,a,o,r}, or a
	// heartbeat whose PID failed to validate. Logged by decode and discarded
	// by the caller.
	CmdUnknown
)

// Command is the decoded form of one datagram.
type Command struct {
	Type CmdType
	PID  int    // valid only when Type == CmdHeartbeat
	Name string // app name payload for the reserved a/o/r verbs
}

// Endpoint is a bound UDP socket with bounded-wait polling.
type Endpoint struct {
	conn *net.UDPConn
}

// Listen binds 0.0.0.0:port. A single supervisor process
// owns this port for its whole lifetime; a rebind race only matters across
// a fast restart, which the surrounding relaunch script already serializes,
// so no SO_REUSEADDR plumbing beyond net.ListenUDP's defaults is needed.
func Listen(port int) (*Endpoint, error) {
	addr := &net.UDPAddr{IP: net.IPv4zero, Port: port}
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("udpcmd: bind :%d: %w", port, err)
	}
	return &Endpoint{conn: conn}, nil
}

// Poll waits up to timeout for a single datagram. A nil Command with a nil
// error means no datagram arrived — that is not an error. Any non-timeout
// error is fatal to the endpoint; the caller must terminate the loop with
// exit code 2.
func (e *Endpoint) Poll(timeout time.Duration) (*Command, error) {
	buf := make([]byte, MaxAppCmdLength)
	if err := e.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}
	n, _, err := e.conn.ReadFromUDP(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, nil
		}
		return nil, err
	}
	if n > MaxAppCmdLength-1 {
		n = MaxAppCmdLength - 1
	}
	return decode(buf[:n]), nil
}

// Close releases the socket.
func (e *Endpoint) Close() error {
	return e.conn.Close()
}

func decode(data []byte) *Command {
	if len(data) == 0 {
		logInvalid(data)
		return &Command{Type: CmdUnknown}
	}

	switch data[0] {
	case 'p':
		pid, ok := parsePID(data[1:])
		if !ok {
			logInvalid(data)
			return &Command{Type: CmdUnknown}
		}
		return &Command{Type: CmdHeartbeat, PID: pid}
	case 'a':
		return &Command{Type: CmdStartApp, Name: trimPayload(data[1:])}
	case 'o':
		return &Command{Type: CmdStopApp, Name: trimPayload(data[1:])}
	case 'r':
		return &Command{Type: CmdRestartApp, Name: trimPayload(data[1:])}
	default:
		logInvalid(data)
		return &Command{Type: CmdUnknown}
	}
}

func trimPayload(b []byte) string {
	return strings.TrimRight(string(b), "\x00 \t\r\n")
}

// parsePID validates the decimal PID after trailing NUL/whitespace is
// trimmed: digits only (no sign, no inner or leading whitespace), integer
// strictly in (0, INT32_MAX).
func parsePID(b []byte) (int, bool) {
	s := trimPayload(b)
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	if n <= 0 || n >= int64(1<<31-1) {
		return 0, false
	}
	return int(n), true
}

func logInvalid(data []byte) {
	hex := fmt.Sprintf("%x", data)
	printable := make([]byte, len(data))
	for i, b := range data {
		if b >= 0x20 && b < 0x7f {
			printable[i] = b
		} else {
			printable[i] = '.'
		}
	}
	logx.Warn("udp", "discarding invalid datagram: hex=%s printable=%q", hex, string(printable))
}

package antivirus

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// chunkSize stays well under clamd's default StreamMaxLength.
const chunkSize = 64 << 10

// ClamAVScanner streams files to a clamd daemon with the INSTREAM command.
type ClamAVScanner struct {
	address string // host:port, or a unix socket path
	timeout time.Duration
}

var _ Scanner = (*ClamAVScanner)(nil)

func NewClamAVScanner(address string, timeout time.Duration) *ClamAVScanner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ClamAVScanner{address: address, timeout: timeout}
}

func (c *ClamAVScanner) Name() string {
	return "clamav"
}

func (c *ClamAVScanner) dial(ctx context.Context, timeout time.Duration) (net.Conn, error) {
	network := "tcp"
	if strings.HasPrefix(c.address, "/") {
		network = "unix"
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, network, c.address)
	if err != nil {
		return nil, err
	}
	deadline := time.Now().Add(timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	_ = conn.SetDeadline(deadline)
	return conn, nil
}

// Available sends PING and expects PONG.
func (c *ClamAVScanner) Available(ctx context.Context) bool {
	conn, err := c.dial(ctx, 5*time.Second)
	if err != nil {
		return false
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("zPING\x00")); err != nil {
		return false
	}
	reply, err := bufio.NewReader(conn).ReadString(0)
	if err != nil && err != io.EOF {
		return false
	}
	return strings.HasPrefix(reply, "PONG")
}

func (c *ClamAVScanner) Scan(ctx context.Context, filename string, data io.Reader) ScanResult {
	result := ScanResult{ScannerName: c.Name()}
	fail := func(format string, err error) ScanResult {
		result.Infected = true
		result.Error = fmt.Errorf(format, err)
		return result
	}

	conn, err := c.dial(ctx, c.timeout)
	if err != nil {
		return fail("connect to clamd: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("zINSTREAM\x00")); err != nil {
		return fail("send command: %w", err)
	}

	buf := make([]byte, chunkSize)
	size := make([]byte, 4)
	for {
		n, rerr := data.Read(buf)
		if n > 0 {
			binary.BigEndian.PutUint32(size, uint32(n))
			if _, err := conn.Write(size); err != nil {
				return fail("send chunk size: %w", err)
			}
			if _, err := conn.Write(buf[:n]); err != nil {
				return fail("send chunk: %w", err)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return fail("read upload: %w", rerr)
		}
	}
	// zero-length chunk terminates the stream
	binary.BigEndian.PutUint32(size, 0)
	if _, err := conn.Write(size); err != nil {
		return fail("send terminator: %w", err)
	}

	reply, err := bufio.NewReader(conn).ReadString(0)
	if err != nil && err != io.EOF {
		return fail("read reply: %w", err)
	}
	return parseReply(result, reply)
}

// parseReply interprets "stream: OK", "stream: <name> FOUND" and "... ERROR".
func parseReply(result ScanResult, reply string) ScanResult {
	reply = strings.TrimSpace(strings.TrimRight(reply, "\x00"))
	switch {
	case strings.HasSuffix(reply, "FOUND"):
		result.Infected = true
		threat := reply
		if _, after, ok := strings.Cut(reply, ":"); ok {
			threat = after
		}
		result.ThreatName = strings.TrimSpace(strings.TrimSuffix(threat, "FOUND"))
	case strings.HasSuffix(reply, "OK"):
	default:
		result.Infected = true
		result.Error = fmt.Errorf("clamd: %s", reply)
	}
	return result
}

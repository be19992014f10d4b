// Package smtpprobe runs a single partial SMTP dialogue (banner, EHLO,
// MAIL FROM, RCPT TO) against a mail exchanger and reports the RCPT reply.
// No message body is ever sent and connections are never reused.
package smtpprobe

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Dialer opens the TCP connection to a mail exchanger.
type Dialer func(ctx context.Context, network, address string) (net.Conn, error)

// Config configures a probe session.
type Config struct {
	HeloDomain     string
	MailFrom       string
	ConnectTimeout time.Duration
	CommandTimeout time.Duration // deadline for the whole dialogue after connect
	Port           string
	// Dial is injectable for testing. Defaults to a net.Dialer.
	Dial Dialer
}

// Reply is an SMTP server reply.
type Reply struct {
	Code    int
	Message string
}

// Prober issues probe sessions. It holds no connection state and is safe
// for concurrent use.
type Prober struct {
	cfg Config
}

// New creates a Prober.
func New(cfg Config) *Prober {
	if cfg.Dial == nil {
		d := &net.Dialer{}
		cfg.Dial = d.DialContext
	}
	if cfg.Port == "" {
		cfg.Port = "25"
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = 10 * time.Second
	}
	return &Prober{cfg: cfg}
}

type conn struct {
	netConn net.Conn
	reader  *bufio.Reader
	writer  *bufio.Writer
}

// Probe connects to mxHost, runs the dialogue up to RCPT TO for rcpt and
// returns the RCPT reply. A non-nil error means the dialogue did not reach
// the RCPT reply. The connection is closed on every path.
func (p *Prober) Probe(ctx context.Context, mxHost, rcpt string) (reply Reply, err error) {
	c, err := p.dial(ctx, mxHost)
	if err != nil {
		return Reply{}, err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("smtpprobe: panic during session: %v", r)
		}
		_ = c.netConn.Close()
	}()

	deadline := time.Now().Add(p.cfg.CommandTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.netConn.SetDeadline(deadline); err != nil {
		return Reply{}, fmt.Errorf("set deadline: %w", err)
	}

	reply, err = p.dialogue(c, rcpt)
	if err != nil {
		return Reply{}, err
	}
	sendQuit(c)
	return reply, nil
}

// dial creates a new TCP connection to the MX host.
func (p *Prober) dial(ctx context.Context, mxHost string) (*conn, error) {
	address := net.JoinHostPort(mxHost, p.cfg.Port)

	dialCtx, cancel := context.WithTimeout(ctx, p.cfg.ConnectTimeout)
	defer cancel()

	netConn, err := p.cfg.Dial(dialCtx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", address, err)
	}

	return &conn{
		netConn: netConn,
		reader:  bufio.NewReader(netConn),
		writer:  bufio.NewWriter(netConn),
	}, nil
}

// dialogue performs banner, greeting and envelope commands on a fresh connection.
func (p *Prober) dialogue(c *conn, rcpt string) (Reply, error) {
	banner, err := readResponse(c.reader)
	if err != nil {
		return Reply{}, fmt.Errorf("read banner: %w", err)
	}
	if banner.Code != 220 {
		return Reply{}, fmt.Errorf("server rejected connection: %d %s", banner.Code, banner.Message)
	}

	if err := p.greet(c); err != nil {
		return Reply{}, err
	}

	r, err := command(c, fmt.Sprintf("MAIL FROM:<%s>\r\n", p.cfg.MailFrom))
	if err != nil {
		return Reply{}, fmt.Errorf("MAIL FROM failed: %w", err)
	}
	if r.Code != 250 {
		return Reply{}, fmt.Errorf("MAIL FROM rejected: %d %s", r.Code, r.Message)
	}

	r, err = command(c, fmt.Sprintf("RCPT TO:<%s>\r\n", rcpt))
	if err != nil {
		return Reply{}, fmt.Errorf("RCPT TO failed: %w", err)
	}
	return r, nil
}

// greet sends EHLO and falls back to HELO when the server rejects it with
// a permanent error.
func (p *Prober) greet(c *conn) error {
	r, err := command(c, fmt.Sprintf("EHLO %s\r\n", p.cfg.HeloDomain))
	if err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if r.Code == 250 {
		return nil
	}
	if r.Code < 500 {
		return fmt.Errorf("EHLO rejected: %d %s", r.Code, r.Message)
	}

	r, err = command(c, fmt.Sprintf("HELO %s\r\n", p.cfg.HeloDomain))
	if err != nil {
		return fmt.Errorf("HELO failed: %w", err)
	}
	if r.Code != 250 {
		return fmt.Errorf("HELO rejected: %d %s", r.Code, r.Message)
	}
	return nil
}

// command sends an SMTP command and reads the response.
func command(c *conn, cmd string) (Reply, error) {
	if _, err := c.writer.WriteString(cmd); err != nil {
		return Reply{}, err
	}
	if err := c.writer.Flush(); err != nil {
		return Reply{}, err
	}
	return readResponse(c.reader)
}

// sendQuit sends a QUIT command (best-effort, ignores errors).
func sendQuit(c *conn) {
	_ = c.netConn.SetDeadline(time.Now().Add(2 * time.Second))
	_, _ = c.writer.WriteString("QUIT\r\n")
	_ = c.writer.Flush()
}

// readResponse reads a (possibly multi-line) SMTP response.
func readResponse(r *bufio.Reader) (Reply, error) {
	var lines []string
	for {
		line, readErr := r.ReadString('\n')
		if readErr != nil {
			return Reply{}, fmt.Errorf("read SMTP response: %w", readErr)
		}
		line = strings.TrimRight(line, "\r\n")
		if len(line) < 3 {
			return Reply{}, errors.New("SMTP response line too short")
		}
		lines = append(lines, line)
		// If the 4th character is not '-', this is the last line
		if len(line) < 4 || line[3] != '-' {
			break
		}
	}

	lastLine := lines[len(lines)-1]
	code, err := strconv.Atoi(lastLine[:3])
	if err != nil {
		return Reply{}, fmt.Errorf("invalid SMTP response code %q: %w", lastLine[:3], err)
	}
	return Reply{Code: code, Message: strings.Join(lines, " | ")}, nil
}

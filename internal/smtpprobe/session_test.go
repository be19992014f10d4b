package smtpprobe_test

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optimode/mailverify/internal/smtpprobe"
)

// mockSMTPServer simulates an SMTP server on a net.Pipe connection and
// records every command it receives.
type mockSMTPServer struct {
	banner    string
	responses map[string]string

	mu       sync.Mutex
	commands []string
}

func (m *mockSMTPServer) serve(server net.Conn) {
	defer func() { _ = server.Close() }()

	_, _ = fmt.Fprintf(server, "%s\r\n", m.banner)

	buf := make([]byte, 4096)
	for {
		n, err := server.Read(buf)
		if err != nil {
			return
		}
		cmd := string(buf[:n])

		m.mu.Lock()
		m.commands = append(m.commands, strings.TrimRight(cmd, "\r\n"))
		m.mu.Unlock()

		if strings.HasPrefix(cmd, "QUIT") {
			_, _ = fmt.Fprintf(server, "221 Bye\r\n")
			return
		}

		for prefix, resp := range m.responses {
			if strings.HasPrefix(cmd, prefix) {
				_, _ = fmt.Fprintf(server, "%s\r\n", resp)
				break
			}
		}
	}
}

func (m *mockSMTPServer) seen() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.commands...)
}

func newProber(m *mockSMTPServer, dialed *[]string, closed chan<- struct{}) *smtpprobe.Prober {
	return smtpprobe.New(smtpprobe.Config{
		HeloDomain:     "test.com",
		MailFrom:       "test@test.com",
		ConnectTimeout: time.Second,
		CommandTimeout: time.Second,
		Port:           "25",
		Dial: func(_ context.Context, network, address string) (net.Conn, error) {
			if dialed != nil {
				*dialed = append(*dialed, address)
			}
			client, server := net.Pipe()
			go func() {
				m.serve(server)
				if closed != nil {
					close(closed)
				}
			}()
			return client, nil
		},
	})
}

func TestProber_Accepted(t *testing.T) {
	m := &mockSMTPServer{
		banner: "220 mock.smtp ESMTP",
		responses: map[string]string{
			"EHLO":      "250-mock.smtp\r\n250 SIZE 1000",
			"MAIL FROM": "250 OK",
			"RCPT TO":   "250 OK",
		},
	}
	var dialed []string
	p := newProber(m, &dialed, nil)

	reply, err := p.Probe(context.Background(), "mx.example.com", "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, 250, reply.Code)
	assert.Equal(t, []string{"mx.example.com:25"}, dialed)

	cmds := m.seen()
	require.GreaterOrEqual(t, len(cmds), 3)
	assert.Equal(t, "EHLO test.com", cmds[0])
	assert.Equal(t, "MAIL FROM:<test@test.com>", cmds[1])
	assert.Equal(t, "RCPT TO:<user@example.com>", cmds[2])
	for _, c := range cmds {
		assert.NotEqual(t, "DATA", c, "probe must never send a message body")
	}
}

func TestProber_RejectedRCPT(t *testing.T) {
	m := &mockSMTPServer{
		banner: "220 mock.smtp ESMTP",
		responses: map[string]string{
			"EHLO":      "250 OK",
			"MAIL FROM": "250 OK",
			"RCPT TO":   "550 User not found",
		},
	}
	p := newProber(m, nil, nil)

	reply, err := p.Probe(context.Background(), "mx.example.com", "nobody@example.com")
	require.NoError(t, err)
	assert.Equal(t, 550, reply.Code)
	assert.Contains(t, reply.Message, "User not found")
}

func TestProber_HeloFallback(t *testing.T) {
	m := &mockSMTPServer{
		banner: "220 old.smtp",
		responses: map[string]string{
			"EHLO":      "502 Command not implemented",
			"HELO":      "250 old.smtp",
			"MAIL FROM": "250 OK",
			"RCPT TO":   "250 OK",
		},
	}
	p := newProber(m, nil, nil)

	reply, err := p.Probe(context.Background(), "mx.example.com", "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, 250, reply.Code)
	assert.Equal(t, "HELO test.com", m.seen()[1])
}

func TestProber_BannerRejected(t *testing.T) {
	m := &mockSMTPServer{banner: "554 go away"}
	closed := make(chan struct{})
	p := newProber(m, nil, closed)

	_, err := p.Probe(context.Background(), "mx.example.com", "user@example.com")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rejected connection")

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("connection was not closed")
	}
}

func TestProber_MailFromRejected(t *testing.T) {
	m := &mockSMTPServer{
		banner: "220 mock.smtp ESMTP",
		responses: map[string]string{
			"EHLO":      "250 OK",
			"MAIL FROM": "553 sender refused",
		},
	}
	p := newProber(m, nil, nil)

	_, err := p.Probe(context.Background(), "mx.example.com", "user@example.com")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "MAIL FROM rejected")
}

func TestProber_SilentServerTimesOut(t *testing.T) {
	m := &mockSMTPServer{
		banner:    "220 mock.smtp ESMTP",
		responses: map[string]string{},
	}
	p := smtpprobe.New(smtpprobe.Config{
		HeloDomain:     "test.com",
		MailFrom:       "test@test.com",
		CommandTimeout: 50 * time.Millisecond,
		Dial: func(_ context.Context, network, address string) (net.Conn, error) {
			client, server := net.Pipe()
			go m.serve(server)
			return client, nil
		},
	})

	start := time.Now()
	_, err := p.Probe(context.Background(), "mx.example.com", "user@example.com")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestProber_ConnectionError(t *testing.T) {
	p := smtpprobe.New(smtpprobe.Config{
		HeloDomain: "test.com",
		MailFrom:   "test@test.com",
		Dial: func(_ context.Context, network, address string) (net.Conn, error) {
			return nil, fmt.Errorf("connection refused")
		},
	})

	_, err := p.Probe(context.Background(), "mx.example.com", "user@example.com")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "connect to mx.example.com:25")
}

func TestProber_NewSessionPerProbe(t *testing.T) {
	m := &mockSMTPServer{
		banner: "220 mock.smtp ESMTP",
		responses: map[string]string{
			"EHLO": "250 OK", "MAIL FROM": "250 OK", "RCPT TO": "250 OK",
		},
	}
	var dialed []string
	p := newProber(m, &dialed, nil)

	_, err := p.Probe(context.Background(), "mx.example.com", "user1@example.com")
	require.NoError(t, err)
	_, err = p.Probe(context.Background(), "mx.example.com", "user2@example.com")
	require.NoError(t, err)

	assert.Len(t, dialed, 2)
}

package mailverify

import "time"

// DNSOptions configures the domain resolution stage.
type DNSOptions struct {
	// Timeout is the maximum time for MX lookup. Default: 5s
	Timeout time.Duration
}

func defaultDNSOptions() DNSOptions {
	return DNSOptions{
		Timeout: 5 * time.Second,
	}
}

// SMTPOptions configures the mailbox probe stage.
type SMTPOptions struct {
	// HeloDomain is the domain sent in the EHLO/HELO command. Required, e.g. "myapp.com"
	HeloDomain string
	// MailFrom is the address sent in the MAIL FROM command. Required, e.g. "verify@myapp.com"
	MailFrom string
	// ConnectTimeout is the maximum time for TCP connection. Default: 10s
	ConnectTimeout time.Duration
	// CommandTimeout bounds the dialogue after connecting. Default: 10s
	CommandTimeout time.Duration
	// Port is the SMTP port. Default: 25
	Port string
}

func defaultSMTPOptions() SMTPOptions {
	return SMTPOptions{
		HeloDomain:     "test.com",
		MailFrom:       "test@test.com",
		ConnectTimeout: 10 * time.Second,
		CommandTimeout: 10 * time.Second,
		Port:           "25",
	}
}

// BulkOptions configures the bulk validation engine.
type BulkOptions struct {
	// Workers is the number of concurrent validations within a chunk. Default: 5
	Workers int
	// AttemptDelay is slept before every validation attempt. Default: 100ms
	AttemptDelay time.Duration
	// ChunkPause is slept between chunks. Default: 500ms
	ChunkPause time.Duration
	// Observer receives progress and failure notifications. Default: NopObserver
	Observer Observer
}

// DefaultBulkOptions returns the pacing used when none is configured.
func DefaultBulkOptions() BulkOptions {
	return BulkOptions{
		Workers:      5,
		AttemptDelay: 100 * time.Millisecond,
		ChunkPause:   500 * time.Millisecond,
		Observer:     NopObserver{},
	}
}

// DefaultChunkSize is the chunking policy for n addresses:
// chunks of 100 above 1000 addresses, otherwise a single chunk.
func DefaultChunkSize(n int) int {
	if n > 1000 {
		return 100
	}
	return n
}

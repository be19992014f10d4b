package check_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/optimode/mailverify/check"
)

func TestDomainResolver_WithMockLookup(t *testing.T) {
	tests := []struct {
		name       string
		records    []*net.MX
		lookErr    error
		wantOK     bool
		wantDetail string
	}{
		{
			name:       "has MX records",
			records:    []*net.MX{{Host: "mx.example.com.", Pref: 10}},
			wantOK:     true,
			wantDetail: "mx.example.com",
		},
		{
			name:       "no MX records",
			records:    []*net.MX{},
			wantOK:     false,
			wantDetail: check.ReasonNoMX,
		},
		{
			name:       "null MX",
			records:    []*net.MX{{Host: ".", Pref: 0}},
			wantOK:     false,
			wantDetail: check.ReasonNoMX,
		},
		{
			name:       "not found",
			lookErr:    &net.DNSError{Err: "no such host", Name: "example.com", IsNotFound: true},
			wantOK:     false,
			wantDetail: check.ReasonNoMX,
		},
		{
			name:       "timeout",
			lookErr:    &net.DNSError{Err: "i/o timeout", Name: "example.com", IsTimeout: true},
			wantOK:     false,
			wantDetail: check.ReasonDNSTimeout,
		},
		{
			name:       "deadline exceeded",
			lookErr:    context.DeadlineExceeded,
			wantOK:     false,
			wantDetail: check.ReasonDNSTimeout,
		},
		{
			name:       "server failure",
			lookErr:    errors.New("server misbehaving"),
			wantOK:     false,
			wantDetail: "DNS lookup failed: server misbehaving",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := check.DNSConfig{Timeout: 2 * time.Second}
			c := check.NewDomainResolverWithLookup(cfg, func(_ context.Context, domain string) ([]*net.MX, error) {
				return tt.records, tt.lookErr
			})
			ok, detail := c.Resolve(context.Background(), "example.com")
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantDetail, detail)
		})
	}
}

func TestDomainResolver_SortsByPreference(t *testing.T) {
	cfg := check.DNSConfig{Timeout: 2 * time.Second}
	c := check.NewDomainResolverWithLookup(cfg, func(_ context.Context, domain string) ([]*net.MX, error) {
		return []*net.MX{
			{Host: "mx2.example.com.", Pref: 20},
			{Host: "mx1.example.com.", Pref: 10},
		}, nil
	})
	ok, host := c.Resolve(context.Background(), "example.com")
	assert.True(t, ok)
	assert.Equal(t, "mx1.example.com", host)
}

func TestDomainResolver_NormalizesBeforeLookup(t *testing.T) {
	var queried string
	cfg := check.DNSConfig{Timeout: 2 * time.Second}
	c := check.NewDomainResolverWithLookup(cfg, func(_ context.Context, domain string) ([]*net.MX, error) {
		queried = domain
		return []*net.MX{{Host: "mx.example.com.", Pref: 10}}, nil
	})
	ok, _ := c.Resolve(context.Background(), "Example.COM")
	assert.True(t, ok)
	assert.Equal(t, "example.com", queried)
}

func TestDomainResolver_InvalidLabelSkipsLookup(t *testing.T) {
	called := false
	cfg := check.DNSConfig{Timeout: 2 * time.Second}
	c := check.NewDomainResolverWithLookup(cfg, func(_ context.Context, domain string) ([]*net.MX, error) {
		called = true
		return nil, nil
	})
	ok, reason := c.Resolve(context.Background(), "-example.com")
	assert.False(t, ok)
	assert.Contains(t, reason, "Invalid domain")
	assert.False(t, called)
}

func TestDomainResolver_AppliesTimeout(t *testing.T) {
	cfg := check.DNSConfig{Timeout: 20 * time.Millisecond}
	c := check.NewDomainResolverWithLookup(cfg, func(ctx context.Context, domain string) ([]*net.MX, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	start := time.Now()
	ok, reason := c.Resolve(context.Background(), "example.com")
	assert.False(t, ok)
	assert.Equal(t, check.ReasonDNSTimeout, reason)
	assert.Less(t, time.Since(start), time.Second)
}

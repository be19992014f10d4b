package check

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/idna"
)

// Reasons reported by DomainResolver when a domain cannot receive mail.
const (
	ReasonNoMX       = "Domain does not exist or has no MX records"
	ReasonDNSTimeout = "DNS lookup timed out"
)

// MXLookup resolves the MX records of a domain.
type MXLookup func(ctx context.Context, domain string) ([]*net.MX, error)

// DNSConfig is the domain resolver configuration.
type DNSConfig struct {
	Timeout time.Duration
}

// domainProfile validates domain labels (hyphen rules, label and name
// lengths) and lowercases ASCII before the query goes out.
var domainProfile = idna.New(
	idna.MapForLookup(),
	idna.VerifyDNSLength(true),
)

// DomainResolver finds the primary mail exchanger of a domain.
type DomainResolver struct {
	cfg    DNSConfig
	lookup MXLookup // injectable for testability
}

func NewDomainResolver(cfg DNSConfig) *DomainResolver {
	r := &net.Resolver{}
	return &DomainResolver{cfg: cfg, lookup: r.LookupMX}
}

// NewDomainResolverWithLookup is a test-oriented constructor that overrides the MX lookup function.
func NewDomainResolverWithLookup(cfg DNSConfig, fn MXLookup) *DomainResolver {
	c := NewDomainResolver(cfg)
	c.lookup = fn
	return c
}

// Resolve reports whether domain has a usable MX record. On success the
// second value is the exchange host of the most preferred record, otherwise
// it is a human readable reason. Resolve never fails: every DNS fault is
// folded into the reason.
func (c *DomainResolver) Resolve(ctx context.Context, domain string) (bool, string) {
	ascii, err := domainProfile.ToASCII(domain)
	if err != nil {
		return false, fmt.Sprintf("Invalid domain: %v", err)
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	mxRecords, err := c.lookup(ctx, ascii)
	if err != nil {
		return false, lookupFailureReason(err)
	}

	// net.Resolver already orders by preference; injected lookups may not.
	sort.SliceStable(mxRecords, func(i, j int) bool {
		return mxRecords[i].Pref < mxRecords[j].Pref
	})

	for _, mx := range mxRecords {
		if mx == nil {
			continue
		}
		host := strings.TrimSuffix(mx.Host, ".")
		if host == "" {
			// Null MX (RFC 7505): the domain explicitly accepts no mail.
			return false, ReasonNoMX
		}
		return true, host
	}
	return false, ReasonNoMX
}

func lookupFailureReason(err error) string {
	var dnsErr *net.DNSError
	switch {
	case errors.As(err, &dnsErr) && dnsErr.IsNotFound:
		return ReasonNoMX
	case errors.As(err, &dnsErr) && dnsErr.IsTimeout,
		errors.Is(err, context.DeadlineExceeded):
		return ReasonDNSTimeout
	default:
		return fmt.Sprintf("DNS lookup failed: %v", err)
	}
}

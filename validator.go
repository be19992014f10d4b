package mailverify

import (
	"context"

	"go.uber.org/zap"

	"github.com/optimode/mailverify/check"
	"github.com/optimode/mailverify/internal/parse"
	"github.com/optimode/mailverify/types"
)

// DomainResolver finds a usable mail exchanger for a domain. It reports
// (true, host) on success and (false, reason) otherwise; it never fails.
type DomainResolver interface {
	Resolve(ctx context.Context, domain string) (bool, string)
}

// MailboxProber reports whether mxHost would accept mail for address.
// Any failure is a negative answer.
type MailboxProber interface {
	Probe(ctx context.Context, address, domain, mxHost string) bool
}

// AddressValidator validates one address. The bulk engine drives any
// implementation; a returned error marks the attempt as retryable.
type AddressValidator interface {
	Validate(ctx context.Context, address string) (Result, error)
}

// Validator is the main builder struct.
// Instantiate with the New() function.
type Validator struct {
	err    error // configuration error, returned on Validate()
	logger *zap.Logger

	format   *check.FormatChecker
	resolver DomainResolver
	prober   MailboxProber

	dnsOpts  DNSOptions
	smtpOpts SMTPOptions
	bulkOpts BulkOptions

	customResolver bool
	customProber   bool
}

// New creates a Validator with the full pipeline (format, MX lookup,
// SMTP probe) and default options.
func New() *Validator {
	v := &Validator{
		logger:   zap.NewNop(),
		format:   check.NewFormatChecker(),
		dnsOpts:  defaultDNSOptions(),
		smtpOpts: defaultSMTPOptions(),
		bulkOpts: DefaultBulkOptions(),
	}
	v.rebuild()
	return v
}

// WithDNS overrides the default DNSOptions.
func (v *Validator) WithDNS(opts DNSOptions) *Validator {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultDNSOptions().Timeout
	}
	v.dnsOpts = opts
	v.rebuild()
	return v
}

// WithSMTP overrides the SMTP probe identity and timeouts.
// SMTPOptions.HeloDomain and MailFrom are required.
func (v *Validator) WithSMTP(opts SMTPOptions) *Validator {
	if opts.HeloDomain == "" || opts.MailFrom == "" {
		v.err = ErrInvalidSMTPOptions
		return v
	}
	// Apply defaults for unset values
	def := defaultSMTPOptions()
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = def.ConnectTimeout
	}
	if opts.CommandTimeout == 0 {
		opts.CommandTimeout = def.CommandTimeout
	}
	if opts.Port == "" {
		opts.Port = def.Port
	}
	v.smtpOpts = opts
	v.rebuild()
	return v
}

// WithLogger sets the logger used for probe diagnostics. Probe failures
// are logged at debug level only.
func (v *Validator) WithLogger(logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	v.logger = logger
	v.rebuild()
	return v
}

// WithResolver replaces the DNS stage, e.g. with a test double.
func (v *Validator) WithResolver(r DomainResolver) *Validator {
	if r == nil {
		v.err = ErrNilCollaborator
		return v
	}
	v.resolver = r
	v.customResolver = true
	return v
}

// WithProber replaces the SMTP stage, e.g. with a test double.
func (v *Validator) WithProber(p MailboxProber) *Validator {
	if p == nil {
		v.err = ErrNilCollaborator
		return v
	}
	v.prober = p
	v.customProber = true
	return v
}

// WithBulk overrides the pacing and concurrency used by ValidateBulk.
// Start from DefaultBulkOptions(); a zero Workers or nil Observer falls
// back to the default, delays are used as given.
func (v *Validator) WithBulk(opts BulkOptions) *Validator {
	v.bulkOpts = opts.withDefaults()
	return v
}

// rebuild recreates the built-in stages after an option change.
// Injected stages are left alone.
func (v *Validator) rebuild() {
	if !v.customResolver {
		v.resolver = check.NewDomainResolver(check.DNSConfig{Timeout: v.dnsOpts.Timeout})
	}
	if !v.customProber {
		v.prober = check.NewMailboxProber(check.SMTPConfig{
			HeloDomain:     v.smtpOpts.HeloDomain,
			MailFrom:       v.smtpOpts.MailFrom,
			ConnectTimeout: v.smtpOpts.ConnectTimeout,
			CommandTimeout: v.smtpOpts.CommandTimeout,
			Port:           v.smtpOpts.Port,
		}, v.logger)
	}
}

// Validate checks a single address: format, then MX lookup on the part
// after the first @, then an SMTP probe. The pipeline short-circuits on
// the first failing stage. Negative verdicts are never errors; an error
// is returned only for a misconfigured Validator or a context that is
// already done.
func (v *Validator) Validate(ctx context.Context, address string) (Result, error) {
	if v.err != nil {
		return Result{}, v.err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if !v.format.Check(address) {
		return types.Invalid(types.MessageInvalidFormat), nil
	}

	email := parse.NewEmail(address)
	ok, mxHost := v.resolver.Resolve(ctx, email.Domain)
	if !ok {
		return types.Invalid(mxHost), nil
	}

	exists := v.prober.Probe(ctx, address, email.Domain, mxHost)
	return types.Probed(exists), nil
}

// ValidateBulk validates addresses in chunks of chunkSize with the
// configured BulkOptions, retrying failed attempts up to maxRetries.
// See Bulk.Run for the exact semantics.
func (v *Validator) ValidateBulk(ctx context.Context, addresses []string, chunkSize, maxRetries int) *ResultSet {
	return NewBulk(v, v.bulkOpts).Run(ctx, addresses, chunkSize, maxRetries)
}

package check

import (
	"context"

	"go.uber.org/zap"

	"github.com/optimode/mailverify/internal/smtpprobe"
)

// SMTPConfig is the mailbox prober configuration.
type SMTPConfig = smtpprobe.Config

// MailboxProber asks a mail exchanger whether it would accept mail for an
// address. Every probe uses its own short-lived SMTP session.
type MailboxProber struct {
	prober *smtpprobe.Prober
	logger *zap.Logger
}

// NewMailboxProber creates a prober. A nil logger disables logging.
func NewMailboxProber(cfg SMTPConfig, logger *zap.Logger) *MailboxProber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MailboxProber{
		prober: smtpprobe.New(cfg),
		logger: logger,
	}
}

// Probe reports whether mxHost answered RCPT TO for address with 250.
// Connection failures, timeouts, protocol errors and any other reply all
// yield false; the cause is only logged at debug level.
func (c *MailboxProber) Probe(ctx context.Context, address, domain, mxHost string) bool {
	reply, err := c.prober.Probe(ctx, mxHost, address)
	if err != nil {
		c.logger.Debug("SMTP check failed",
			zap.String("email", address),
			zap.String("domain", domain),
			zap.String("mx", mxHost),
			zap.Error(err))
		return false
	}
	if reply.Code != 250 {
		c.logger.Debug("RCPT TO not accepted",
			zap.String("email", address),
			zap.String("mx", mxHost),
			zap.Int("code", reply.Code),
			zap.String("reply", reply.Message))
		return false
	}
	return true
}

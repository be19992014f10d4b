// Package mailverify checks whether an email address is well-formed,
// whether its domain accepts mail and whether the mailbox appears to
// exist, without sending a message.
//
// Single address:
//
//	res, err := mailverify.New().Validate(ctx, "user@example.com")
//
// Custom identity and bulk validation:
//
//	v := mailverify.New().
//	    WithSMTP(mailverify.SMTPOptions{
//	        HeloDomain: "myapp.com",
//	        MailFrom:   "verify@myapp.com",
//	    })
//	set := v.ValidateBulk(ctx, emails, mailverify.DefaultChunkSize(len(emails)), 3)
//
// The mailbox verdict is best effort: servers may greylist, lie or refuse
// probes outright.
package mailverify

import "github.com/optimode/mailverify/types"

// Result is a re-export from the types package so that consumers
// don't need to import the types package directly.
type Result = types.Result

// Message constants re-exported.
const (
	MessageInvalidFormat = types.MessageInvalidFormat
	MessageExists        = types.MessageExists
	MessageNotExists     = types.MessageNotExists
)

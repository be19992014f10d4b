package mailverify

import "errors"

var (
	// ErrInvalidSMTPOptions is returned when WithSMTP is called
	// but HeloDomain or MailFrom is missing.
	ErrInvalidSMTPOptions = errors.New("mailverify: SMTPOptions requires HeloDomain and MailFrom")

	// ErrNilCollaborator is returned when WithResolver or WithProber
	// is given a nil implementation.
	ErrNilCollaborator = errors.New("mailverify: nil resolver or prober")
)

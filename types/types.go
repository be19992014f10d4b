// Package types contains the shared types for mailverify.
// This package does not import anything from other mailverify packages
// to avoid circular imports.
package types

// Messages used in Result.Message for the non-error outcomes.
const (
	MessageInvalidFormat = "Invalid email format"
	MessageExists        = "Email exists"
	MessageNotExists     = "Email does not exist"
)

// Result is the verdict for a single address.
// Exists is never true when Valid is false.
type Result struct {
	Valid   bool   `json:"valid"`
	Exists  bool   `json:"exists"`
	Message string `json:"message"`
}

// Invalid builds a negative result carrying the given reason.
func Invalid(reason string) Result {
	return Result{Valid: false, Exists: false, Message: reason}
}

// Probed builds the result for an address whose domain resolved.
func Probed(exists bool) Result {
	if exists {
		return Result{Valid: true, Exists: true, Message: MessageExists}
	}
	return Result{Valid: true, Exists: false, Message: MessageNotExists}
}

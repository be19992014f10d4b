package parse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/optimode/mailverify/internal/parse"
)

func TestNewEmail_ASCII(t *testing.T) {
	e := parse.NewEmail("user@example.com")
	assert.True(t, e.HasAt)
	assert.Equal(t, "user", e.Local)
	assert.Equal(t, "example.com", e.Domain)
}

func TestNewEmail_SplitsAtFirstAt(t *testing.T) {
	e := parse.NewEmail("a@b@example.com")
	assert.True(t, e.HasAt)
	assert.Equal(t, "a", e.Local)
	assert.Equal(t, "b@example.com", e.Domain)
}

func TestNewEmail_PreservesCaseAndSpace(t *testing.T) {
	e := parse.NewEmail(" User@EXAMPLE.com ")
	assert.Equal(t, " User@EXAMPLE.com ", e.Raw)
	assert.Equal(t, " User", e.Local)
	assert.Equal(t, "EXAMPLE.com ", e.Domain)
}

func TestNewEmail_NoAt(t *testing.T) {
	for _, raw := range []string{"", "noatsign"} {
		e := parse.NewEmail(raw)
		assert.False(t, e.HasAt, "expected no @ for %q", raw)
		assert.Empty(t, e.Domain)
	}
}

func TestLines(t *testing.T) {
	in := "a@example.com\n\n  b@example.com  \r\n\t\nc@example.com"
	assert.Equal(t, []string{"a@example.com", "b@example.com", "c@example.com"}, parse.Lines(in))
	assert.Empty(t, parse.Lines("\n \n"))
}

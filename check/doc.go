// Package check contains the validation stages for mailverify: format,
// domain resolution and mailbox probing. Each stage degrades failures into
// a verdict instead of returning an error.
// These types can be used directly, but the recommended approach is
// to use the builder API from the github.com/optimode/mailverify package.
package check

// Package mailer delivers the rendered efficiency report over SMTP.
//
// All transport settings arrive in an explicit Config passed by the caller —
// the package never reads environment variables or other ambient process
// state, so callers stay testable without environment setup.
package mailer

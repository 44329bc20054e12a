// Package internal contains the shared plumbing for navstack: logging setup and
// identifier generation. Types and functions in this package are not part of the
// public API.
package internal

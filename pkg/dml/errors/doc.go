// Package errors defines rich error types for model loading and
// resolution.
//
// Errors carry a type, a message, the source location of the offending
// declaration, and an optional suggested fix. ErrorList accumulates
// errors across a whole pass so a model author sees every problem at
// once instead of fixing them one run at a time.
package errors

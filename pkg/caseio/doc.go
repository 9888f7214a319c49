// Package caseio reads input cases from tabular files.
//
// A case table has two columns: the qualified attribute name and its
// value. Values arrive as text and are coerced by the attribute's
// declared type in the decision model, so a "30" bound to a number
// attribute becomes float64(30) and a "true" bound to a boolean becomes
// true. CSV and XLSX tables are supported.
package caseio

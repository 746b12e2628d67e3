// Package template implements the conditional task template language: parsing
// template note text into rules and evaluating rule conditions against a
// target calendar date. Everything in this package is pure; there is no
// clock, no storage, and malformed input degrades to fewer rules rather than
// errors.
package template

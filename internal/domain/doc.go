// Package domain defines the core business entities of the dispatch engine:
// dispatches, tasks, notes, and the calendar-day key they are scoped by.
package domain

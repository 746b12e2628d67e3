// Package postgres provides PostgreSQL implementations of the store
// interfaces, backed by database/sql over the pgx driver.
package postgres

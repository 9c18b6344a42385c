// Package postgres provides PostgreSQL implementations of the store
// interfaces. Queries run through database/sql on the pgx driver; slice
// arguments are expanded with sqlx.In and rebound to numbered placeholders.
package postgres

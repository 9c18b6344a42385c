// Package testutils provides a migrated PostgreSQL database for integration
// tests. It uses TASKAPI_TEST_DB_URL (falling back to DATABASE_URL) when set
// and otherwise starts a disposable container with testcontainers-go. Each
// test runs inside a transaction that is rolled back afterwards.
package testutils

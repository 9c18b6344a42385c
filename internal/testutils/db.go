//go:build integration

package testutils

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/taskmanager-api/internal/ciutil"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/platform/postgres/migrations"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const postgresImage = "postgres:16-alpine"

var (
	once    sync.Once
	shared  *sql.DB
	openErr error
)

// Open returns the shared migrated database. Outside CI the test is skipped
// when no database is configured and Docker is unavailable; under CI that
// is a failure.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	once.Do(func() {
		shared, openErr = open(context.Background())
	})
	if errors.Is(openErr, errNoDatabase) && !ciutil.IsCI() {
		t.Skip("Skipping integration test: set " + ciutil.EnvTestDatabaseURL + " or make Docker available")
	}
	require.NoError(t, openErr, "failed to prepare test database")
	return shared
}

var errNoDatabase = errors.New("no test database available")

func open(ctx context.Context) (*sql.DB, error) {
	dsn := ciutil.TestDatabaseURL(nil)
	if dsn == "" {
		if !dockerAvailable() {
			return nil, errNoDatabase
		}
		var err error
		dsn, err = startContainer(ctx)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrations.Run(ctx, db, "up", nil); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// startContainer launches Postgres and returns its DSN. The container is
// reaped by testcontainers when the test binary exits.
func startContainer(ctx context.Context) (string, error) {
	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "taskapi",
			"POSTGRES_PASSWORD": "taskapi",
			"POSTGRES_DB":       "taskapi_test",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithDeadline(2 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return "", fmt.Errorf("failed to get container port: %w", err)
	}

	return fmt.Sprintf("postgres://taskapi:taskapi@%s:%s/taskapi_test?sslmode=disable", host, port.Port()), nil
}

func dockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return exec.CommandContext(ctx, "docker", "info").Run() == nil
}

// WithTx runs fn inside a transaction that is always rolled back.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "failed to begin transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("Warning: failed to roll back transaction: %v", err)
		}
	}()

	fn(t, tx)
}

// InsertUser stores a user with a placeholder hash and returns it.
func InsertUser(t *testing.T, tx *sql.Tx, email string) *domain.User {
	t.Helper()

	now := time.Now().UTC()
	user := &domain.User{
		ID:             uuid.New(),
		Email:          domain.NormalizeEmail(email),
		HashedPassword: "$2a$04$placeholderplaceholderplaceholderplaceholderpl",
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	_, err := tx.Exec(`INSERT INTO users (id, email, hashed_password, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Email, user.HashedPassword, user.IsActive, user.CreatedAt, user.UpdatedAt)
	require.NoError(t, err, "failed to insert user")
	return user
}

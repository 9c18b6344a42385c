package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryStoreGetOrCreate(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewPostgresCategoryStore(db, nil)

	id := uuid.New()
	now := time.Now().UTC()
	upsert := regexp.QuoteMeta("ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name")

	mock.ExpectQuery(upsert).
		WithArgs(sqlmock.AnyArg(), "Work", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "created"}).
			AddRow(id.String(), "Work", now, true))
	mock.ExpectQuery(upsert).
		WithArgs(sqlmock.AnyArg(), "Work", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "created"}).
			AddRow(id.String(), "Work", now, false))

	first, created, err := s.GetOrCreate(context.Background(), " Work ")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, id, first.ID)

	second, created, err := s.GetOrCreate(context.Background(), "Work")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestCategoryStoreGetOrCreateBlankName(t *testing.T) {
	t.Parallel()

	db, _ := newMock(t)
	s := NewPostgresCategoryStore(db, nil)

	_, _, err := s.GetOrCreate(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCategoryStoreGetMissing(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewPostgresCategoryStore(db, nil)

	mock.ExpectQuery("FROM categories WHERE id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}))

	_, err := s.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrCategoryNotFound)
}

func TestTagStoreGetByIDsExpandsList(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewPostgresTagStore(db, nil)

	a, b := uuid.New(), uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM tags WHERE id IN ($1, $2)")).
		WithArgs(a, b).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}).
			AddRow(a.String(), "Important", now))

	tags, err := s.GetByIDs(context.Background(), []uuid.UUID{a, b})
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "Important", tags[0].Name)

	none, err := s.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTagStoreList(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewPostgresTagStore(db, nil)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM tags ORDER BY name, id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}).
			AddRow(uuid.NewString(), "Home", now).
			AddRow(uuid.NewString(), "Urgent", now))

	tags, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Home", tags[0].Name)
	assert.Equal(t, "Urgent", tags[1].Name)
}

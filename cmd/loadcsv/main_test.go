package main

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

// The schema uses GENERATED ALWAYS identity columns, so the imported ids
// only go through with OVERRIDING SYSTEM VALUE.
func TestLoadCategoryOverridesIdentity(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectExec(`INSERT INTO categories \(id, name, slug\) OVERRIDING SYSTEM VALUE`).
		WithArgs(int64(1), "Books", "books").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	skipped, err := loadCategory(context.Background(), mock, []string{"1", "Books", "books"})
	require.NoError(t, err)
	assert.False(t, skipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadCategorySkipsMalformedRow(t *testing.T) {
	mock := newMockDB(t)
	skipped, err := loadCategory(context.Background(), mock, []string{"not-an-id", "Books", "books"})
	require.NoError(t, err)
	assert.True(t, skipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadTitle(t *testing.T) {
	t.Run("inserts with explicit id", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int64(2)).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectExec(`INSERT INTO titles \(id, name, year, category_id\) OVERRIDING SYSTEM VALUE`).
			WithArgs(int64(1), "Solaris", int32(1972), int64(2)).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		skipped, err := loadTitle(context.Background(), mock, []string{"1", "Solaris", "1972", "2"})
		require.NoError(t, err)
		assert.False(t, skipped)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	t.Run("skips row with missing category", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int64(99)).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		skipped, err := loadTitle(context.Background(), mock, []string{"1", "Solaris", "1972", "99"})
		require.NoError(t, err)
		assert.True(t, skipped)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLoadReview(t *testing.T) {
	record := []string{"1", "2", "great", "3", "9", "2019-09-24T21:08:21.567Z"}
	t.Run("inserts when both refs exist", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int64(2)).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int64(3)).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectExec(`INSERT INTO reviews \(id, title_id, author_id, text, score, pub_date\) OVERRIDING SYSTEM VALUE`).
			WithArgs(int64(1), int64(2), int64(3), "great", int32(9), record[5]).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		skipped, err := loadReview(context.Background(), mock, record)
		require.NoError(t, err)
		assert.False(t, skipped)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	t.Run("skips row with missing author", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int64(2)).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int64(3)).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		skipped, err := loadReview(context.Background(), mock, record)
		require.NoError(t, err)
		assert.True(t, skipped)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLoadCommentOverridesIdentity(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec(`INSERT INTO comments \(id, review_id, author_id, text, pub_date\) OVERRIDING SYSTEM VALUE`).
		WithArgs(int64(1), int64(2), int64(3), "agreed", "2019-09-24T21:08:21.567Z").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	skipped, err := loadComment(context.Background(), mock, []string{"1", "2", "agreed", "3", "2019-09-24T21:08:21.567Z"})
	require.NoError(t, err)
	assert.False(t, skipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

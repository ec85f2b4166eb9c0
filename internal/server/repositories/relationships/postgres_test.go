package relationships

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/casegraph/internal/common"
	"github.com/dmitrijs2005/casegraph/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var relColumns = []string{"id", "source_entity_id", "target_entity_id", "relation", "owner"}

func newRepoWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^INSERT\s+INTO\s+relationships\s*\(source_entity_id,\s*target_entity_id,\s*relation,\s*owner\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id$`
	mock.ExpectQuery(q).
		WithArgs(int64(1), int64(2), "resolves_to", "alice").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(4)))

	got, err := repo.Create(context.Background(), &models.Relationship{
		SourceEntityID: 1, TargetEntityID: 2, Relation: "resolves_to", Owner: "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.ID)
}

func TestGet_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+relationships`).WithArgs(int64(4), "bob").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "bob", 4)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestList_CaseFilterJoinsBothEndpoints(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)JOIN\s+entities\s+s\s+ON\s+s\.id\s*=\s*r\.source_entity_id.*JOIN\s+entities\s+t\s+ON\s+t\.id\s*=\s*r\.target_entity_id.*WHERE\s+r\.owner\s*=\s*\$1\s+AND\s+s\.case_id\s*=\s*\$2\s+AND\s+t\.case_id\s*=\s*\$3`
	mock.ExpectQuery(q).
		WithArgs("alice", int64(1), int64(1)).
		WillReturnRows(sqlmock.NewRows(relColumns).AddRow(int64(4), int64(1), int64(2), "resolves_to", "alice"))

	caseID := int64(1)
	got, err := repo.List(context.Background(), "alice", &caseID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "resolves_to", got[0].Relation)
}

func TestList_QueryError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)FROM\s+relationships\s+WHERE\s+owner\s*=\s*\$1`).WithArgs("alice").
		WillReturnError(errors.New("db down"))

	_, err := repo.List(context.Background(), "alice", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: db down")
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)^UPDATE\s+relationships\s+SET\s+relation\s*=\s*\$1\s+WHERE\s+id\s*=\s*\$2\s+AND\s+owner\s*=\s*\$3$`).
		WithArgs("links", int64(4), "bob").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.Update(context.Background(), &models.Relationship{ID: 4, Relation: "links", Owner: "bob"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDeleteByEntity_BothDirections(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^DELETE\s+FROM\s+relationships\s+WHERE\s+owner\s*=\s*\$1\s+AND\s+\(source_entity_id\s*=\s*\$2\s+OR\s+target_entity_id\s*=\s*\$3\)$`
	mock.ExpectExec(q).
		WithArgs("alice", int64(1), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteByEntity(context.Background(), "alice", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestDeleteByEntity_NoneIsNotAnError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`DELETE`).WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := repo.DeleteByEntity(context.Background(), "alice", 1)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDelete_ExecError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`DELETE`).WillReturnError(errors.New("locked"))

	err := repo.Delete(context.Background(), "alice", 4)
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}

package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_EveryDialectHasTheSameVersions(t *testing.T) {
	pg, err := fs.Glob(Migrations, "postgres/*.sql")
	require.NoError(t, err)
	lite, err := fs.Glob(Migrations, "sqlite/*.sql")
	require.NoError(t, err)

	require.NotEmpty(t, pg)
	require.Len(t, lite, len(pg))
	for i := range pg {
		assert.Equal(t, strings.TrimPrefix(pg[i], "postgres/"), strings.TrimPrefix(lite[i], "sqlite/"))
	}
}

func TestMigrations_HaveGooseMarkers(t *testing.T) {
	files, err := fs.Glob(Migrations, "*/*.sql")
	require.NoError(t, err)
	for _, f := range files {
		b, err := fs.ReadFile(Migrations, f)
		require.NoError(t, err)
		assert.Contains(t, string(b), "-- +goose Up", f)
		assert.Contains(t, string(b), "-- +goose Down", f)
	}
}

package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "./data/yatube.db?_foreign_keys=on", sqliteDSN("./data/yatube.db"))
	assert.Equal(t, "file:x?mode=memory&_foreign_keys=on", sqliteDSN("file:x?mode=memory"))
	assert.Equal(t, "file:x?_fk=1", sqliteDSN("file:x?_fk=1"))
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(&Config{Driver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestNewSqliteInMemory(t *testing.T) {
	db, err := New(&Config{
		Driver:       "sqlite",
		FilePath:     "file:database_test?mode=memory&cache=shared",
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	defer Close(db)

	var fk int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)
}

func TestNewSqliteCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "yatube.db")
	db, err := New(&Config{Driver: "sqlite", FilePath: path, LogLevel: "silent"})
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, db.Exec("CREATE TABLE t (id INTEGER)").Error)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

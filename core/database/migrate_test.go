package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"000002_b.up.sql", "000001_a.up.sql", "000001_a.down.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "000003_dir.up.sql"), 0o700))

	assert.Equal(t, []string{"000001_a.up.sql", "000002_b.up.sql"}, upFiles(dir))
	assert.Nil(t, upFiles(filepath.Join(dir, "missing")))
}

func TestAppliedBetween(t *testing.T) {
	files := []string{"000001_a.up.sql", "000002_b.up.sql", "000003_c.up.sql"}
	assert.Equal(t, 2, appliedBetween(files, 1, 3))
	assert.Equal(t, 0, appliedBetween(files, 3, 3))
	assert.Equal(t, uint64(0), fileVersion("junk.up.sql"))
}

func TestConnectionStrings(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "bot", Password: "p@ss word", Name: "codes", SSLMode: "disable"}
	assert.Equal(t, "user='bot' password='p@ss word' host='db' port='5432' dbname='codes' sslmode='disable'", DSN(cfg))
	assert.Equal(t, `user='' password='it\'s' host='' port='' dbname='' sslmode=''`, DSN(Config{Password: "it's"}))
	assert.Equal(t, "postgres://bot:p%40ss%20word@db:5432/codes?sslmode=disable", MigrateURL(cfg))
}

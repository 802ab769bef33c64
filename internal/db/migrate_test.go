package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations_SQLiteIsIdempotent(t *testing.T) {
	conn := OpenTestSQLite(t)
	require.NoError(t, RunMigrations(conn, DriverSQLite))

	var n int
	err := conn.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'trigger' AND name = 'reservations_no_overlap'`).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRunMigrations_UnknownDriver(t *testing.T) {
	conn := OpenTestSQLite(t)
	assert.Error(t, RunMigrations(conn, "mysql"))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("mysql", "dsn")
	assert.Error(t, err)
}

func TestBuildSQLiteDSN(t *testing.T) {
	dsn := buildSQLiteDSN("/tmp/x.db")
	assert.Contains(t, dsn, "/tmp/x.db?")
	assert.Contains(t, dsn, "_txlock=immediate")
	assert.Contains(t, dsn, "_foreign_keys=on")

	assert.Contains(t, buildSQLiteDSN("file.db?cache=shared"), "cache=shared&")
}

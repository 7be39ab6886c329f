package database

import (
	"testing"

	"inkwell/internal/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatementKind(t *testing.T) {
	assert.Equal(t, "select", statementKind("SELECT * FROM posts"))
	assert.Equal(t, "insert", statementKind("INSERT INTO posts (title) VALUES (?)"))
	assert.Equal(t, "analyze", statementKind("ANALYZE posts"))
	assert.Equal(t, "unknown", statementKind("  "))
}

func TestQueryLatencyRecorded(t *testing.T) {
	db, err := ConnectSQLite()
	require.NoError(t, err)

	require.NoError(t, db.Exec("SELECT 1").Error)

	assert.Greater(t, testutil.CollectAndCount(observability.DatabaseQueryLatency), 0)
}

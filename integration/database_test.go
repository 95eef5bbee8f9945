//go:build database

package integration

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// auditLifecycle exercises the audit store end to end: admit a topic so an
// event lands, then read it back, then clear.
func auditLifecycle(t *testing.T, env map[string]string) {
	_, err := runGraphgate(t, env, "audit", "clear")
	require.NoError(t, err)

	_, err = runGraphgate(t, env, "topic", "admit", "gold", "--name", "Gold", "--category", "asset", "--importance", "7")
	require.NoError(t, err)

	out, err := runGraphgate(t, env, "audit", "events", "--event", "topic_added")
	require.NoError(t, err)
	assert.Contains(t, out, "gold")

	out, err = runGraphgate(t, env, "audit", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Connected: true")

	_, err = runGraphgate(t, env, "audit", "clear")
	require.NoError(t, err)
}

// TestAuditWithMySQL runs the audit lifecycle against a MySQL backend.
func TestAuditWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306:3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "graphgate",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(30 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/graphgate?parseTime=true", host, port.Port())
	auditLifecycle(t, map[string]string{
		"GRAPHGATE_AUDIT_BACKEND":    "mysql",
		"GRAPHGATE_AUDIT_DB_CONNECT": connStr,
	})
}

// TestAuditWithPostgres runs the audit lifecycle against a PostgreSQL backend.
func TestAuditWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432:5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()
	time.Sleep(5 * time.Second)

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())
	auditLifecycle(t, map[string]string{
		"GRAPHGATE_AUDIT_BACKEND":    "postgresql",
		"GRAPHGATE_AUDIT_DB_CONNECT": connStr,
	})
}

// TestAuditWithSQLite runs the audit lifecycle against the default file
// backend with a throwaway database path.
func TestAuditWithSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	auditLifecycle(t, map[string]string{
		"GRAPHGATE_AUDIT_BACKEND":    "sqlite",
		"GRAPHGATE_AUDIT_DB_CONNECT": dbPath,
	})
}

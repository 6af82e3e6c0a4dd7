//go:build integration
// +build integration

package e2e

import (
	"context"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"

	"github.com/papyrusworks/papyrus/pkg/database"
)

const postgresImage = "postgres:16-alpine"

// startPostgres runs a disposable PostgreSQL container and connects to
// it through pkg/database, the same path the serve command takes.
func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, postgresImage,
		tcpostgres.WithDatabase("papyrus"),
		tcpostgres.WithUsername("papyrus"),
		tcpostgres.WithPassword("papyrus"),
		tcpostgres.BasicWaitStrategies(),
	)
	// Run can hand back a container even on error; register cleanup first.
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	db, err := database.ConnectWithBackoff(ctx, database.Config{
		Driver:   database.DriverPostgres,
		Host:     host,
		Port:     port.Int(),
		User:     "papyrus",
		Password: "papyrus",
		DBName:   "papyrus",
		SSLMode:  "disable",
	}, hclog.NewNullLogger())
	require.NoError(t, err)

	return db
}

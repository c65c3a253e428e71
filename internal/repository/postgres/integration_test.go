package postgres

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"docviewer/internal/config"
	"docviewer/internal/database"
	"docviewer/internal/database/migration"
	"docviewer/internal/model"
	"docviewer/internal/repository"
)

func setupPostgres(t *testing.T) config.DatabaseConfig {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("skipping integration test: TEST_INTEGRATION not set")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		tcpostgres.WithDatabase("docviewer_test"),
		tcpostgres.WithUsername("docviewer"),
		tcpostgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return config.DatabaseConfig{
		Host:     host,
		Port:     port.Port(),
		User:     "docviewer",
		Password: "test-password",
		Name:     "docviewer_test",
		SSLMode:  "disable",
	}
}

func TestExtractionEventPostgres_Integration(t *testing.T) {
	cfg := setupPostgres(t)
	ctx := context.Background()

	db, err := database.Open(ctx, cfg)
	require.NoError(t, err)
	defer db.Close()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	require.NoError(t, migration.EnsureMigrated(ctx, db, logger, cfg.Host))
	// Second run finds the sentinel table and skips.
	require.NoError(t, migration.EnsureMigrated(ctx, db, logger, cfg.Host))

	repo := NewExtractionEventPostgres(db)
	base := time.Now().UTC().Truncate(time.Millisecond)
	for i, source := range []string{model.EventExtracted, model.EventCached, model.EventEdited} {
		require.NoError(t, repo.Record(ctx, &model.ExtractionEvent{
			ID:         uuid.NewString(),
			Document:   "report.pdf",
			Backend:    "blob",
			Source:     source,
			Outcome:    "success",
			TextLength: 100,
			DurationMs: int64(10 * i),
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
		}))
	}

	page, err := repo.ListByDocument(ctx, "", "report.pdf", repository.PageQuery{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, model.EventEdited, page.Items[0].Source)
	assert.Equal(t, model.EventCached, page.Items[1].Source)

	other, err := repo.ListByDocument(ctx, "", "other.pdf", repository.PageQuery{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, other.Total)
}

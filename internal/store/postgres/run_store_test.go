package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/arnadev/SaaS-review-Scraper/internal/review"
	"github.com/arnadev/SaaS-review-Scraper/internal/run"
)

func TestStoreRunInsertsRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewRunStoreWithPool(mock, "runs")
	require.NoError(t, err)

	started := time.Unix(1700000000, 0).UTC()
	finished := started.Add(2 * time.Minute)
	when := time.Date(2023, time.November, 1, 0, 0, 0, 0, time.UTC)

	report := run.Report{
		RunID:      "run-uuid",
		Company:    "Acme",
		Window:     "2023-01-01..2023-12-31",
		StartedAt:  started,
		FinishedAt: finished,
		Sources: []run.SourceResult{
			{Source: "trustpilot", Success: true, Count: 1},
		},
		Reviews: []review.Review{
			{Source: "trustpilot", Title: "Great", Rating: 5, RawDate: "November 1, 2023", Date: &when},
		},
	}

	mock.ExpectExec("INSERT INTO runs").
		WithArgs(
			report.RunID,
			report.Company,
			report.Window,
			report.StartedAt,
			report.FinishedAt,
			1,
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = store.StoreRun(context.Background(), report)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreRunRequiresRunID(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewRunStoreWithPool(mock, "runs")
	require.NoError(t, err)

	err = store.StoreRun(context.Background(), run.Report{})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewRunStoreWithPoolRejectsBadTable(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewRunStoreWithPool(mock, "runs; drop table runs")
	require.Error(t, err)
}

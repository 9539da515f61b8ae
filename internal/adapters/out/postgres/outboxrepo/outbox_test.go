package outboxrepo_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"freight/internal/adapters/out/postgres/outboxrepo"
	"freight/internal/adapters/out/postgres/pgtest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkPublished_OnlyUnpublishedRows(t *testing.T) {
	db, mock := pgtest.Mock(t)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "outbox_events" SET "published_at"=$1 WHERE id IN ($2,$3) AND published_at IS NULL`)).
		WithArgs(sqlmock.AnyArg(), int64(4), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := outboxrepo.NewGormOutboxStore(db).MarkPublished(context.Background(), []int64{4, 7})

	require.NoError(t, err)
}

func TestMarkPublished_NothingToDo(t *testing.T) {
	db, _ := pgtest.Mock(t)

	err := outboxrepo.NewGormOutboxStore(db).MarkPublished(context.Background(), nil)

	require.NoError(t, err)
}

func TestAppend_NoEvents(t *testing.T) {
	db, _ := pgtest.Mock(t)

	records, err := outboxrepo.Append(context.Background(), db, nil)

	require.NoError(t, err)
	require.Empty(t, records)
}

func TestFetchUnpublishedThrough_OrdersByID(t *testing.T) {
	db, mock := pgtest.Mock(t)
	occurred := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	aggregate := uuid.New()
	rows := sqlmock.NewRows([]string{
		"id", "event_id", "kind", "aggregate_id", "payload", "occurred_at", "created_at", "published_at",
	}).
		AddRow(int64(3), uuid.New().String(), "OrderAccepted", aggregate.String(), []byte(`{}`), occurred, occurred, nil).
		AddRow(int64(5), uuid.New().String(), "OrderStatusChanged", aggregate.String(), []byte(`{}`), occurred, occurred, nil)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "outbox_events" WHERE published_at IS NULL AND id <= $1 ORDER BY id LIMIT`)).
		WillReturnRows(rows)

	records, err := outboxrepo.NewGormOutboxStore(db).FetchUnpublishedThrough(context.Background(), 5, 10)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(3), records[0].ID)
	assert.Equal(t, int64(5), records[1].ID)
	assert.Equal(t, aggregate.String(), records[1].AggregateID.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

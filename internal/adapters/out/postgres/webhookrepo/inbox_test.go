package webhookrepo_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"freight/internal/adapters/out/postgres/pgtest"
	"freight/internal/adapters/out/postgres/webhookrepo"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var insertEvent = regexp.QuoteMeta(`INSERT INTO "payment_webhook_events"`) + ".*" + regexp.QuoteMeta(`ON CONFLICT DO NOTHING`)

func TestRecord_FreshEvent(t *testing.T) {
	db, mock := pgtest.Mock(t)
	mock.ExpectExec(insertEvent).
		WithArgs("stripe", "evt_1", "payment_intent.succeeded", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	fresh, err := webhookrepo.NewGormWebhookInbox(db).Record(context.Background(), "stripe", "evt_1", "payment_intent.succeeded")

	require.NoError(t, err)
	assert.True(t, fresh)
}

func TestRecord_DuplicateEvent(t *testing.T) {
	db, mock := pgtest.Mock(t)
	mock.ExpectExec(insertEvent).WillReturnResult(sqlmock.NewResult(0, 0))

	fresh, err := webhookrepo.NewGormWebhookInbox(db).Record(context.Background(), "stripe", "evt_1", "payment_intent.succeeded")

	require.NoError(t, err)
	assert.False(t, fresh)
}

func TestRecord_DatabaseError(t *testing.T) {
	db, mock := pgtest.Mock(t)
	boom := errors.New("connection reset")
	mock.ExpectExec(insertEvent).WillReturnError(boom)

	fresh, err := webhookrepo.NewGormWebhookInbox(db).Record(context.Background(), "stripe", "evt_1", "payment_intent.succeeded")

	require.ErrorIs(t, err, boom)
	assert.False(t, fresh)
}

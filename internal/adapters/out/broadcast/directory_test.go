package broadcast_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"freight/internal/adapters/out/broadcast"
	"freight/internal/core/domain/model/kernel"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func member(t *testing.T) kernel.Principal {
	t.Helper()
	p, err := kernel.NewPrincipal(kernel.NewUUID(), kernel.NewUUID(), kernel.RoleMember)
	require.NoError(t, err)
	return p
}

func storedForm(t *testing.T, p kernel.Principal) []byte {
	t.Helper()
	return []byte(fmt.Sprintf(`{"user_id":%q,"company_id":%q,"role":%q}`,
		p.UserID().String(), p.CompanyID().String(), string(p.Role())))
}

func TestRedisDirectory(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	dir := broadcast.NewRedisDirectory(client, "freight:", time.Hour)
	p := member(t)
	key := "freight:subscribers:order.1"

	t.Run("subscribe stores the principal and refreshes the ttl", func(t *testing.T) {
		mock.ExpectTxPipeline()
		mock.ExpectHSet(key, p.UserID().String(), storedForm(t, p)).SetVal(1)
		mock.ExpectExpire(key, time.Hour).SetVal(true)
		mock.ExpectTxPipelineExec()

		require.NoError(t, dir.Subscribe(ctx, "order.1", p))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("subscribers restores principals", func(t *testing.T) {
		mock.ExpectHVals(key).SetVal([]string{string(storedForm(t, p))})

		subs, err := dir.Subscribers(ctx, "order.1")
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.True(t, subs[0].UserID().IsEqual(p.UserID()))
		assert.True(t, subs[0].Represents(p.CompanyID()))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt entry is an error", func(t *testing.T) {
		mock.ExpectHVals(key).SetVal([]string{"{"})

		_, err := dir.Subscribers(ctx, "order.1")
		require.Error(t, err)
	})

	t.Run("unsubscribe deletes the field", func(t *testing.T) {
		mock.ExpectHDel(key, p.UserID().String()).SetVal(1)

		require.NoError(t, dir.Unsubscribe(ctx, "order.1", p.UserID()))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMemoryDirectory(t *testing.T) {
	ctx := context.Background()
	dir := broadcast.NewMemoryDirectory()
	a, b := member(t), member(t)

	require.NoError(t, dir.Subscribe(ctx, "company.1", a))
	require.NoError(t, dir.Subscribe(ctx, "company.1", a))
	require.NoError(t, dir.Subscribe(ctx, "company.1", b))

	subs, err := dir.Subscribers(ctx, "company.1")
	require.NoError(t, err)
	assert.Len(t, subs, 2)

	require.NoError(t, dir.Unsubscribe(ctx, "company.1", a.UserID()))
	require.NoError(t, dir.Unsubscribe(ctx, "company.2", a.UserID()))

	subs, err = dir.Subscribers(ctx, "company.1")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.True(t, subs[0].UserID().IsEqual(b.UserID()))

	subs, err = dir.Subscribers(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, subs)
}

package queries_test

import (
	"testing"

	"freight/internal/core/application/usecases/queries"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGetOrderQuery_RequiresIDAndViewer(t *testing.T) {
	viewer, err := kernel.NewPrincipal(kernel.NewUUID(), kernel.NewUUID(), kernel.RoleMember)
	require.NoError(t, err)

	_, err = queries.NewGetOrderQuery(kernel.UUID{}, viewer)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	_, err = queries.NewGetOrderQuery(kernel.NewUUID(), kernel.Principal{})
	require.Error(t, err)

	q, err := queries.NewGetOrderQuery(kernel.NewUUID(), viewer)
	require.NoError(t, err)
	assert.NoError(t, q.Validate())
}

func TestZeroValueQueries_AreRejected(t *testing.T) {
	assert.ErrorIs(t, queries.GetOrderQuery{}.Validate(), queries.ErrGetOrderQueryIsNotConstructed)
	assert.ErrorIs(t, queries.GetEscrowQuery{}.Validate(), queries.ErrGetEscrowQueryIsNotConstructed)
	assert.ErrorIs(t, queries.GetTenderQuery{}.Validate(), queries.ErrGetTenderQueryIsNotConstructed)
}

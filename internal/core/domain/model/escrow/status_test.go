package escrow_test

import (
	"testing"

	"freight/internal/core/domain/model/escrow"
	"freight/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []escrow.Status{
		escrow.StatusCreated, escrow.StatusFunded, escrow.StatusReleased,
		escrow.StatusDisputed, escrow.StatusRefunded, escrow.StatusCancelled,
	} {
		parsed, err := escrow.ParseStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := escrow.ParseStatus("frozen")
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

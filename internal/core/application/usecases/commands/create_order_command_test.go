package commands_test

import (
	"testing"

	"freight/internal/core/application/usecases/commands"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreateOrderCommand_ValidInput(t *testing.T) {
	p := newParties(t)
	id := kernel.NewUUID()
	price := kernel.MustParseMoney("750.00", "EUR")

	cmd, err := commands.NewCreateOrderCommand(id, p.shipper, &p.carrierX, sampleRoute(t), sampleCargo(t), price)
	require.NoError(t, err)
	assert.Equal(t, id, cmd.OrderID())
	assert.Equal(t, p.shipper, cmd.Shipper())
	assert.Equal(t, &p.carrierX, cmd.CarrierID())
	assert.True(t, price.IsEqual(cmd.TotalPrice()))
	require.NoError(t, cmd.Validate())
}

func TestNewCreateOrderCommand_OpenOrder(t *testing.T) {
	p := newParties(t)
	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), p.shipper, nil, sampleRoute(t), sampleCargo(t),
		kernel.MustParseMoney("750.00", "EUR"))
	require.NoError(t, err)
	assert.Nil(t, cmd.CarrierID())
}

func TestNewCreateOrderCommand_InvalidOrderID(t *testing.T) {
	p := newParties(t)
	_, err := commands.NewCreateOrderCommand(kernel.UUID{}, p.shipper, nil, sampleRoute(t), sampleCargo(t),
		kernel.MustParseMoney("750.00", "EUR"))
	require.Error(t, err)
	assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
}

func TestNewCreateOrderCommand_UnconstructedValues(t *testing.T) {
	_, err := commands.NewCreateOrderCommand(kernel.NewUUID(), kernel.Principal{}, nil, kernel.Route{}, kernel.Cargo{}, kernel.Money{})
	require.Error(t, err)
	assert.ErrorIs(t, err, kernel.ErrPrincipalIsNotConstructed)
	assert.ErrorIs(t, err, kernel.ErrRouteIsNotConstructed)
	assert.ErrorIs(t, err, kernel.ErrCargoIsNotConstructed)
	assert.ErrorIs(t, err, kernel.ErrMoneyIsNotConstructed)
}

func TestTargetCommands_RejectZeroIDs(t *testing.T) {
	p := newParties(t)

	_, err := commands.NewAcceptOrderCommand(kernel.UUID{}, p.carrierXUser)
	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)

	_, err = commands.NewAwardBidCommand(kernel.NewUUID(), kernel.NewUUID(), kernel.UUID{}, p.shipper)
	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)

	_, err = commands.NewFundEscrowCommand(kernel.NewUUID(), kernel.Principal{}, "pm_card_visa", "")
	require.ErrorIs(t, err, kernel.ErrPrincipalIsNotConstructed)

	_, err = commands.NewFundEscrowCommand(kernel.NewUUID(), p.shipper, "  ", "")
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

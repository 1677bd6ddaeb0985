package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_MovementRequest(t *testing.T) {
	ok := MovementRequest{
		ItemID:     "550e8400-e29b-41d4-a716-446655440000",
		LocationID: "660e8400-e29b-41d4-a716-446655440000",
		Quantity:   3,
	}
	assert.NoError(t, Validate(ok))

	err := Validate(MovementRequest{ItemID: "abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "itemId debe ser un UUID")
	assert.Contains(t, err.Error(), "locationId es obligatorio")
}

func TestValidate_SyncRequestVacio(t *testing.T) {
	err := Validate(SyncRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "movements")

	assert.NoError(t, Validate(SyncRequest{Movements: []SyncMovementDTO{{}}}), "la forma de cada ítem no se valida a nivel de lote")
}

func TestValidate_QueryUsaNombreDelParametro(t *testing.T) {
	err := Validate(MovementListQuery{Kind: "TRANSFER"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kind debe ser uno de")

	err = Validate(StockListQuery{PageRequest: PageRequest{Limit: 500}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit debe ser como máximo 100")
}

package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func TestClassify_Limites(t *testing.T) {
	cases := []struct {
		qty, threshold int64
		want           inventory.Status
	}{
		{9, 10, inventory.StatusLow},
		{10, 10, inventory.StatusNormal},
		{19, 10, inventory.StatusNormal},
		{20, 10, inventory.StatusGood},
		{0, 0, inventory.StatusGood},
		{0, 1, inventory.StatusLow},
		{1, 1, inventory.StatusNormal},
		{2, 1, inventory.StatusGood},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, inventory.Classify(c.qty, c.threshold),
			"Classify(%d, %d)", c.qty, c.threshold)
	}
}

func TestIsSafetyAlert_MismoPredicadoQueLow(t *testing.T) {
	assert.True(t, inventory.IsSafetyAlert(7, 10))
	assert.False(t, inventory.IsSafetyAlert(11, 10))
	assert.False(t, inventory.IsSafetyAlert(10, 10), "el umbral exacto no alerta")
	assert.False(t, inventory.IsSafetyAlert(0, 0))
}

func TestParseStatus(t *testing.T) {
	s, ok := inventory.ParseStatus(" low ")
	assert.True(t, ok)
	assert.Equal(t, inventory.StatusLow, s)

	_, ok = inventory.ParseStatus("CRITICAL")
	assert.False(t, ok)
}

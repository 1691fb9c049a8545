package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluator_Matches(t *testing.T) {
	ev, err := NewEvaluator(`available < 10 && product_id.startsWith("prod-")`)
	require.NoError(t, err)

	cases := []struct {
		name string
		in   StockInput
		want bool
	}{
		{"low stock", StockInput{ProductID: "prod-001", Available: 3, Total: 50}, true},
		{"enough stock", StockInput{ProductID: "prod-001", Available: 40, Total: 50}, false},
		{"other prefix", StockInput{ProductID: "sku-9", Available: 1, Total: 5}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ev.Matches(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluator_RatioRule(t *testing.T) {
	ev, err := NewEvaluator(`total > 0 && double(available) / double(total) < 0.1`)
	require.NoError(t, err)

	got, err := ev.Matches(StockInput{Available: 4, Total: 50})
	require.NoError(t, err)
	assert.True(t, got)
}

func TestNewEvaluator_Empty(t *testing.T) {
	ev, err := NewEvaluator("")
	require.NoError(t, err)
	assert.Nil(t, ev)

	got, err := ev.Matches(StockInput{Available: 0})
	require.NoError(t, err)
	assert.False(t, got)
}

func TestNewEvaluator_Rejects(t *testing.T) {
	_, err := NewEvaluator("available +")
	assert.Error(t, err)

	_, err = NewEvaluator("available + 1")
	assert.Error(t, err, "non-bool rule must be rejected")

	_, err = NewEvaluator("unknown_var > 1")
	assert.Error(t, err)
}

package reconcile

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/catalogbridge/internal/target"
	"github.com/agentstation/catalogbridge/internal/utils/ptr"
)

func TestGross(t *testing.T) {
	tests := []struct {
		net, rate, want float64
	}{
		{100, 19, 119.00},
		{49.99, 7, 53.49},
		{10, 0, 10},
		{0.01, 19, 0.01},
		{84.03, 19, 100.00},
		{-10, 19, -11.9},
		{2.50, 19, 2.98},
		{7.50, 19, 8.93},
		{11.50, 19, 13.69},
		{1.05, 7, 1.12},
		{-2.50, 19, -2.98},
		{10, 19.5, 11.95},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Gross(tt.net, tt.rate), 1e-9, "net=%v rate=%v", tt.net, tt.rate)
	}
}

func TestGrossMatchesCentArithmetic(t *testing.T) {
	for _, rate := range []int64{7, 19} {
		var mismatches []float64
		for cents := int64(1); cents <= 100000; cents++ {
			net := float64(cents) / 100
			// half-up on hundredths of a cent
			want := float64((cents*(100+rate)+50)/100) / 100
			if got := Gross(net, float64(rate)); math.Abs(got-want) > 1e-9 {
				mismatches = append(mismatches, net)
			}
		}
		assert.Empty(t, mismatches, "rate %d%%", rate)
	}
}

func TestTaxTable(t *testing.T) {
	table := NewTaxTable([]target.Tax{
		{ID: "t19", TaxRate: 19},
		{ID: "t7", TaxRate: 7.0},
		{ID: "t19-dup", TaxRate: 19.00},
	})

	id, ok := table.Lookup(19.0)
	assert.True(t, ok)
	assert.Equal(t, "t19", id)
	_, ok = table.Lookup(5)
	assert.False(t, ok)
	assert.Equal(t, 2, table.Len())
}

func TestPriceComputer(t *testing.T) {
	c := NewPriceComputer(NewTaxTable([]target.Tax{{ID: "t19", TaxRate: 19}}), "eur")

	t.Run("computes gross", func(t *testing.T) {
		price, taxID, err := c.Compute(ptr.To(100.0), ptr.To(19.0))
		require.NoError(t, err)
		assert.Equal(t, "t19", taxID)
		assert.Equal(t, &target.Price{CurrencyID: "eur", Net: 100, Gross: 119, Linked: false}, price)
	})

	t.Run("no price keeps tax", func(t *testing.T) {
		price, taxID, err := c.Compute(nil, ptr.To(19.0))
		require.NoError(t, err)
		assert.Nil(t, price)
		assert.Equal(t, "t19", taxID)
	})

	t.Run("no rate yields nothing", func(t *testing.T) {
		price, taxID, err := c.Compute(ptr.To(100.0), nil)
		require.NoError(t, err)
		assert.Nil(t, price)
		assert.Empty(t, taxID)
	})

	t.Run("unknown rate fails", func(t *testing.T) {
		_, _, err := c.Compute(ptr.To(100.0), ptr.To(5.0))
		assert.EqualError(t, err, "no target tax rule for rate 5.00%")
	})
}

package reconcile

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/agentstation/catalogbridge/internal/target"
)

// TaxTable maps tax rate percentages onto target tax ids.
type TaxTable struct {
	byRate map[int64]string
}

// NewTaxTable indexes taxes by rate. When two rules share a rate the first wins.
func NewTaxTable(taxes []target.Tax) *TaxTable {
	t := &TaxTable{byRate: make(map[int64]string, len(taxes))}
	for _, tax := range taxes {
		key := rateKey(tax.TaxRate)
		if _, ok := t.byRate[key]; !ok {
			t.byRate[key] = tax.ID
		}
	}
	return t
}

// Lookup returns the tax id for an exact rate.
func (t *TaxTable) Lookup(rate float64) (string, bool) {
	id, ok := t.byRate[rateKey(rate)]
	return id, ok
}

// Len returns the number of distinct rates.
func (t *TaxTable) Len() int {
	return len(t.byRate)
}

// rateKey compares rates at hundredth-of-a-percent precision so "19.00" and 19 match.
func rateKey(rate float64) int64 {
	return decimal.NewFromFloat(rate).Shift(2).Round(0).IntPart()
}

// PriceComputer derives target prices and tax ids from legacy net prices.
type PriceComputer struct {
	taxes      *TaxTable
	currencyID string
}

// NewPriceComputer creates a computer for one currency.
func NewPriceComputer(taxes *TaxTable, currencyID string) *PriceComputer {
	return &PriceComputer{taxes: taxes, currencyID: currencyID}
}

// Compute returns the price and tax id for a product. A nil taxRate yields
// neither. A nil net yields no price but still resolves the tax id. A rate
// with no target tax rule is an error: an unknown tax id must never be sent.
func (c *PriceComputer) Compute(net, taxRate *float64) (*target.Price, string, error) {
	if taxRate == nil {
		return nil, "", nil
	}
	taxID, ok := c.taxes.Lookup(*taxRate)
	if !ok {
		return nil, "", fmt.Errorf("no target tax rule for rate %.2f%%", *taxRate)
	}
	if net == nil {
		return nil, taxID, nil
	}
	return &target.Price{
		CurrencyID: c.currencyID,
		Net:        *net,
		Gross:      Gross(*net, *taxRate),
		Linked:     false,
	}, taxID, nil
}

var hundred = decimal.NewFromInt(100)

// Gross applies a percentage tax rate to net, rounded half away from zero to
// cents. The arithmetic is decimal, so 2.50 at 19% is 2.975 exactly and
// rounds to 2.98.
func Gross(net, taxRate float64) float64 {
	factor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(taxRate).Div(hundred))
	return decimal.NewFromFloat(net).Mul(factor).Round(2).InexactFloat64()
}

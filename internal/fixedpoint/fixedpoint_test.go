package fixedpoint_test

import (
	"testing"

	"fenrir/internal/fixedpoint"

	"github.com/stretchr/testify/assert"
)

func TestPriceAddSaturates(t *testing.T) {
	assert.Equal(t, fixedpoint.MaxPrice, fixedpoint.MaxPrice.Add(1))
	assert.Equal(t, fixedpoint.MinPrice, fixedpoint.MinPrice.Add(-1))
	assert.Equal(t, fixedpoint.Price(7), fixedpoint.Price(3).Add(4))
}

func TestPriceSubSaturates(t *testing.T) {
	assert.Equal(t, fixedpoint.MinPrice, fixedpoint.MinPrice.Sub(1))
	assert.Equal(t, fixedpoint.MaxPrice, fixedpoint.MaxPrice.Sub(-1))
	assert.Equal(t, fixedpoint.Price(1), fixedpoint.Price(5).Sub(4))
}

func TestPriceValid(t *testing.T) {
	assert.True(t, fixedpoint.Price(1).Valid())
	assert.False(t, fixedpoint.Price(0).Valid())
	assert.False(t, fixedpoint.Price(-1).Valid())
}

func TestPriceCrossing(t *testing.T) {
	bid := fixedpoint.Price(100)
	assert.True(t, bid.CrossesAsk(99))
	assert.True(t, bid.CrossesAsk(100))
	assert.False(t, bid.CrossesAsk(101))

	ask := fixedpoint.Price(100)
	assert.True(t, ask.CrossesBid(101))
	assert.True(t, ask.CrossesBid(100))
	assert.False(t, ask.CrossesBid(99))
}

func TestQuantityAddSaturates(t *testing.T) {
	assert.Equal(t, fixedpoint.MaxQuantity, fixedpoint.MaxQuantity.Add(1))
	assert.Equal(t, fixedpoint.Quantity(9), fixedpoint.Quantity(4).Add(5))
}

func TestQuantitySubSaturates(t *testing.T) {
	assert.Equal(t, fixedpoint.Quantity(0), fixedpoint.Quantity(3).Sub(5))
	assert.Equal(t, fixedpoint.Quantity(2), fixedpoint.Quantity(5).Sub(3))
}

func TestQuantityMin(t *testing.T) {
	assert.Equal(t, fixedpoint.Quantity(3), fixedpoint.Quantity(3).Min(5))
	assert.Equal(t, fixedpoint.Quantity(5), fixedpoint.Quantity(8).Min(5))
}

func TestQuantityScaleSaturates(t *testing.T) {
	assert.Equal(t, fixedpoint.MaxQuantity, fixedpoint.MaxQuantity.Scale(2))
	assert.Equal(t, fixedpoint.Quantity(0), fixedpoint.Quantity(10).Scale(0))
	assert.Equal(t, fixedpoint.Quantity(30), fixedpoint.Quantity(10).Scale(3))
}

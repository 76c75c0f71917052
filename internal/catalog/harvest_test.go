package catalog

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHarvest(t *testing.T) {
	f, err := os.Open("testdata/search.html")
	require.NoError(t, err)
	defer f.Close()

	c, err := Harvest(f, "autotrader")
	require.NoError(t, err)
	assert.Equal(t, "autotrader", c.Retailer)

	makes, ok := c.Group("make")
	require.True(t, ok)
	assert.Equal(t, "Make", makes.Label)
	assert.Equal(t, "select", makes.Type)
	assert.Equal(t, []string{"GMC", "Ford", "Citroën"}, c.Options("make"))

	colors, ok := c.Group("extColor")
	require.True(t, ok)
	assert.Equal(t, "Exterior Color", colors.Label)
	assert.Equal(t, "checkbox", colors.Type)
	assert.Equal(t, []string{"Black", "White", "Red"}, c.Options("extColor"))
	assert.Equal(t, "RED", colors.Options[2].Value)

	drive, ok := c.Group("driveGroup")
	require.True(t, ok)
	assert.Equal(t, "radio", drive.Type)

	price, ok := c.Group("maxPrice")
	require.True(t, ok)
	assert.Equal(t, KindRange, price.Kind())
	assert.Equal(t, "Max price", price.Label)
	assert.JSONEq(t, `250000`, string(price.Range.Max))

	mileage, ok := c.Group("mileage")
	require.True(t, ok)
	assert.JSONEq(t, `"unlimited"`, string(mileage.Range.Max))

	_, ok = c.Group("noBounds")
	assert.False(t, ok)

	known, grounded := c.Knows("make", "citroen")
	assert.True(t, grounded)
	assert.True(t, known)
}

func TestHarvestEmptyPage(t *testing.T) {
	c, err := Harvest(strings.NewReader("<html><body><p>Access denied</p></body></html>"), "carvana")
	require.NoError(t, err)
	assert.True(t, c.Empty())
}

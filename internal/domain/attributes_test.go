package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributeAccumulator_AddIngredient(t *testing.T) {
	acc := NewAttributeAccumulator()

	assert.True(t, acc.AddIngredient("Water, Glycerin"))
	assert.False(t, acc.AddIngredient("Water, Glycerin"), "exact duplicate must be skipped")
	assert.True(t, acc.AddIngredient("water, glycerin"), "dedup is case-sensitive")
	assert.False(t, acc.AddIngredient("   "))
	assert.False(t, acc.AddIngredient(""))

	assert.Equal(t, []string{"Water, Glycerin", "water, glycerin"}, acc.Ingredients)
}

func TestAttributeAccumulator_AddAdditionalInfo(t *testing.T) {
	acc := NewAttributeAccumulator()

	acc.AddAdditionalInfo("Dermatologically tested")
	acc.AddAdditionalInfo("Dermatologically tested")
	acc.AddAdditionalInfo("For all skin types")

	assert.Equal(t, []string{"Dermatologically tested", "For all skin types"}, acc.AdditionalInfo)
}

func TestAttributeAccumulator_MaterialsKeepDuplicates(t *testing.T) {
	acc := NewAttributeAccumulator()

	acc.AddMaterials("plastic")
	acc.AddMaterials("plastic", "paper")

	assert.Equal(t, []string{"plastic", "plastic", "paper"}, acc.Packaging.Materials)
}

func TestAttributeAccumulator_RecyclableIsMonotonic(t *testing.T) {
	acc := NewAttributeAccumulator()

	acc.MarkRecyclable(false)
	assert.False(t, acc.Packaging.Recyclable)

	acc.MarkRecyclable(true)
	acc.MarkRecyclable(false)
	assert.True(t, acc.Packaging.Recyclable)
}

func TestAttributeAccumulator_EmptySerializesAsArrays(t *testing.T) {
	data, err := json.Marshal(NewAttributeAccumulator())
	require.NoError(t, err)

	assert.JSONEq(t,
		`{"ingredients":[],"packaging":{"materials":[],"recyclable":false},"additionalInfo":[]}`,
		string(data))
}

func TestAttributeAccumulator_DedupSurvivesJSONRoundTrip(t *testing.T) {
	acc := NewAttributeAccumulator()
	acc.AddIngredient("Aqua")

	data, err := json.Marshal(acc)
	require.NoError(t, err)

	var decoded AttributeAccumulator
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.False(t, decoded.AddIngredient("Aqua"))
	assert.True(t, decoded.AddIngredient("Glycerin"))
	assert.Equal(t, []string{"Aqua", "Glycerin"}, decoded.Ingredients)
}

func TestAttributeAccumulator_Attributes(t *testing.T) {
	acc := NewAttributeAccumulator()
	acc.AddIngredient("Sugar")
	acc.AddAdditionalInfo("Vegan")
	acc.AddMaterials("glass")
	acc.MarkRecyclable(true)

	attrs := acc.Attributes()
	assert.Equal(t, []string{"Sugar"}, attrs.Ingredients)
	assert.Equal(t, []string{"Vegan"}, attrs.AdditionalInfo)
	assert.Equal(t, []string{"glass"}, attrs.Packaging.Materials)
	assert.True(t, attrs.Packaging.Recyclable)

	// The copy must not alias the accumulator.
	attrs.Ingredients[0] = "changed"
	assert.Equal(t, "Sugar", acc.Ingredients[0])
}

func TestNeedsFallback(t *testing.T) {
	withIngredients := NewAttributeAccumulator()
	withIngredients.AddIngredient("Salt")

	infoOnly := NewAttributeAccumulator()
	infoOnly.AddAdditionalInfo("Made in India")
	infoOnly.AddMaterials("plastic")

	tests := []struct {
		name string
		acc  *AttributeAccumulator
		want bool
	}{
		{"nil sentinel", nil, true},
		{"empty accumulator", NewAttributeAccumulator(), true},
		{"info and packaging but no ingredients", infoOnly, true},
		{"has ingredients", withIngredients, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsFallback(tt.acc))
		})
	}
}

func TestIsPackagingMaterial(t *testing.T) {
	for _, m := range PackagingMaterials {
		assert.True(t, IsPackagingMaterial(m), m)
	}
	assert.False(t, IsPackagingMaterial("aluminium"))
	assert.False(t, IsPackagingMaterial("Plastic"))
}

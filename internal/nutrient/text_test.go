package nutrient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromText_BasicExtraction(t *testing.T) {
	text := "Besin değerleri 100g başına Enerji: 250 kcal Yağ: 12 g Karbonhidrat: 30 g Protein: 5 g Tuz: 0,8 g"
	d := FromText(text, DefaultKeywords())

	assert.InDelta(t, 250.0, d.EnergyKcal, 0.01)
	assert.InDelta(t, 12.0, d.Fat, 0.01)
	assert.InDelta(t, 30.0, d.Carbohydrates, 0.01)
	assert.InDelta(t, 5.0, d.Proteins, 0.01)
	assert.InDelta(t, 0.8, d.Salt, 0.01)
}

func TestTextValues_Per100gSectionPreferred(t *testing.T) {
	// The per-portion value appears first in the text, but the per-100g
	// section wins because extraction searches those windows first.
	text := "porsiyon (25g) protein: 2 g ... " +
		"çok uzun bir metin aralığı burada devam ediyor, içerik açıklamaları ve pazarlama " +
		"cümleleri etiketin büyük bölümünü dolduruyor, bu bölümde başka besin değeri yok, " +
		"metin uzadıkça per-porsiyon değeri arama penceresinin dışında kalıyor ve yalnızca " +
		"aşağıdaki bölüm dikkate alınıyor. " +
		"değerler 100g başına protein: 8 g yağ: 3 g"
	values := TextValues(text, DefaultKeywords())

	require.Contains(t, values, "proteins")
	assert.InDelta(t, 8.0, values["proteins"], 0.01)
}

func TestTextValues_FullTextFallback(t *testing.T) {
	// No per-100g marker at all: the whole text is one section.
	values := TextValues("şeker: 22 g", DefaultKeywords())
	assert.InDelta(t, 22.0, values["sugars"], 0.01)
}

func TestExtractIngredients(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "turkish marker",
			text: "İçindekiler: buğday unu, şeker; bitkisel yağ, tuz\nNet: 100g",
			want: []string{"buğday unu", "şeker", "bitkisel yağ", "tuz"},
		},
		{
			name: "english marker",
			text: "Ingredients: wheat flour, sugar, salt",
			want: []string{"wheat flour", "sugar", "salt"},
		},
		{
			name: "no marker",
			text: "Net weight 100g",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractIngredients(tt.text))
		})
	}
}

func TestExtractIngredients_PreservesOrder(t *testing.T) {
	got := ExtractIngredients("içindekiler: elma, şeker, limon")
	require.Len(t, got, 3)
	assert.Equal(t, "elma", got[0])
	assert.Equal(t, "limon", got[2])
}

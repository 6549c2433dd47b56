package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/subscription-manager-api/internal/domain"
)

func TestFixedNormalizer_ToAccountingCurrency(t *testing.T) {
	normalizer := NewFixedNormalizer("brl", map[string]float64{
		"usd": 5.12,
		"EUR": 5.47,
	})

	tests := []struct {
		name     string
		amount   float64
		currency string
		expected float64
	}{
		{
			name:     "Converte pela taxa fixa com arredondamento a duas casas",
			amount:   10.99,
			currency: "USD",
			expected: 56.27, // 10.99 * 5.12 = 56.2688
		},
		{
			name:     "Moeda contábil passa direto",
			amount:   55.9,
			currency: "BRL",
			expected: 55.9,
		},
		{
			name:     "Moeda vazia é tratada como a contábil",
			amount:   55.9,
			currency: "",
			expected: 55.9,
		},
		{
			name:     "Código em minúsculas e com espaços",
			amount:   10,
			currency: " eur ",
			expected: 54.7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			converted, err := normalizer.ToAccountingCurrency(tt.amount, tt.currency)

			assert.NoError(t, err)
			assert.Equal(t, tt.expected, converted)
		})
	}
}

func TestFixedNormalizer_MoedaDesconhecida(t *testing.T) {
	normalizer := NewFixedNormalizer("BRL", map[string]float64{"USD": 5.12})

	converted, err := normalizer.ToAccountingCurrency(10, "ARS")

	assert.Zero(t, converted)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFixedNormalizer_AccountingCurrency(t *testing.T) {
	normalizer := NewFixedNormalizer("brl", nil)

	assert.Equal(t, "BRL", normalizer.AccountingCurrency())
}

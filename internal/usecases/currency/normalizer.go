// Package currency normaliza valores monetários de moedas arbitrárias para a
// moeda contábil comum usada nos agregados das categorias.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vfg2006/subscription-manager-api/internal/domain"
)

// Normalizer converte um valor em uma moeda arbitrária para a moeda contábil.
// O gerenciador de contadores nunca faz matemática de câmbio: todo valor que
// chega nele já passou por aqui.
type Normalizer interface {
	ToAccountingCurrency(amount float64, currencyCode string) (float64, error)
	AccountingCurrency() string
}

// FixedNormalizer converte usando uma tabela de taxas fixa carregada da
// configuração. É também a implementação de contingência quando o provedor de
// câmbio ao vivo está indisponível.
type FixedNormalizer struct {
	accountingCurrency string
	rates              map[string]decimal.Decimal
}

func NewFixedNormalizer(accountingCurrency string, rates map[string]float64) *FixedNormalizer {
	decimalRates := make(map[string]decimal.Decimal, len(rates))
	for code, rate := range rates {
		decimalRates[strings.ToUpper(code)] = decimal.NewFromFloat(rate)
	}

	return &FixedNormalizer{
		accountingCurrency: strings.ToUpper(accountingCurrency),
		rates:              decimalRates,
	}
}

func (n *FixedNormalizer) AccountingCurrency() string {
	return n.accountingCurrency
}

// ToAccountingCurrency converte o valor para a moeda contábil com
// arredondamento a duas casas decimais
func (n *FixedNormalizer) ToAccountingCurrency(amount float64, currencyCode string) (float64, error) {
	code := strings.ToUpper(strings.TrimSpace(currencyCode))
	if code == "" || code == n.accountingCurrency {
		return round2(decimal.NewFromFloat(amount)), nil
	}

	rate, ok := n.rates[code]
	if !ok {
		return 0, domain.NewValidationError("currency", "moeda desconhecida: "+code)
	}

	converted := decimal.NewFromFloat(amount).Mul(rate)
	return round2(converted), nil
}

func round2(value decimal.Decimal) float64 {
	result, _ := value.Round(2).Float64()
	return result
}

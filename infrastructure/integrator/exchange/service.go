// Package exchange implementa o normalizador de moedas com taxas ao vivo,
// cache em Redis e contingência na tabela fixa da configuração.
package exchange

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/subscription-manager-api/infrastructure/integrator/exchange/exchangeclient"
	"github.com/vfg2006/subscription-manager-api/internal/config"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/currency"
)

const cacheKeyPrefix = "fx:rates"

// Service implementa currency.Normalizer consultando o provedor de câmbio,
// com as taxas em cache no Redis pelo TTL configurado. Qualquer falha na
// consulta ou no cache cai para a tabela fixa — a conversão nunca bloqueia
// uma renovação por indisponibilidade do provedor.
type Service struct {
	client      exchangeclient.Client
	redisClient *redis.Client
	fallback    *currency.FixedNormalizer
	accounting  string
	cacheTTL    time.Duration
}

func New(
	cfg *config.Config,
	client exchangeclient.Client,
	redisClient *redis.Client,
	fallback *currency.FixedNormalizer,
) *Service {
	return &Service{
		client:      client,
		redisClient: redisClient,
		fallback:    fallback,
		accounting:  strings.ToUpper(cfg.Accounting.Currency),
		cacheTTL:    cfg.Exchange.CacheTTL,
	}
}

func (s *Service) AccountingCurrency() string {
	return s.accounting
}

// ToAccountingCurrency converte o valor usando a taxa ao vivo (unidades da
// moeda por unidade da moeda contábil), arredondando a duas casas decimais
func (s *Service) ToAccountingCurrency(amount float64, currencyCode string) (float64, error) {
	code := strings.ToUpper(strings.TrimSpace(currencyCode))
	if code == "" || code == s.accounting {
		result, _ := decimal.NewFromFloat(amount).Round(2).Float64()
		return result, nil
	}

	rate, err := s.rateFor(context.Background(), code)
	if err != nil {
		logrus.WithError(err).WithField("currency", code).
			Warn("Falha ao obter taxa de câmbio ao vivo, usando tabela fixa")
		return s.fallback.ToAccountingCurrency(amount, currencyCode)
	}

	converted := decimal.NewFromFloat(amount).DivRound(rate, 6)
	result, _ := converted.Round(2).Float64()
	return result, nil
}

func (s *Service) rateFor(ctx context.Context, code string) (decimal.Decimal, error) {
	key := fmt.Sprintf("%s:%s:%s", cacheKeyPrefix, s.accounting, code)

	cached, err := s.redisClient.Get(ctx, key).Result()
	if err == nil {
		rate, parseErr := decimal.NewFromString(cached)
		if parseErr == nil && rate.IsPositive() {
			return rate, nil
		}
	} else if err != redis.Nil {
		logrus.WithError(err).Warn("Falha ao ler cache de taxas de câmbio")
	}

	rates, err := s.client.GetRates(ctx, s.accounting)
	if err != nil {
		return decimal.Zero, err
	}

	s.cacheRates(ctx, rates)

	rate, ok := rates[code]
	if !ok || rate <= 0 {
		return decimal.Zero, fmt.Errorf("provedor de câmbio não cobre a moeda %s", code)
	}

	return decimal.NewFromFloat(rate), nil
}

func (s *Service) cacheRates(ctx context.Context, rates map[string]float64) {
	for code, rate := range rates {
		if rate <= 0 {
			continue
		}

		key := fmt.Sprintf("%s:%s:%s", cacheKeyPrefix, s.accounting, code)
		value := strconv.FormatFloat(rate, 'f', -1, 64)

		if err := s.redisClient.Set(ctx, key, value, s.cacheTTL).Err(); err != nil {
			logrus.WithError(err).Warn("Falha ao gravar cache de taxas de câmbio")
			return
		}
	}
}

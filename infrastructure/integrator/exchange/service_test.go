package exchange

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/subscription-manager-api/infrastructure/integrator/exchange/exchangeclient/mocks"
	"github.com/vfg2006/subscription-manager-api/internal/config"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/currency"
	"go.uber.org/mock/gomock"
)

func newTestService(t *testing.T, ctrl *gomock.Controller) (*Service, *mocks.MockClient, *miniredis.Miniredis) {
	server := miniredis.RunT(t)

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	client := mocks.NewMockClient(ctrl)
	fallback := currency.NewFixedNormalizer("BRL", map[string]float64{"USD": 5})

	cfg := &config.Config{
		Accounting: config.Accounting{Currency: "BRL"},
		Exchange:   config.Exchange{CacheTTL: time.Hour},
	}

	return New(cfg, client, redisClient, fallback), client, server
}

func TestService_ToAccountingCurrency_UsaOCacheQuandoDisponivel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, _, server := newTestService(t, ctrl)

	// Taxa já em cache: o provedor nunca é consultado
	require.NoError(t, server.Set("fx:rates:BRL:USD", "0.2"))

	converted, err := service.ToAccountingCurrency(10, "USD")

	assert.NoError(t, err)
	assert.Equal(t, 50.0, converted)
}

func TestService_ToAccountingCurrency_ConsultaOProvedorEGravaOCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, client, server := newTestService(t, ctrl)

	client.EXPECT().
		GetRates(gomock.Any(), "BRL").
		Return(map[string]float64{"USD": 0.2, "ARS": 250}, nil)

	converted, err := service.ToAccountingCurrency(10, "USD")

	assert.NoError(t, err)
	assert.Equal(t, 50.0, converted)

	// Todas as taxas retornadas ficam em cache para as próximas conversões
	cached, err := server.Get("fx:rates:BRL:USD")
	require.NoError(t, err)
	assert.Equal(t, "0.2", cached)

	cached, err = server.Get("fx:rates:BRL:ARS")
	require.NoError(t, err)
	assert.Equal(t, "250", cached)
}

func TestService_ToAccountingCurrency_ContingenciaNaTabelaFixa(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, client, _ := newTestService(t, ctrl)

	client.EXPECT().
		GetRates(gomock.Any(), "BRL").
		Return(nil, errors.New("provedor indisponível"))

	// Falha no provedor: converte pela tabela fixa (10 * 5)
	converted, err := service.ToAccountingCurrency(10, "USD")

	assert.NoError(t, err)
	assert.Equal(t, 50.0, converted)
}

func TestService_ToAccountingCurrency_MoedaForaDaCoberturaDoProvedor(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, client, _ := newTestService(t, ctrl)

	client.EXPECT().
		GetRates(gomock.Any(), "BRL").
		Return(map[string]float64{"ARS": 250}, nil)

	// Provedor não cobre USD: cai para a tabela fixa
	converted, err := service.ToAccountingCurrency(10, "USD")

	assert.NoError(t, err)
	assert.Equal(t, 50.0, converted)
}

func TestService_ToAccountingCurrency_MoedaContabilPassaDireto(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, _, _ := newTestService(t, ctrl)

	converted, err := service.ToAccountingCurrency(55.9, "brl")

	assert.NoError(t, err)
	assert.Equal(t, 55.9, converted)
}

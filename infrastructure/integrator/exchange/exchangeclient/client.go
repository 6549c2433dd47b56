package exchangeclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/vfg2006/subscription-manager-api/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client busca a tabela de taxas de câmbio de um provedor externo
type Client interface {
	GetRates(ctx context.Context, baseCurrency string) (map[string]float64, error)
}

type ExchangeClient struct {
	httpClient *http.Client
	config     *config.Config
}

func NewClient(cfg *config.Config) Client {
	timeout := cfg.Exchange.HTTPTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &ExchangeClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		config: cfg,
	}
}

type ratesResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

// GetRates retorna as taxas cotadas como unidades de cada moeda por uma
// unidade da moeda base
func (c *ExchangeClient) GetRates(ctx context.Context, baseCurrency string) (map[string]float64, error) {
	url := fmt.Sprintf("%s/latest/%s", c.config.Exchange.BaseURL, baseCurrency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao montar requisição de taxas de câmbio")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao consultar provedor de câmbio")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("provedor de câmbio respondeu com status %s", resp.Status)
	}

	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "erro ao decodificar resposta do provedor de câmbio")
	}

	if body.Result != "success" || len(body.Rates) == 0 {
		return nil, errors.Errorf("provedor de câmbio retornou resultado inesperado: %s", body.Result)
	}

	return body.Rates, nil
}

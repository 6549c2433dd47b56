package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App                App                `mapstructure:",squash"`
	Server             Server             `mapstructure:",squash"`
	Firestore          Firestore          `mapstructure:",squash"`
	Redis              Redis              `mapstructure:",squash"`
	Accounting         Accounting         `mapstructure:",squash"`
	Exchange           Exchange           `mapstructure:",squash"`
	ReconciliationSync ReconciliationSync `mapstructure:",squash"`
	Notifications      Notifications      `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Firestore struct {
	ProjectID       string `mapstructure:"firestore_project_id"`
	CredentialsFile string `mapstructure:"firestore_credentials_file"`
	// EmulatorHost permite apontar para o emulador local em desenvolvimento
	EmulatorHost string `mapstructure:"firestore_emulator_host"`
}

type Redis struct {
	Addr     string `mapstructure:"redis_addr"`
	Password string `mapstructure:"redis_password"`
	DB       int    `mapstructure:"redis_db"`
}

type Accounting struct {
	// Currency é a moeda contábil comum usada nos agregados de receita e
	// despesa das categorias
	Currency string `mapstructure:"accounting_currency"`
	// FixedRates é a tabela de câmbio de contingência no formato
	// "BRL=0.18,ARS=0.0011" (unidades da moeda contábil por unidade da moeda)
	FixedRates string `mapstructure:"accounting_fixed_rates"`
}

type Exchange struct {
	Enabled     bool          `mapstructure:"exchange_enabled"`
	BaseURL     string        `mapstructure:"exchange_base_url"`
	CacheTTL    time.Duration `mapstructure:"exchange_cache_ttl"`
	HTTPTimeout time.Duration `mapstructure:"exchange_http_timeout"`
}

type ReconciliationSync struct {
	CronSchedule string `mapstructure:"reconciliation_sync_cron"`
	Enabled      bool   `mapstructure:"reconciliation_sync_enabled"`
}

type Notifications struct {
	// LookaheadDays limita a listagem de notificações a donos vencendo dentro
	// desta janela
	LookaheadDays int `mapstructure:"notifications_lookahead_days"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("FIRESTORE_PROJECT_ID", "subscription-manager-local")
	viper.SetDefault("FIRESTORE_CREDENTIALS_FILE", "")
	viper.SetDefault("FIRESTORE_EMULATOR_HOST", "")

	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)

	viper.SetDefault("ACCOUNTING_CURRENCY", "USD")
	viper.SetDefault("ACCOUNTING_FIXED_RATES", "USD=1,BRL=0.18,ARS=0.0011,EUR=1.08")

	viper.SetDefault("EXCHANGE_ENABLED", false)
	viper.SetDefault("EXCHANGE_BASE_URL", "https://open.er-api.com/v6")
	viper.SetDefault("EXCHANGE_CACHE_TTL", "6h")
	viper.SetDefault("EXCHANGE_HTTP_TIMEOUT", "10s")

	viper.SetDefault("RECONCILIATION_SYNC_CRON", "0 5 * * *") // Todos os dias às 5h da manhã
	viper.SetDefault("RECONCILIATION_SYNC_ENABLED", false)

	viper.SetDefault("NOTIFICATIONS_LOOKAHEAD_DAYS", 30)

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	// Configurar valores padrão
	SetDefaults()

	// Configurar o Viper
	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv() // Isso permite que o Viper leia variáveis de ambiente

	// Tentar ler o arquivo .env com o Viper (opcional, já que usamos godotenv)
	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	return config, nil
}

// ParseFixedRates converte a tabela "BRL=0.18,ARS=0.0011" do .env em um mapa
// código de moeda → taxa para a moeda contábil
func ParseFixedRates(raw string) map[string]float64 {
	rates := make(map[string]float64)

	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			continue
		}

		rate, err := strconv.ParseFloat(parts[1], 64)
		if err != nil || rate <= 0 {
			logrus.Warnf("Taxa de câmbio fixa inválida ignorada: %s", pair)
			continue
		}

		rates[strings.ToUpper(parts[0])] = rate
	}

	return rates
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../.env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}

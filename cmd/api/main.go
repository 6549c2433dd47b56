package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/subscription-manager-api/infrastructure/database/firestoredb"
	"github.com/vfg2006/subscription-manager-api/infrastructure/integrator/exchange"
	"github.com/vfg2006/subscription-manager-api/infrastructure/integrator/exchange/exchangeclient"
	"github.com/vfg2006/subscription-manager-api/infrastructure/repository"
	"github.com/vfg2006/subscription-manager-api/internal/api"
	"github.com/vfg2006/subscription-manager-api/internal/config"
	"github.com/vfg2006/subscription-manager-api/internal/scheduler"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/aggregating"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/cataloging"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/currency"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/ledgering"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/notifying"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/reconciling"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/renewing"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := storeconn(ctx, cfg.Firestore)
	defer conn.Close()

	categoryRepo := repository.NewCategoryRepository(conn)
	serviceRepo := repository.NewServiceRepository(conn)
	saleRepo := repository.NewSaleRepository(conn)
	servicePaymentRepo := repository.NewServicePaymentRepository(conn)
	salePaymentRepo := repository.NewSalePaymentRepository(conn)
	notificationRepo := repository.NewNotificationRepository(conn)

	normalizer := buildNormalizer(cfg)

	ledgerService := ledgering.NewService(servicePaymentRepo, salePaymentRepo)
	counterService := aggregating.NewService(categoryRepo)
	notifierService := notifying.NewService(
		notificationRepo,
		serviceRepo,
		saleRepo,
		cfg.Notifications.LookaheadDays,
	)

	renewalService := renewing.NewService(
		serviceRepo,
		saleRepo,
		categoryRepo,
		ledgerService,
		counterService,
		notifierService,
		normalizer,
	)

	catalogService := cataloging.NewService(categoryRepo)

	reconcilerService := reconciling.NewService(categoryRepo, serviceRepo, saleRepo)

	reconciliationSyncService := scheduler.NewReconciliationSyncService(reconcilerService, cfg)

	if err := reconciliationSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de reconciliação")
	} else {
		logrus.Info("Agendador de reconciliação iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		catalogService,
		renewalService,
		notifierService,
		reconciliationSyncService,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// storeconn abre a conexão com o document store
func storeconn(ctx context.Context, cfg config.Firestore) *firestoredb.Connection {
	conn, err := firestoredb.NewConnection(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao Firestore")
	}

	logrus.WithField("project_id", cfg.ProjectID).Info("Conexão com o Firestore estabelecida com sucesso")
	return conn
}

// buildNormalizer monta o normalizador de moedas: tabela fixa por padrão,
// cotação ao vivo com cache em Redis quando habilitada
func buildNormalizer(cfg *config.Config) currency.Normalizer {
	fixed := currency.NewFixedNormalizer(
		cfg.Accounting.Currency,
		config.ParseFixedRates(cfg.Accounting.FixedRates),
	)

	if !cfg.Exchange.Enabled {
		logrus.Info("Normalizador de moedas usando tabela de câmbio fixa")
		return fixed
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	logrus.WithField("base_url", cfg.Exchange.BaseURL).Info("Normalizador de moedas usando cotação ao vivo com cache")
	return exchange.New(cfg, exchangeclient.NewClient(cfg), redisClient, fixed)
}

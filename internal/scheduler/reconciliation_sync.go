package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/subscription-manager-api/internal/config"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/reconciling"
)

// ReconciliationSyncConfig representa a configuração do agendador de reconciliação
type ReconciliationSyncConfig struct {
	CronSchedule string
	SyncEnabled  bool
}

// ReconciliationSyncService gerencia o agendamento e execução da varredura de
// reconciliação dos agregados desnormalizados
type ReconciliationSyncService struct {
	scheduler           *gocron.Scheduler
	config              ReconciliationSyncConfig
	reconciler          reconciling.Reconciler
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastReport          *reconciling.Report
}

// NewReconciliationSyncService cria uma nova instância do serviço de reconciliação agendada
func NewReconciliationSyncService(
	reconciler reconciling.Reconciler,
	appConfig *config.Config,
) *ReconciliationSyncService {
	syncConfig := ReconciliationSyncConfig{
		CronSchedule: appConfig.ReconciliationSync.CronSchedule,
		SyncEnabled:  appConfig.ReconciliationSync.Enabled,
	}

	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule": syncConfig.CronSchedule,
		"sync_enabled":  syncConfig.SyncEnabled,
	}).Info("Configuração do agendador de reconciliação carregada")

	return &ReconciliationSyncService{
		scheduler:   scheduler,
		config:      syncConfig,
		reconciler:  reconciler,
		syncRunning: false,
	}
}

// Start inicia o agendador
func (s *ReconciliationSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Reconciliação agendada desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de reconciliação")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.runReconciliation(context.Background())
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar reconciliação: %w", err)
	}

	s.scheduler.StartAsync()

	// Configurar o cancelamento do agendador quando o contexto for cancelado
	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de reconciliação")
		s.scheduler.Stop()
	}()

	return nil
}

// runReconciliation executa uma varredura completa, garantindo que apenas uma
// rode por vez
func (s *ReconciliationSyncService) runReconciliation(ctx context.Context) {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Reconciliação já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	s.syncMutex.Unlock()

	startTime := time.Now()
	s.lastSyncStartedAt = startTime

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.syncMutex.Unlock()
	}()

	logrus.Info("Iniciando varredura de reconciliação dos agregados")

	report, err := s.reconciler.Resync(ctx)
	if err != nil {
		logrus.WithError(err).Error("Erro na varredura de reconciliação")
		return
	}

	s.lastReport = report
	s.lastSyncCompletedAt = time.Now()

	logrus.WithFields(logrus.Fields{
		"duration":            report.Duration.String(),
		"categories_repaired": report.CategoriesRepaired,
		"services_repaired":   report.ServicesRepaired,
		"drifts_detected":     report.DriftsDetected,
	}).Info("Varredura de reconciliação concluída")
}

// TriggerManualSync inicia manualmente uma varredura de reconciliação
func (s *ReconciliationSyncService) TriggerManualSync() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Reconciliação já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando reconciliação manual")
	go s.runReconciliation(context.Background())
}

// GetStatus retorna o status atual do agendador
func (s *ReconciliationSyncService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	status := map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_running":           s.syncRunning,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
	}

	if s.lastReport != nil {
		status["last_categories_repaired"] = s.lastReport.CategoriesRepaired
		status["last_services_repaired"] = s.lastReport.ServicesRepaired
		status["last_drifts_detected"] = s.lastReport.DriftsDetected
	}

	return status
}

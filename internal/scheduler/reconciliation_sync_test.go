package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/subscription-manager-api/internal/config"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/reconciling"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/reconciling/mocks"
	"go.uber.org/mock/gomock"
)

func newTestConfig(enabled bool) *config.Config {
	return &config.Config{
		ReconciliationSync: config.ReconciliationSync{
			CronSchedule: "0 5 * * *",
			Enabled:      enabled,
		},
	}
}

func TestReconciliationSyncService_TriggerManualSync(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reconciler := mocks.NewMockReconciler(ctrl)
	service := NewReconciliationSyncService(reconciler, newTestConfig(false))

	done := make(chan struct{})
	reconciler.EXPECT().
		Resync(gomock.Any()).
		DoAndReturn(func(_ context.Context) (*reconciling.Report, error) {
			defer close(done)
			return &reconciling.Report{
				CategoriesRepaired: 2,
				ServicesRepaired:   1,
				Duration:           time.Second,
			}, nil
		})

	service.TriggerManualSync()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("reconciliação manual não executou dentro do prazo")
	}

	// O relatório aparece no status assim que a varredura termina
	assert.Eventually(t, func() bool {
		status := service.GetStatus()
		repaired, ok := status["last_categories_repaired"]
		return ok && repaired == 2
	}, 5*time.Second, 10*time.Millisecond)
}

func TestReconciliationSyncService_GetStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reconciler := mocks.NewMockReconciler(ctrl)
	service := NewReconciliationSyncService(reconciler, newTestConfig(true))

	status := service.GetStatus()

	assert.Equal(t, true, status["sync_enabled"])
	assert.Equal(t, "0 5 * * *", status["sync_cron"])
	assert.Equal(t, false, status["sync_running"])
	assert.NotContains(t, status, "last_categories_repaired")
}

func TestReconciliationSyncService_StartDesabilitado(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Desabilitado por configuração: nada é agendado e Resync nunca roda
	reconciler := mocks.NewMockReconciler(ctrl)
	service := NewReconciliationSyncService(reconciler, newTestConfig(false))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assert.NoError(t, service.Start(ctx))
}

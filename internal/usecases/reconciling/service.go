// Package reconciling recalcula a verdade a partir das vendas ativas e
// sobrescreve os contadores desnormalizados de serviços e categorias. É a
// única operação fortemente consistente do sistema e o mecanismo designado
// de recuperação para qualquer deriva dos incrementos de melhor esforço.
package reconciling

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/subscription-manager-api/infrastructure/database/firestoredb"
	"github.com/vfg2006/subscription-manager-api/infrastructure/repository"
	"github.com/vfg2006/subscription-manager-api/internal/domain"
)

// Report resume uma varredura de reconciliação
type Report struct {
	CategoriesRepaired int           `json:"categories_repaired"`
	ServicesRepaired   int           `json:"services_repaired"`
	DriftsDetected     int           `json:"drifts_detected"`
	Duration           time.Duration `json:"duration"`
}

// Reconciler é o contrato consumido pelo agendador e pelo handler de cron
type Reconciler interface {
	Resync(ctx context.Context) (*Report, error)
}

type Service struct {
	categoryRepo repository.CategoryRepository
	serviceRepo  repository.ServiceRepository
	saleRepo     repository.SaleRepository
}

func NewService(
	categoryRepo repository.CategoryRepository,
	serviceRepo repository.ServiceRepository,
	saleRepo repository.SaleRepository,
) *Service {
	return &Service{
		categoryRepo: categoryRepo,
		serviceRepo:  serviceRepo,
		saleRepo:     saleRepo,
	}
}

// categoryTruth acumula a verdade recomputada de uma categoria
type categoryTruth struct {
	totalServices  int64
	activeServices int64
	freeSlots      int64
}

// Resync recomputa a ocupação real a partir das vendas ativas e sobrescreve
// (nunca incrementa) os campos divergentes. A varredura é idempotente e pode
// rodar junto com tráfego ao vivo, aceitando que uma correção possa ficar
// obsoleta imediatamente.
func (s *Service) Resync(ctx context.Context) (*Report, error) {
	startedAt := time.Now()
	report := &Report{}

	// Passo 1: verdade de ocupação a partir das vendas ativas com perfil
	sales, err := s.saleRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	occupiedByService := make(map[string]int64)
	for _, sale := range sales {
		if sale.OccupiesSlot() {
			occupiedByService[sale.ServiceID]++
		}
	}

	// Passo 2: corrige a ocupação armazenada de cada serviço
	services, err := s.serviceRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	truthByCategory := make(map[string]*categoryTruth)
	for _, service := range services {
		trueOccupied := occupiedByService[service.ID]

		if trueOccupied > service.ProfileSlotsTotal {
			drift := &domain.DriftError{
				Collection: firestoredb.CollectionServices,
				ID:         service.ID,
				Field:      domain.ServiceFieldProfileSlotsOccupied,
				Stored:     service.ProfileSlotsOccupied,
				Expected:   trueOccupied,
			}
			logrus.WithError(drift).Error("Ocupação real acima do total de vagas do serviço")
			report.DriftsDetected++
		}

		if service.ProfileSlotsOccupied != trueOccupied {
			if err := s.serviceRepo.Update(ctx, service.ID, map[string]interface{}{
				domain.ServiceFieldProfileSlotsOccupied: trueOccupied,
			}); err != nil {
				return nil, err
			}

			logrus.WithFields(logrus.Fields{
				"service_id": service.ID,
				"stored":     service.ProfileSlotsOccupied,
				"true":       trueOccupied,
			}).Info("Ocupação do serviço corrigida")

			service.ProfileSlotsOccupied = trueOccupied
			report.ServicesRepaired++
		}

		truth, ok := truthByCategory[service.CategoryID]
		if !ok {
			truth = &categoryTruth{}
			truthByCategory[service.CategoryID] = truth
		}

		truth.totalServices++
		if service.Active {
			truth.activeServices++
			truth.freeSlots += service.FreeSlots()
		}
	}

	// Passo 3: sobrescreve os agregados divergentes das categorias
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, category := range categories {
		truth, ok := truthByCategory[category.ID]
		if !ok {
			truth = &categoryTruth{}
		}

		patch := make(map[string]interface{})
		if category.FreeProfileSlotsTotal != truth.freeSlots {
			patch[domain.CategoryFieldFreeProfileSlotsTotal] = truth.freeSlots
		}
		if category.TotalServices != truth.totalServices {
			patch[domain.CategoryFieldTotalServices] = truth.totalServices
		}
		if category.ActiveServices != truth.activeServices {
			patch[domain.CategoryFieldActiveServices] = truth.activeServices
		}

		if len(patch) == 0 {
			continue
		}

		if err := s.categoryRepo.Update(ctx, category.ID, patch); err != nil {
			return nil, err
		}

		logrus.WithFields(logrus.Fields{
			"category_id": category.ID,
			"fields":      len(patch),
		}).Info("Agregados da categoria corrigidos")

		report.CategoriesRepaired++
	}

	report.Duration = time.Since(startedAt)
	return report, nil
}

// Package cataloging expõe o CRUD fino de categorias. Os agregados
// desnormalizados da categoria nunca são escritos por aqui; eles pertencem ao
// gerenciador de contadores e ao job de reconciliação.
package cataloging

import (
	"context"

	"github.com/vfg2006/subscription-manager-api/infrastructure/repository"
	"github.com/vfg2006/subscription-manager-api/internal/domain"
)

type Cataloger interface {
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*domain.Category, error)
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	UpdateCategory(ctx context.Context, id string, input UpdateCategoryInput) error
	// DisableCategory desativa a categoria sem removê-la, preservando os
	// serviços e vendas filhos e os agregados acumulados
	DisableCategory(ctx context.Context, id string) error
}

type Service struct {
	categoryRepo repository.CategoryRepository
}

func NewService(categoryRepo repository.CategoryRepository) Cataloger {
	return &Service{
		categoryRepo: categoryRepo,
	}
}

type CreateCategoryInput struct {
	Name  string        `json:"name"`
	Plans []domain.Plan `json:"plans"`
}

type UpdateCategoryInput struct {
	Name  *string       `json:"name"`
	Plans []domain.Plan `json:"plans"`
}

func (i CreateCategoryInput) validate() error {
	if i.Name == "" {
		return domain.NewValidationError("name", "nome da categoria é obrigatório")
	}
	return validatePlans(i.Plans)
}

func validatePlans(plans []domain.Plan) error {
	for _, plan := range plans {
		if plan.Name == "" {
			return domain.NewValidationError("plans.name", "nome do plano é obrigatório")
		}
		if plan.Price < 0 {
			return domain.NewValidationError("plans.price", "preço do plano não pode ser negativo")
		}
		if plan.Currency == "" {
			return domain.NewValidationError("plans.currency", "moeda do plano é obrigatória")
		}
		if !plan.BillingCycle.Valid() {
			return domain.NewValidationError("plans.billingCycle", "ciclo de cobrança inválido")
		}
		if plan.Kind != domain.PlanKindProfile && plan.Kind != domain.PlanKindAccount {
			return domain.NewValidationError("plans.kind", "tipo de plano inválido")
		}
	}
	return nil
}

func (s *Service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*domain.Category, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	category := &domain.Category{
		Name:   input.Name,
		Plans:  input.Plans,
		Active: true,
	}

	if _, err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

func (s *Service) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.NewNotFoundError("categories", id)
	}

	return category, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *Service) UpdateCategory(ctx context.Context, id string, input UpdateCategoryInput) error {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}

	patch := make(map[string]interface{})
	if input.Name != nil {
		if *input.Name == "" {
			return domain.NewValidationError("name", "nome da categoria é obrigatório")
		}
		patch["name"] = *input.Name
	}
	if input.Plans != nil {
		if err := validatePlans(input.Plans); err != nil {
			return err
		}
		patch["plans"] = input.Plans
	}

	if len(patch) == 0 {
		return nil
	}

	return s.categoryRepo.Update(ctx, id, patch)
}

func (s *Service) DisableCategory(ctx context.Context, id string) error {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}

	return s.categoryRepo.Update(ctx, id, map[string]interface{}{
		"active": false,
	})
}

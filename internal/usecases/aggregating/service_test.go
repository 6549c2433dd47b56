package aggregating

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/subscription-manager-api/infrastructure/database/firestoredb"
	"github.com/vfg2006/subscription-manager-api/infrastructure/repository/mocks"
	"github.com/vfg2006/subscription-manager-api/internal/domain"
	"go.uber.org/mock/gomock"
)

func TestService_OnServiceCreated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	categoryRepo := mocks.NewMockCategoryRepository(ctrl)
	service := NewService(categoryRepo)

	categoryRepo.EXPECT().
		ApplyIncrements(gomock.Any(), "CAT001", []firestoredb.Increment{
			{Field: domain.CategoryFieldTotalServices, Delta: int64(1)},
			{Field: domain.CategoryFieldActiveServices, Delta: int64(1)},
			{Field: domain.CategoryFieldFreeProfileSlotsTotal, Delta: int64(4)},
		}).
		Return(nil)

	err := service.OnServiceCreated(context.Background(), "CAT001", 4)

	assert.NoError(t, err)
}

func TestService_OnServiceActivationChanged(t *testing.T) {
	tests := []struct {
		name                  string
		nowActive             bool
		freeSlotsAtTransition int64
		expected              []firestoredb.Increment
	}{
		{
			name:                  "Reativação devolve as vagas livres do serviço",
			nowActive:             true,
			freeSlotsAtTransition: 3,
			expected: []firestoredb.Increment{
				{Field: domain.CategoryFieldActiveServices, Delta: int64(1)},
				{Field: domain.CategoryFieldFreeProfileSlotsTotal, Delta: int64(3)},
			},
		},
		{
			name:                  "Desativação remove as vagas livres do serviço",
			nowActive:             false,
			freeSlotsAtTransition: 3,
			expected: []firestoredb.Increment{
				{Field: domain.CategoryFieldActiveServices, Delta: int64(-1)},
				{Field: domain.CategoryFieldFreeProfileSlotsTotal, Delta: int64(-3)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			categoryRepo := mocks.NewMockCategoryRepository(ctrl)
			service := NewService(categoryRepo)

			categoryRepo.EXPECT().
				ApplyIncrements(gomock.Any(), "CAT001", tt.expected).
				Return(nil)

			err := service.OnServiceActivationChanged(context.Background(), "CAT001", tt.nowActive, tt.freeSlotsAtTransition)

			assert.NoError(t, err)
		})
	}
}

func TestService_OnProfileOccupancyChanged(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	categoryRepo := mocks.NewMockCategoryRepository(ctrl)
	service := NewService(categoryRepo)

	// Ocupar uma vaga remove do conjunto livre
	categoryRepo.EXPECT().
		ApplyIncrements(gomock.Any(), "CAT001", []firestoredb.Increment{
			{Field: domain.CategoryFieldFreeProfileSlotsTotal, Delta: int64(-1)},
		}).
		Return(nil)

	assert.NoError(t, service.OnProfileOccupancyChanged(context.Background(), "CAT001", 1))

	// Delta zero não toca o repositório
	assert.NoError(t, service.OnProfileOccupancyChanged(context.Background(), "CAT001", 0))
}

func TestService_OnServiceDeleted(t *testing.T) {
	tests := []struct {
		name     string
		service  *domain.Service
		expected []firestoredb.Increment
	}{
		{
			name: "Serviço ativo reverte contagens, vagas livres e despesa acumulada",
			service: &domain.Service{
				Active:               true,
				ProfileSlotsTotal:    4,
				ProfileSlotsOccupied: 1,
				ExpenseTotal:         120.5,
			},
			expected: []firestoredb.Increment{
				{Field: domain.CategoryFieldTotalServices, Delta: int64(-1)},
				{Field: domain.CategoryFieldActiveServices, Delta: int64(-1)},
				{Field: domain.CategoryFieldFreeProfileSlotsTotal, Delta: int64(-3)},
				{Field: domain.CategoryFieldTotalExpense, Delta: -120.5},
			},
		},
		{
			name: "Serviço inativo reverte apenas a contagem total e a despesa",
			service: &domain.Service{
				Active:       false,
				ExpenseTotal: 50,
			},
			expected: []firestoredb.Increment{
				{Field: domain.CategoryFieldTotalServices, Delta: int64(-1)},
				{Field: domain.CategoryFieldTotalExpense, Delta: -50.0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			categoryRepo := mocks.NewMockCategoryRepository(ctrl)
			service := NewService(categoryRepo)

			categoryRepo.EXPECT().
				ApplyIncrements(gomock.Any(), "CAT001", tt.expected).
				Return(nil)

			err := service.OnServiceDeleted(context.Background(), "CAT001", tt.service)

			assert.NoError(t, err)
		})
	}
}

func TestService_OnSaleCreated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	categoryRepo := mocks.NewMockCategoryRepository(ctrl)
	service := NewService(categoryRepo)

	categoryRepo.EXPECT().
		ApplyIncrements(gomock.Any(), "CAT001", []firestoredb.Increment{
			{Field: domain.CategoryFieldTotalSales, Delta: int64(1)},
			{Field: domain.CategoryFieldTotalRevenue, Delta: 35.9},
		}).
		Return(nil)

	err := service.OnSaleCreated(context.Background(), "CAT001", 35.9)

	assert.NoError(t, err)
}

func TestService_OnSaleStateChanged(t *testing.T) {
	tests := []struct {
		name           string
		amountDelta    float64
		saleCountDelta int64
		expected       []firestoredb.Increment
	}{
		{
			name:           "Corte subtrai receita e contagem",
			amountDelta:    -35.9,
			saleCountDelta: -1,
			expected: []firestoredb.Increment{
				{Field: domain.CategoryFieldTotalSales, Delta: int64(-1)},
				{Field: domain.CategoryFieldTotalRevenue, Delta: -35.9},
			},
		},
		{
			name:           "Renovação ajusta apenas a receita",
			amountDelta:    5.0,
			saleCountDelta: 0,
			expected: []firestoredb.Increment{
				{Field: domain.CategoryFieldTotalRevenue, Delta: 5.0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			categoryRepo := mocks.NewMockCategoryRepository(ctrl)
			service := NewService(categoryRepo)

			categoryRepo.EXPECT().
				ApplyIncrements(gomock.Any(), "CAT001", tt.expected).
				Return(nil)

			err := service.OnSaleStateChanged(context.Background(), "CAT001", tt.amountDelta, tt.saleCountDelta)

			assert.NoError(t, err)
		})
	}
}

func TestService_OnExpenseRecorded(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	categoryRepo := mocks.NewMockCategoryRepository(ctrl)
	service := NewService(categoryRepo)

	categoryRepo.EXPECT().
		ApplyIncrements(gomock.Any(), "CAT001", []firestoredb.Increment{
			{Field: domain.CategoryFieldTotalExpense, Delta: 18.0},
		}).
		Return(nil)

	assert.NoError(t, service.OnExpenseRecorded(context.Background(), "CAT001", 18.0))

	// Valor zero não toca o repositório
	assert.NoError(t, service.OnExpenseRecorded(context.Background(), "CAT001", 0))
}

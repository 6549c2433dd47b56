package apiErrors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vfg2006/subscription-manager-api/internal/domain"
)

// Códigos de erro da API
const (
	// Erros de recurso (1000-1999)
	ErrCategoryNotFound     = "RES_001" // Categoria não encontrada
	ErrServiceNotFound      = "RES_002" // Serviço não encontrado
	ErrSaleNotFound         = "RES_003" // Venda não encontrada
	ErrPaymentNotFound      = "RES_004" // Lançamento de pagamento não encontrado
	ErrNotificationNotFound = "RES_005" // Notificação não encontrada

	// Erros de validação (2000-2999)
	ErrInvalidRequest      = "VAL_001" // Requisição inválida
	ErrMissingRequiredData = "VAL_002" // Dados obrigatórios ausentes
	ErrInvalidFormat       = "VAL_003" // Formato de dados inválido
	ErrInvalidAmount       = "VAL_004" // Valor monetário inválido
	ErrInvalidDate         = "VAL_005" // Data inválida
	ErrNoFreeSlots         = "VAL_006" // Serviço sem vagas livres
	ErrProfileTaken        = "VAL_007" // Número de perfil já ocupado

	// Erros do servidor (5000-5999)
	ErrInternalServer  = "SRV_001" // Erro interno do servidor
	ErrStoreOperation  = "SRV_002" // Erro de operação no document store
	ErrExternalService = "SRV_003" // Erro em serviço externo (câmbio)
)

// Mapeamento de códigos de erro para status HTTP
var httpStatusMap = map[string]int{
	ErrCategoryNotFound:     http.StatusNotFound,
	ErrServiceNotFound:      http.StatusNotFound,
	ErrSaleNotFound:         http.StatusNotFound,
	ErrPaymentNotFound:      http.StatusNotFound,
	ErrNotificationNotFound: http.StatusNotFound,
	ErrInvalidRequest:       http.StatusBadRequest,
	ErrMissingRequiredData:  http.StatusBadRequest,
	ErrInvalidFormat:        http.StatusBadRequest,
	ErrInvalidAmount:        http.StatusBadRequest,
	ErrInvalidDate:          http.StatusBadRequest,
	ErrNoFreeSlots:          http.StatusConflict,
	ErrProfileTaken:         http.StatusConflict,
	ErrInternalServer:       http.StatusInternalServerError,
	ErrStoreOperation:       http.StatusInternalServerError,
	ErrExternalService:      http.StatusBadGateway,
}

// APIError representa um erro de API padronizado
type APIError struct {
	Code    string `json:"code"`              // Código de erro para o cliente
	Message string `json:"message,omitempty"` // Mensagem descritiva (opcional)
	Details any    `json:"details,omitempty"` // Detalhes adicionais (opcional)
}

// WriteError escreve o erro padronizado para a resposta HTTP
func WriteError(w http.ResponseWriter, code string, message string, details any) {
	status, exists := httpStatusMap[code]
	if !exists {
		status = http.StatusInternalServerError
	}

	apiErr := APIError{
		Code:    code,
		Message: message,
		Details: details,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiErr)
}

// WriteDomainError traduz a taxonomia de erros do domínio para um erro de API
// com o código mais específico possível
func WriteDomainError(w http.ResponseWriter, err error, notFoundCode string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		WriteError(w, notFoundCode, err.Error(), nil)
	case errors.Is(err, domain.ErrValidation):
		WriteError(w, ErrInvalidRequest, err.Error(), nil)
	case errors.Is(err, domain.ErrStoreUnavailable):
		WriteError(w, ErrStoreOperation, "Erro de operação no document store", nil)
	default:
		WriteError(w, ErrInternalServer, err.Error(), nil)
	}
}

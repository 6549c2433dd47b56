package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/cataloging"
	"github.com/vfg2006/subscription-manager-api/pkg/apiErrors"
)

func CreateCategory(service cataloging.Cataloger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var input cataloging.CreateCategoryInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Corpo da requisição inválido: "+err.Error(), nil)
			return
		}

		category, err := service.CreateCategory(r.Context(), input)
		if err != nil {
			logrus.WithError(err).Error("Erro ao criar categoria")
			apiErrors.WriteDomainError(w, err, apiErrors.ErrCategoryNotFound)
			return
		}

		writeJSON(w, http.StatusCreated, category)
	})
}

func ListCategories(service cataloging.Cataloger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		categories, err := service.ListCategories(r.Context())
		if err != nil {
			logrus.WithError(err).Error("Erro ao listar categorias")
			apiErrors.WriteDomainError(w, err, apiErrors.ErrCategoryNotFound)
			return
		}

		writeJSON(w, http.StatusOK, categories)
	})
}

func GetCategory(service cataloging.Cataloger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		category, err := service.GetCategory(r.Context(), id)
		if err != nil {
			apiErrors.WriteDomainError(w, err, apiErrors.ErrCategoryNotFound)
			return
		}

		writeJSON(w, http.StatusOK, category)
	})
}

func UpdateCategory(service cataloging.Cataloger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		var input cataloging.UpdateCategoryInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Corpo da requisição inválido: "+err.Error(), nil)
			return
		}

		if err := service.UpdateCategory(r.Context(), id, input); err != nil {
			logrus.WithError(err).Error("Erro ao atualizar categoria")
			apiErrors.WriteDomainError(w, err, apiErrors.ErrCategoryNotFound)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"id": id})
	})
}

func DisableCategory(service cataloging.Cataloger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		if err := service.DisableCategory(r.Context(), id); err != nil {
			logrus.WithError(err).Error("Erro ao desativar categoria")
			apiErrors.WriteDomainError(w, err, apiErrors.ErrCategoryNotFound)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"id": id, "active": false})
	})
}

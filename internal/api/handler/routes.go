package handler

import (
	"net/http"

	"github.com/vfg2006/subscription-manager-api/internal/api/handler/router"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/cataloging"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/notifying"
	"github.com/vfg2006/subscription-manager-api/internal/usecases/renewing"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Categories(service cataloging.Cataloger) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/categories",
			Method:  http.MethodGet,
			Handler: ListCategories(service),
		},
		{
			Path:    "/v1/categories",
			Method:  http.MethodPost,
			Handler: CreateCategory(service),
		},
		{
			Path:    "/v1/categories/:id",
			Method:  http.MethodGet,
			Handler: GetCategory(service),
		},
		{
			Path:    "/v1/categories/:id",
			Method:  http.MethodPut,
			Handler: UpdateCategory(service),
		},
		{
			Path:    "/v1/categories/:id/disable",
			Method:  http.MethodPost,
			Handler: DisableCategory(service),
		},
	}
}

func Services(service renewing.RenewalManager) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/services",
			Method:  http.MethodGet,
			Handler: ListServices(service),
		},
		{
			Path:    "/v1/services",
			Method:  http.MethodPost,
			Handler: CreateService(service),
		},
		{
			Path:    "/v1/services/:id",
			Method:  http.MethodGet,
			Handler: GetService(service),
		},
		{
			Path:    "/v1/services/:id",
			Method:  http.MethodDelete,
			Handler: DeleteService(service),
		},
		{
			Path:    "/v1/services/:id/renew",
			Method:  http.MethodPost,
			Handler: RenewService(service),
		},
		{
			Path:    "/v1/services/:id/active",
			Method:  http.MethodPut,
			Handler: SetServiceActive(service),
		},
		{
			Path:    "/v1/services/:id/payments",
			Method:  http.MethodGet,
			Handler: ListServicePayments(service),
		},
		{
			Path:    "/v1/services/:id/payments/last",
			Method:  http.MethodPatch,
			Handler: EditLastServicePayment(service),
		},
		{
			Path:    "/v1/services/:id/payments/last",
			Method:  http.MethodDelete,
			Handler: DeleteLastServicePayment(service),
		},
	}
}

func Sales(service renewing.RenewalManager) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/sales",
			Method:  http.MethodGet,
			Handler: ListSales(service),
		},
		{
			Path:    "/v1/sales",
			Method:  http.MethodPost,
			Handler: CreateSale(service),
		},
		{
			Path:    "/v1/sales/:id",
			Method:  http.MethodGet,
			Handler: GetSale(service),
		},
		{
			Path:    "/v1/sales/:id",
			Method:  http.MethodDelete,
			Handler: DeleteSale(service),
		},
		{
			Path:    "/v1/sales/:id/renew",
			Method:  http.MethodPost,
			Handler: RenewSale(service),
		},
		{
			Path:    "/v1/sales/:id/cut",
			Method:  http.MethodPost,
			Handler: CutSale(service),
		},
		{
			Path:    "/v1/sales/:id/payments",
			Method:  http.MethodGet,
			Handler: ListSalePayments(service),
		},
		{
			Path:    "/v1/sales/:id/payments/last",
			Method:  http.MethodPatch,
			Handler: EditLastSalePayment(service),
		},
		{
			Path:    "/v1/sales/:id/payments/last",
			Method:  http.MethodDelete,
			Handler: DeleteLastSalePayment(service),
		},
	}
}

func Notifications(service notifying.Notifier) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/notifications",
			Method:  http.MethodGet,
			Handler: ListNotifications(service),
		},
		{
			Path:    "/v1/notifications/:owner_type/:owner_id/read",
			Method:  http.MethodPost,
			Handler: ToggleNotificationRead(service),
		},
		{
			Path:    "/v1/notifications/:owner_type/:owner_id/pinned",
			Method:  http.MethodPost,
			Handler: ToggleNotificationPinned(service),
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/cron/:type/run",
			Method:  http.MethodPost,
			Handler: RunCronJob(services),
		},
		{
			Path:    "/v1/cron/status",
			Method:  http.MethodGet,
			Handler: GetCronStatus(services),
		},
	}
}

// Package portal предоставляет маршруты для основного приложения.
package portal

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/devrathore/csc-portal/internal/http/handlers/auth/login"
	"github.com/devrathore/csc-portal/internal/http/handlers/auth/register"
	catalogcreate "github.com/devrathore/csc-portal/internal/http/handlers/catalog/create"
	cataloglist "github.com/devrathore/csc-portal/internal/http/handlers/catalog/list"
	cataloglistall "github.com/devrathore/csc-portal/internal/http/handlers/catalog/listall"
	catalogread "github.com/devrathore/csc-portal/internal/http/handlers/catalog/read"
	catalogremove "github.com/devrathore/csc-portal/internal/http/handlers/catalog/remove"
	catalogupdate "github.com/devrathore/csc-portal/internal/http/handlers/catalog/update"
	"github.com/devrathore/csc-portal/internal/http/handlers/document/upload"
	"github.com/devrathore/csc-portal/internal/http/handlers/health"
	"github.com/devrathore/csc-portal/internal/http/handlers/order/attachfile"
	ordercreate "github.com/devrathore/csc-portal/internal/http/handlers/order/create"
	"github.com/devrathore/csc-portal/internal/http/handlers/order/events"
	"github.com/devrathore/csc-portal/internal/http/handlers/order/filelink"
	orderlist "github.com/devrathore/csc-portal/internal/http/handlers/order/list"
	orderread "github.com/devrathore/csc-portal/internal/http/handlers/order/read"
	"github.com/devrathore/csc-portal/internal/http/handlers/order/signedurl"
	"github.com/devrathore/csc-portal/internal/http/handlers/order/updatestatus"
	profileget "github.com/devrathore/csc-portal/internal/http/handlers/profile/get"
	profileupdate "github.com/devrathore/csc-portal/internal/http/handlers/profile/update"
	"github.com/devrathore/csc-portal/internal/http/middlewarectx"
	"github.com/devrathore/csc-portal/internal/lib/jwt"
	"github.com/devrathore/csc-portal/internal/realtime"
	authservice "github.com/devrathore/csc-portal/internal/services/auth"
	catalogservice "github.com/devrathore/csc-portal/internal/services/catalog"
	orderservice "github.com/devrathore/csc-portal/internal/services/order"
	"github.com/devrathore/csc-portal/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, jwtMaker jwt.Maker,
	db *repository.Storage, authService *authservice.Service,
	catalogService *catalogservice.Service, orderService *orderservice.Service,
	hub *realtime.Hub) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/health", health.New(logger).ServeHTTP)
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		r.Get("/services", cataloglist.New(logger, catalogService).ServeHTTP)
		r.Get("/services/{id}", catalogread.New(logger, catalogService).ServeHTTP)

		// Группа с JWT аутентификацией и перечитыванием роли
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RoleRefreshMiddleware(logger, db))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/profile", profileget.New(logger, authService).ServeHTTP)
			r.Put("/profile", profileupdate.New(logger, authService).ServeHTTP)

			r.Post("/documents", upload.New(logger, orderService).ServeHTTP)
			r.Post("/orders", ordercreate.New(logger, orderService).ServeHTTP)
			r.Get("/orders", orderlist.New(logger, orderService).ServeHTTP)
			r.Get("/orders/events", events.New(logger, hub).ServeHTTP)
			r.Get("/orders/{id}", orderread.New(logger, orderService).ServeHTTP)
			r.Get("/orders/{id}/files/url", filelink.New(logger, orderService).ServeHTTP)

			// Административная группа
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireAdmin(logger))

				r.Get("/admin/services", cataloglistall.New(logger, catalogService).ServeHTTP)
				r.Post("/admin/services", catalogcreate.New(logger, catalogService).ServeHTTP)
				r.Put("/admin/services/{id}", catalogupdate.New(logger, catalogService).ServeHTTP)
				r.Delete("/admin/services/{id}", catalogremove.New(logger, catalogService).ServeHTTP)

				r.Put("/admin/orders/{id}/status", updatestatus.New(logger, orderService).ServeHTTP)
				r.Post("/admin/orders/{id}/files", attachfile.New(logger, orderService).ServeHTTP)
				r.Get("/admin/files/url", signedurl.New(logger, orderService).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

package storyverse

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/storyverse/storyverse/internal/http/handlers/auth/login"
	"github.com/storyverse/storyverse/internal/http/handlers/auth/logout"
	"github.com/storyverse/storyverse/internal/http/handlers/auth/me"
	"github.com/storyverse/storyverse/internal/http/handlers/auth/register"
	"github.com/storyverse/storyverse/internal/http/handlers/auth/theme"
	"github.com/storyverse/storyverse/internal/http/handlers/generate/speech"
	"github.com/storyverse/storyverse/internal/http/handlers/generate/storygen"
	paymentlist "github.com/storyverse/storyverse/internal/http/handlers/payment/list"
	plancreate "github.com/storyverse/storyverse/internal/http/handlers/plan/create"
	planlist "github.com/storyverse/storyverse/internal/http/handlers/plan/list"
	planread "github.com/storyverse/storyverse/internal/http/handlers/plan/read"
	planremove "github.com/storyverse/storyverse/internal/http/handlers/plan/remove"
	planupdate "github.com/storyverse/storyverse/internal/http/handlers/plan/update"
	"github.com/storyverse/storyverse/internal/http/handlers/reference"
	storycreate "github.com/storyverse/storyverse/internal/http/handlers/story/create"
	storylist "github.com/storyverse/storyverse/internal/http/handlers/story/list"
	"github.com/storyverse/storyverse/internal/http/handlers/story/premium"
	storyread "github.com/storyverse/storyverse/internal/http/handlers/story/read"
	storyremove "github.com/storyverse/storyverse/internal/http/handlers/story/remove"
	storyupdate "github.com/storyverse/storyverse/internal/http/handlers/story/update"
	subcancel "github.com/storyverse/storyverse/internal/http/handlers/subscription/cancel"
	subread "github.com/storyverse/storyverse/internal/http/handlers/subscription/read"
	"github.com/storyverse/storyverse/internal/http/handlers/subscription/subscribe"
	subupdate "github.com/storyverse/storyverse/internal/http/handlers/subscription/update"
	"github.com/storyverse/storyverse/internal/http/middlewarectx"
	"github.com/storyverse/storyverse/internal/lib/jwt"
	"github.com/storyverse/storyverse/internal/ratelimit"
	authservice "github.com/storyverse/storyverse/internal/services/auth"
	entitlementservice "github.com/storyverse/storyverse/internal/services/entitlement"
	paymentservice "github.com/storyverse/storyverse/internal/services/payment"
	storyservice "github.com/storyverse/storyverse/internal/services/story"
)

// Services bundles the service layer for route registration.
type Services struct {
	Auth        *authservice.Service
	Entitlement *entitlementservice.Service
	Payment     *paymentservice.Service
	Story       *storyservice.Service
}

// RegisterRoutes mounts every route of the application.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc Services,
	jwtMaker jwt.Maker, limiter *ratelimit.Limiter, secureCookie bool) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.RateLimitMiddleware(logger),
	)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", register.New(logger, svc.Auth, secureCookie).ServeHTTP)
			r.Post("/login", login.New(logger, svc.Auth, secureCookie).ServeHTTP)
			r.Post("/logout", logout.New(logger, svc.Auth).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireAuth(jwtMaker, logger))
				r.Get("/me", me.New(logger, svc.Auth).ServeHTTP)
				r.Put("/theme", theme.New(logger, svc.Auth).ServeHTTP)
			})
		})

		// Plan catalog: public reads, admin mutations.
		r.Get("/subscription-plans", planlist.New(logger, svc.Entitlement).ServeHTTP)
		r.Get("/subscription-plans/{id}", planread.New(logger, svc.Entitlement).ServeHTTP)
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequireAuth(jwtMaker, logger))
			r.Use(middlewarectx.RequireAdmin(logger))
			r.Post("/subscription-plans", plancreate.New(logger, svc.Entitlement).ServeHTTP)
			r.Put("/subscription-plans/{id}", planupdate.New(logger, svc.Entitlement).ServeHTTP)
			r.Delete("/subscription-plans/{id}", planremove.New(logger, svc.Entitlement).ServeHTTP)
		})

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequireAuth(jwtMaker, logger))
			r.Get("/user/subscription", subread.New(logger, svc.Entitlement).ServeHTTP)
			r.Post("/user/subscription", subscribe.New(logger, svc.Entitlement).ServeHTTP)
			r.Put("/user/subscription/{id}", subupdate.New(logger, svc.Entitlement).ServeHTTP)
			r.Post("/user/subscription/{id}/cancel", subcancel.New(logger, svc.Entitlement).ServeHTTP)
			r.Get("/user/payments", paymentlist.New(logger, svc.Payment).ServeHTTP)
			r.Get("/premium-stories", premium.New(logger, svc.Story).ServeHTTP)
		})

		refHandler := reference.New(logger, svc.Story)
		r.Get("/genres", refHandler.Genres)
		r.Get("/themes", refHandler.Themes)

		// Story CRUD is open; ownership is enforced inside the service when
		// a caller identity is present.
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.OptionalAuth(jwtMaker))
			r.Get("/stories", storylist.New(logger, svc.Story).ServeHTTP)
			r.Get("/stories/{id}", storyread.New(logger, svc.Story).ServeHTTP)
			r.Post("/stories", storycreate.New(logger, svc.Story).ServeHTTP)
			r.Put("/stories/{id}", storyupdate.New(logger, svc.Story).ServeHTTP)
			r.Delete("/stories/{id}", storyremove.New(logger, svc.Story).ServeHTTP)

			r.Post("/generate-story", storygen.New(logger, svc.Story, limiter).ServeHTTP)
			r.Post("/generate-speech", speech.New(logger, svc.Story).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

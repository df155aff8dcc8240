package api

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/go-chi/chi/v5"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/alert"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/handler"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/middleware"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/atomic"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/auth"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/mail"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/metrics"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/notification"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/org"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/proxy"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/team"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	HealthChecks map[string]handler.Pinger
	Version      string
	OpenAPISpec  []byte

	AuthService *auth.Service
	UserRepo    auth.UserRepository

	TeamRepo            team.Repository
	TeamRoleRepo        team.RoleRepository
	OrgMemberRepo       org.Repository
	NotificationService *notification.Service
	AlertRepo           alert.Repository
	AtomicRepo          atomic.Repository
	Mailer              mail.Sender
	Upstreams           *proxy.Registry

	// AllowedReferer guards state-changing routes; empty disables the check.
	AllowedReferer string
	CORSOrigins    []string
	RateLimiter    *middleware.RateLimiter
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)
	r.Use(metrics.InstrumentHandler)
	r.Use(middleware.CORS(deps.CORSOrigins))
	if deps.RateLimiter != nil {
		r.Use(deps.RateLimiter.Handler)
	}

	healthHandler := handler.NewHealthHandler(deps.HealthChecks, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	if len(deps.OpenAPISpec) > 0 {
		openapiHandler := handler.NewOpenAPIHandler(deps.OpenAPISpec)
		r.Get("/openapi.json", openapiHandler.ServeHTTP)
	}

	origin := middleware.CheckOrigin(deps.AllowedReferer)
	admin := middleware.RequireAdmin()

	var alertHandler *handler.AlertHandler
	if deps.AlertRepo != nil {
		alertHandler = handler.NewAlertHandler(deps.AlertRepo)
		r.Get("/systemalerts/active", alertHandler.Active)
	}

	if deps.AuthService == nil {
		return r
	}

	userHandler := handler.NewUserHandler(deps.AuthService, deps.UserRepo)
	r.Post("/users/authenticate", userHandler.Authenticate)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(deps.AuthService))

		r.Get("/users/profile", userHandler.Profile)
		r.Put("/users/{username}/password", userHandler.ChangePassword)
		r.With(admin).Get("/users", userHandler.List)
		r.With(admin).Post("/users/register", userHandler.Register)
		r.With(admin).Put("/users/{username}/capabilities", userHandler.UpdateCapabilities)
		r.With(admin).Delete("/users/{username}", userHandler.Archive)

		if deps.TeamRepo != nil && deps.TeamRoleRepo != nil {
			teamHandler := handler.NewTeamHandler(deps.TeamRepo, deps.TeamRoleRepo)
			roleHandler := handler.NewTeamRoleHandler(teamHandler)

			r.Get("/teams", teamHandler.List)
			r.Get("/teams/{code}", teamHandler.Get)
			r.With(origin).Post("/teams", teamHandler.Create)
			r.With(origin).Put("/teams/{code}", teamHandler.Replace)
			r.With(admin, origin).Delete("/teams/{code}", teamHandler.Archive)

			r.Get("/teams/{code}/roles", roleHandler.ListByTeam)
			r.With(origin).Post("/teams/{code}/roles", roleHandler.Create)
			r.With(origin).Put("/teams/{code}/roles/{id}", roleHandler.Replace)
			r.With(origin).Delete("/teams/{code}/roles/{id}", roleHandler.Archive)
			r.Get("/users/{username}/teamroles", roleHandler.ListByUser)
		}

		if deps.OrgMemberRepo != nil {
			orgHandler := handler.NewOrgMemberHandler(deps.OrgMemberRepo)
			orgAdmin := middleware.RequireCapability(org.AdminCapability)

			r.Get("/organisations/{org}/members", orgHandler.List)
			r.With(orgAdmin).Post("/organisations/{org}/members", orgHandler.Add)
			r.With(orgAdmin).Delete("/organisations/{org}/members/{username}", orgHandler.Remove)
		}

		if deps.NotificationService != nil {
			notificationHandler := handler.NewNotificationHandler(deps.NotificationService)

			r.Get("/notifications", notificationHandler.List)
			r.With(admin, origin).Post("/notifications", notificationHandler.Create)
			r.With(origin).Put("/notifications/{id}/read", notificationHandler.MarkRead)
			r.With(origin).Delete("/notifications/{id}", notificationHandler.Archive)
		}

		if alertHandler != nil {
			r.Get("/systemalerts", alertHandler.List)
			r.With(admin, origin).Post("/systemalerts", alertHandler.Create)
			r.With(admin, origin).Put("/systemalerts/{id}", alertHandler.Replace)
			r.With(admin, origin).Delete("/systemalerts/{id}", alertHandler.Archive)
		}

		if deps.AtomicRepo != nil {
			atomicHandler := handler.NewAtomicHandler(deps.AtomicRepo)

			r.Get("/atomic/{collection}", atomicHandler.List)
			r.Get("/atomic/{collection}/{id}", atomicHandler.Get)
			r.Post("/atomic/{collection}", atomicHandler.Create)
			r.Put("/atomic/{collection}/{id}", atomicHandler.Replace)
			r.Delete("/atomic/{collection}/{id}", atomicHandler.Archive)
		}

		if deps.Mailer != nil {
			emailHandler := handler.NewEmailHandler(deps.Mailer)
			r.With(origin).Post("/email/send", emailHandler.Send)
		}

		if deps.Upstreams != nil {
			proxyHandler := handler.NewProxyHandler(deps.Upstreams)
			r.Get("/proxy", proxyHandler.List)
			r.HandleFunc("/proxy/{upstream}/*", proxyHandler.Forward)
		}
	})

	return r
}

package api

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/daap14/teamhub/internal/api/handler"
	"github.com/daap14/teamhub/internal/api/middleware"
)

// OpenAPISpec is the API description served at /openapi.json and /openapi.yaml.
//
//go:embed openapi.yaml
var OpenAPISpec []byte

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	DBPinger      handler.DBPinger
	Version       string
	Authenticator middleware.Authenticator
	Teams         handler.TeamDirectory
	Ledger        handler.MemberLedger
	Invitations   handler.InvitationWorkflow
	Authorizer    handler.Authorizer
	Subscriptions handler.Subscriptions
	Users         handler.UserService
	UserStore     handler.UserStore
	Registry      *prometheus.Registry
	OpenAPISpec   []byte
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(middleware.Logger)
	if deps.Registry != nil {
		r.Use(middleware.NewMetrics(deps.Registry).Handler)
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{Registry: deps.Registry}))
	}

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	if len(deps.OpenAPISpec) > 0 {
		openapiHandler := handler.NewOpenAPIHandler(deps.OpenAPISpec)
		r.Get("/openapi.json", openapiHandler.JSON)
		r.Get("/openapi.yaml", openapiHandler.YAML)
	}

	if deps.Authenticator == nil {
		return r
	}

	teamHandler := handler.NewTeamHandler(deps.Teams, deps.Ledger, deps.Subscriptions, deps.Authorizer)
	memberHandler := handler.NewMemberHandler(deps.Teams, deps.Ledger, deps.Authorizer)
	invitationHandler := handler.NewInvitationHandler(deps.Teams, deps.Invitations, deps.Authorizer)
	accountHandler := handler.NewAccountHandler(deps.Invitations, deps.Users)
	dashboardHandler := handler.NewDashboardHandler(deps.Teams, deps.Ledger, deps.Subscriptions)
	userHandler := handler.NewUserHandler(deps.Users, deps.UserStore)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(deps.Authenticator))

		r.Route("/teams", func(r chi.Router) {
			r.Post("/", teamHandler.Create)
			r.Get("/", teamHandler.List)

			r.Route("/{slug}", func(r chi.Router) {
				r.Get("/", teamHandler.Get)
				r.Patch("/", teamHandler.Update)
				r.Delete("/", teamHandler.Delete)

				r.Get("/members", memberHandler.List)
				r.Get("/members/{id}", memberHandler.Get)
				r.Patch("/members/{id}", memberHandler.Update)
				r.Delete("/members/{id}", memberHandler.Delete)
				r.Delete("/membership", memberHandler.Leave)

				r.Get("/invitations", invitationHandler.List)
				r.Post("/invitations", invitationHandler.Create)
				r.Delete("/invitations/{id}", invitationHandler.Revoke)
			})
		})

		r.Route("/account", func(r chi.Router) {
			r.Get("/invitations", accountHandler.ListInvitations)
			r.Put("/invitations/{id}", accountHandler.AcceptInvitation)
			r.Delete("/invitations/{id}", accountHandler.DeclineInvitation)
			r.Post("/token", accountHandler.IssueToken)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSuperuser())

			r.Route("/dashboard/teams", func(r chi.Router) {
				r.Get("/", dashboardHandler.ListTeams)
				r.Get("/search", dashboardHandler.SearchTeams)
				r.Get("/{id}", dashboardHandler.GetTeam)
				r.Post("/{id}/suspension", dashboardHandler.Suspend)
				r.Delete("/{id}/suspension", dashboardHandler.Unsuspend)
				r.Put("/{id}/subscription", dashboardHandler.SwapSubscription)
				r.Delete("/{id}/subscription", dashboardHandler.CancelSubscription)
			})

			r.Route("/users", func(r chi.Router) {
				r.Post("/", userHandler.Create)
				r.Get("/", userHandler.List)
				r.Delete("/{id}", userHandler.Delete)
			})
		})
	})

	return r
}

package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/rosterhub/rosterhub/internal/authz"
	"github.com/rosterhub/rosterhub/internal/config"
	"github.com/rosterhub/rosterhub/internal/domain/user"
	"github.com/rosterhub/rosterhub/internal/http/handlers"
	"github.com/rosterhub/rosterhub/internal/http/middlewares"
	"github.com/rosterhub/rosterhub/internal/observability"
)

const maxBodyBytes = 1 << 20 // 1 MiB

type RouterDeps struct {
	Cfg  config.Config
	Prom *observability.Prom
	Reg  *prometheus.Registry

	Auth *middlewares.AuthMiddleware
	CSRF *middlewares.CSRFMiddleware

	AuthHandler          *handlers.AuthHandler
	TeamsHandler         *handlers.TeamsHandler
	MembersHandler       *handlers.MembersHandler
	MatchesHandler       *handlers.MatchesHandler
	AnnouncementsHandler *handlers.AnnouncementsHandler
	AdminHandler         *handlers.AdminHandler
	HealthHandler        *handlers.HealthHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	if d.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware, outermost first

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(otelgin.Middleware("rosterhub"))

	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Cfg.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())
	r.Use(d.Auth.Authenticate())

	// health + metrics, unguarded

	r.GET("/healthz", d.HealthHandler.Healthz)
	r.GET("/readyz", d.HealthHandler.Readyz)

	if d.Reg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Reg, promhttp.HandlerOpts{})))
	}

	// credential endpoints take the brunt of abuse; IP-scoped limiter
	loginLimiter := middlewares.NewRateLimiter(10, time.Minute)

	r.POST("/auth/register",
		loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP),
		d.AuthHandler.Register)
	r.POST("/auth/login",
		loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP),
		d.AuthHandler.Login)

	// public join-code lookup for share links
	r.GET("/validate-join-code/:code", d.TeamsHandler.ValidateCode)

	// session-authenticated routes; CSRF covers all state changes here
	authed := r.Group("/")
	authed.Use(d.Auth.RequireAuth())
	authed.Use(d.CSRF.Guard())

	authed.POST("/auth/logout", d.AuthHandler.Logout)
	authed.POST("/auth/token", d.AuthHandler.IssueToken)
	authed.GET("/user", d.AuthHandler.Me)
	authed.GET("/csrf-token", d.AuthHandler.CSRFToken)

	authed.POST("/teams", d.TeamsHandler.Create)
	authed.POST("/teams/join", d.TeamsHandler.Join)

	// team-scoped routes: membership first, then role
	teamScoped := authed.Group("/teams/:id")
	teamScoped.Use(d.Auth.RequireTeamMember())

	teamScoped.GET("", d.Auth.RequireTeamRole(authz.ReadRoles...), d.TeamsHandler.Get)

	teamScoped.GET("/matches", d.Auth.RequireTeamRole(authz.ReadRoles...), d.MatchesHandler.List)
	teamScoped.GET("/matches/:matchId", d.Auth.RequireTeamRole(authz.ReadRoles...), d.MatchesHandler.Get)
	teamScoped.POST("/matches", d.Auth.RequireTeamRole(authz.WriteRoles...), d.MatchesHandler.Create)
	teamScoped.PUT("/matches/:matchId", d.Auth.RequireTeamRole(authz.WriteRoles...), d.MatchesHandler.Update)
	teamScoped.DELETE("/matches/:matchId", d.Auth.RequireTeamRole(authz.WriteRoles...), d.MatchesHandler.Delete)

	teamScoped.GET("/announcements", d.Auth.RequireTeamRole(authz.ReadRoles...), d.AnnouncementsHandler.List)
	teamScoped.POST("/announcements", d.Auth.RequireTeamRole(authz.WriteRoles...), d.AnnouncementsHandler.Create)
	teamScoped.DELETE("/announcements/:announcementId", d.Auth.RequireTeamRole(authz.WriteRoles...), d.AnnouncementsHandler.Delete)

	teamScoped.GET("/members", d.Auth.RequireTeamRole(authz.ReadRoles...), d.MembersHandler.List)
	teamScoped.POST("/members", d.Auth.RequireTeamRole(authz.ManageRoles...), d.MembersHandler.Add)
	teamScoped.PUT("/members/:userId", d.Auth.RequireTeamRole(authz.ManageRoles...), d.MembersHandler.UpdateRole)
	teamScoped.DELETE("/members/:userId", d.Auth.RequireTeamRole(authz.ManageRoles...), d.MembersHandler.Remove)

	teamScoped.POST("/join-code", d.Auth.RequireTeamRole(authz.ManageRoles...), d.TeamsHandler.RegenerateCode)

	// superuser panel
	admin := authed.Group("/admin")
	admin.Use(d.Auth.RequireGlobalRole(user.RoleSuperuser))

	admin.GET("/users", d.AdminHandler.ListUsers)
	admin.GET("/teams", d.AdminHandler.ListTeams)
	admin.PUT("/users/:userId/role", d.AdminHandler.UpdateUserRole)

	return r
}

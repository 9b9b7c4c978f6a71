package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/comepass/comepass/internal/api/cache"
	"github.com/comepass/comepass/internal/api/service"
	"github.com/comepass/comepass/internal/api/store"
	"github.com/comepass/comepass/pkg/httpx"
	"github.com/comepass/comepass/pkg/permx"
	"github.com/comepass/comepass/pkg/slogx"
	"github.com/swaggo/swag"

	_ "github.com/comepass/comepass/docs" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// APIPrefix is the mount point of every versioned endpoint.
const APIPrefix = "/comepass/api/v1"

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store
	cache *cache.AccessTokenCache

	AuthService       *service.AuthService
	UserService       *service.UserService
	RoleService       *service.RoleService
	PermissionService *service.PermissionService
	ChatService       *service.ChatService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	c *cache.AccessTokenCache,
	logger *slog.Logger,
) *Router {
	return &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		cache:        c,
	}
}

func (r *Router) ApplyRoutes() {
	guard := &PermissionGuard{
		Prefix:      APIPrefix,
		Auth:        r.AuthService,
		Users:       r.UserService,
		Permissions: r.PermissionService,
		Resolver:    permx.NewResolver(permx.DefaultRules()),
	}
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		guard.Middleware(),
	}

	r.registerAuth()
	r.registerUsers()
	r.registerRoles()
	r.registerPermissions()
	r.registerChat()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
//
//	@title			Comepass API
//	@version		1.0.0
//	@description	Permissioned API backend: accounts, role-derived permissions, JWT session lifecycle and a chat completion proxy.
//	@description
//	@description	Protected endpoints require a bearer access token. Only the most recently issued access token per session validates.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/comepass/api/v1
//
//	@schemes		http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	login := &LoginHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST "+APIPrefix+"/auth/login",
		httpx.Chain(login, httpx.RateLimitByIP(httpx.StrictLimit)),
	)

	refresh := &RefreshHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST "+APIPrefix+"/auth/refresh-token",
		httpx.Chain(refresh, httpx.RateLimitByIP(httpx.StrictLimit)),
	)

	checkAccess := &CheckAccessHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST "+APIPrefix+"/auth/check-access",
		httpx.Chain(checkAccess, httpx.RateLimitByIP(httpx.ModerateLimit)),
	)

	checkRole := &CheckRoleHandler{AuthService: r.AuthService, RoleService: r.RoleService}
	r.Mux.Handle("POST "+APIPrefix+"/auth/check-role",
		httpx.Chain(checkRole, httpx.RateLimitByIP(httpx.ModerateLimit)),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	r.Mux.Handle("GET "+APIPrefix+"/users",
		httpx.Chain(http.HandlerFunc(h.List), httpx.RateLimitByIP(httpx.LenientLimit)),
	)
	r.Mux.HandleFunc("POST "+APIPrefix+"/users", h.Create)
	r.Mux.HandleFunc("GET "+APIPrefix+"/users/{id}", h.Get)
	r.Mux.HandleFunc("PUT "+APIPrefix+"/users/{id}", h.Update)
	r.Mux.HandleFunc("DELETE "+APIPrefix+"/users/{id}", h.Delete)
	r.Mux.HandleFunc("POST "+APIPrefix+"/users/{id}/change-password", h.ChangePassword)
}

func (r *Router) registerRoles() {
	h := &RolesHandler{RoleService: r.RoleService}

	r.Mux.Handle("GET "+APIPrefix+"/roles",
		httpx.Chain(http.HandlerFunc(h.List), httpx.RateLimitByIP(httpx.LenientLimit)),
	)
	r.Mux.HandleFunc("POST "+APIPrefix+"/roles", h.Create)
}

func (r *Router) registerPermissions() {
	h := &PermissionsHandler{PermissionService: r.PermissionService}

	r.Mux.Handle("GET "+APIPrefix+"/permissions",
		httpx.Chain(http.HandlerFunc(h.List), httpx.RateLimitByIP(httpx.LenientLimit)),
	)
	r.Mux.HandleFunc("POST "+APIPrefix+"/permissions", h.Create)
}

func (r *Router) registerChat() {
	h := &ChatHandler{ChatService: r.ChatService}

	r.Mux.Handle("GET "+APIPrefix+"/chat-gpt/topic",
		httpx.Chain(http.HandlerFunc(h.ListTopics), httpx.RateLimitByIP(httpx.LenientLimit)),
	)
	r.Mux.HandleFunc("POST "+APIPrefix+"/chat-gpt/topic", h.CreateTopic)
	r.Mux.HandleFunc("GET "+APIPrefix+"/chat-gpt/topic/{id}", h.GetTopic)
	r.Mux.HandleFunc("PUT "+APIPrefix+"/chat-gpt/topic/{id}", h.UpdateTopic)

	r.Mux.Handle("GET "+APIPrefix+"/chat-gpt/messages",
		httpx.Chain(http.HandlerFunc(h.ListMessages), httpx.RateLimitByIP(httpx.LenientLimit)),
	)
	r.Mux.HandleFunc("POST "+APIPrefix+"/chat-gpt/messages", h.SendMessage)
	r.Mux.HandleFunc("GET "+APIPrefix+"/chat-gpt/messages/{slug}", h.ListTopicMessages)
}

func (r *Router) registerSystem() {
	r.Mux.HandleFunc("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.HandleFunc("GET /readyz", ReadyzHandler(r.store, r.cache))

	r.Mux.HandleFunc("GET "+APIPrefix, func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{
			"service": "comepass",
			"version": r.buildVersion,
			"docs":    "/docs/",
		})
	})

	r.Mux.Handle("/docs/", httpSwagger.Handler(
		httpSwagger.URL("/openapi.json"),
	))
	r.Mux.HandleFunc("GET /openapi.json", func(w http.ResponseWriter, req *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			httpx.WriteDetail(w, http.StatusInternalServerError, "Documentation unavailable")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(doc))
	})
}

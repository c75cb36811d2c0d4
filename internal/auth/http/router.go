package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/bitebank/internal/auth/service"
	"github.com/aussiebroadwan/bitebank/internal/auth/store"
	"github.com/aussiebroadwan/bitebank/pkg/httpx"
	"github.com/aussiebroadwan/bitebank/pkg/slogx"

	_ "github.com/aussiebroadwan/bitebank/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     httpx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store       store.Store
	AuthService *service.AuthService
}

func NewRouter(
	authService *service.AuthService,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     httpx.LocalVerifier(authService.Codec),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		AuthService:  authService,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler(httpSwagger.InstanceName("auth")))
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			BiteBank Authentication Service API
//	@version		0.1.0
//	@description	Registers users and issues HS256 JWT access tokens for the BiteBank ordering system.
//	@description
//	@description				Tokens carry sub (username), id and role, and expire after the configured TTL.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/bitebank
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8001
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /register - strict rate limit by IP + username (account creation)
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(&RegisterHandler{AuthService: r.AuthService},
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "username"),
		),
	)

	// POST /token - strict rate limit by IP + username to slow brute force.
	// Each path gets its own limiter, so both share one handler but not a budget.
	tokenHandler := &TokenHandler{AuthService: r.AuthService}
	for _, pattern := range []string{"POST /auth/token", "POST /auth/login"} {
		r.Mux.Handle(pattern,
			httpx.Chain(tokenHandler,
				httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "username"),
			),
		)
	}

	// POST /verify-token - called by the gateway on every guarded request. Every
	// caller arrives from the gateway's address, so it is not limited per IP.
	r.Mux.Handle("POST /auth/verify-token", &VerifyTokenHandler{AuthService: r.AuthService})

	r.Mux.Handle("GET /auth/me",
		httpx.Chain(http.HandlerFunc(MeHandler),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(httpx.LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(httpx.ReadyzHandler(r.startTime, r.buildVersion, map[string]httpx.Pinger{
			"database": r.store,
		}),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

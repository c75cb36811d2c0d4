package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/bitebank/internal/gateway/forward"
	"github.com/aussiebroadwan/bitebank/pkg/httpx"
	"github.com/aussiebroadwan/bitebank/pkg/slogx"

	_ "github.com/aussiebroadwan/bitebank/api/gateway" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router is the client-facing surface of the gateway.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     httpx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	auth  *forward.Forwarder
	order *forward.Forwarder

	// Ready lists the upstreams probed by /readyz. Set before ApplyRoutes.
	Ready []Upstream
}

func NewRouter(
	auth, order *forward.Forwarder,
	verifier httpx.Verifier,
	allowedOrigins []string,
	buildVersion string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		auth:         auth,
		order:        order,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORS(allowedOrigins),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerMeals()
	r.registerCart()
	r.registerOrders()
	r.registerImages()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler(httpSwagger.InstanceName("gateway")))
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			BiteBank Gateway API
//	@version		0.1.0
//	@description	Single entry point for the BiteBank ordering system.
//	@description
//	@description				Login and registration are passed to the authentication service. Every other route needs a bearer token and is relayed to the order service.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/bitebank
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8000
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

// protected runs the guard before relaying to the order service.
func (r *Router) protected(h http.Handler) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(httpx.LenientLimit),
	)
}

func (r *Router) registerAuth() {
	// The auth service limits by IP + username itself; this is a coarse cap
	passthrough := func(h http.Handler) http.Handler {
		return httpx.Chain(h, httpx.RateLimitByIP(httpx.ModerateLimit))
	}

	r.Mux.Handle("POST /auth/register", passthrough(r.auth.To("/auth/register")))
	r.Mux.Handle("POST /auth/token", passthrough(r.auth.To("/auth/token")))
	r.Mux.Handle("POST /auth/login", passthrough(r.auth.To("/auth/token")))
}

func (r *Router) registerMeals() {
	h := r.protected(r.order.Handler())

	r.Mux.Handle("GET /meals", h)
	r.Mux.Handle("POST /meals", h)
	r.Mux.Handle("GET /meals/{meal_id}", h)
	r.Mux.Handle("PUT /meals/{meal_id}", h)
	r.Mux.Handle("DELETE /meals/{meal_id}", h)
}

func (r *Router) registerCart() {
	h := r.protected(r.order.Handler())

	r.Mux.Handle("GET /shopping_cart/{user_id}", h)
	r.Mux.Handle("POST /shopping_cart", h)
	r.Mux.Handle("PUT /shopping_cart/{item_id}", h)
	r.Mux.Handle("DELETE /shopping_cart/{item_id}", h)
}

func (r *Router) registerOrders() {
	h := r.protected(r.order.Handler())

	r.Mux.Handle("GET /orders", h)
	r.Mux.Handle("POST /orders", h)
	r.Mux.Handle("GET /orders/{user_id}", h)
	r.Mux.Handle("PUT /orders/{order_id}", h)
	r.Mux.Handle("DELETE /orders/{order_id}", h)
}

func (r *Router) registerImages() {
	h := r.protected(r.order.Handler())

	r.Mux.Handle("POST /upload", h)
	r.Mux.Handle("GET /uploads/images/{name}", h)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(httpx.LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(httpx.ReadyzHandler(r.startTime, r.buildVersion, upstreamPingers(r.Ready)),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

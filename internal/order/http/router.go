package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/bitebank/internal/order/imagestore"
	"github.com/aussiebroadwan/bitebank/internal/order/service"
	"github.com/aussiebroadwan/bitebank/internal/order/store"
	"github.com/aussiebroadwan/bitebank/pkg/httpx"
	"github.com/aussiebroadwan/bitebank/pkg/slogx"

	_ "github.com/aussiebroadwan/bitebank/api/order" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// DefaultMaxUploadBytes caps image uploads when no limit is configured.
const DefaultMaxUploadBytes = 5 << 20

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     httpx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store  store.Store
	images imagestore.Store

	OrderService *service.OrderService

	// MaxUploadBytes caps POST /upload. Set before ApplyRoutes.
	MaxUploadBytes int64
}

func NewRouter(
	orderService *service.OrderService,
	images imagestore.Store,
	verifier httpx.Verifier,
	allowedOrigins []string,
	buildVersion string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:            http.NewServeMux(),
		verifier:       verifier,
		buildVersion:   buildVersion,
		startTime:      time.Now(),
		logger:         logger,
		store:          orderService.Store,
		images:         images,
		OrderService:   orderService,
		MaxUploadBytes: DefaultMaxUploadBytes,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORS(allowedOrigins),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerMeals()
	r.registerCart()
	r.registerOrders()
	r.registerImages()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler(httpSwagger.InstanceName("order")))
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			BiteBank Order Service API
//	@version		0.1.0
//	@description	Meals, shopping carts, orders and meal images for the BiteBank ordering system.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/bitebank
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8002
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

// protected requires a valid bearer token. The role is not checked.
func (r *Router) protected(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) registerMeals() {
	h := &MealsHandler{Service: r.OrderService}

	r.Mux.Handle("GET /meals", r.protected(h.List, httpx.LenientLimit))
	r.Mux.Handle("POST /meals", r.protected(h.Create, httpx.ModerateLimit))
	r.Mux.Handle("GET /meals/{meal_id}", r.protected(h.Get, httpx.LenientLimit))
	r.Mux.Handle("PUT /meals/{meal_id}", r.protected(h.Update, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /meals/{meal_id}", r.protected(h.Delete, httpx.ModerateLimit))
}

func (r *Router) registerCart() {
	h := &CartHandler{Service: r.OrderService}

	r.Mux.Handle("GET /shopping_cart/{user_id}", r.protected(h.List, httpx.LenientLimit))
	r.Mux.Handle("POST /shopping_cart", r.protected(h.Create, httpx.LenientLimit))
	r.Mux.Handle("PUT /shopping_cart/{item_id}", r.protected(h.Update, httpx.LenientLimit))
	r.Mux.Handle("DELETE /shopping_cart/{item_id}", r.protected(h.Delete, httpx.LenientLimit))
}

func (r *Router) registerOrders() {
	h := &OrdersHandler{Service: r.OrderService}

	r.Mux.Handle("GET /orders", r.protected(h.List, httpx.LenientLimit))
	r.Mux.Handle("POST /orders", r.protected(h.Create, httpx.ModerateLimit))
	r.Mux.Handle("GET /orders/{user_id}", r.protected(h.ListByUser, httpx.LenientLimit))
	r.Mux.Handle("PUT /orders/{order_id}", r.protected(h.Update, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /orders/{order_id}", r.protected(h.Delete, httpx.ModerateLimit))
}

func (r *Router) registerImages() {
	h := &ImagesHandler{Images: r.images, MaxBytes: r.MaxUploadBytes}

	r.Mux.Handle("POST /upload", r.protected(h.Upload, httpx.ModerateLimit))
	r.Mux.Handle("GET /"+ImagePathPrefix+"{name}", r.protected(h.Download, httpx.LenientLimit))
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
			"images":   r.images,
		}),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

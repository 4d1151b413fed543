package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/heladeria-pos/api/internal/catsync"
	"github.com/heladeria-pos/api/internal/config"
	"github.com/heladeria-pos/api/internal/database"
	"github.com/heladeria-pos/api/internal/enum"
	"github.com/heladeria-pos/api/internal/handler"
	mw "github.com/heladeria-pos/api/internal/middleware"
	"github.com/heladeria-pos/api/internal/service"
	"github.com/heladeria-pos/api/internal/ws"
	"github.com/jackc/pgx/v5/pgxpool"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication and role-based middleware as needed.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub, pub handler.TicketPublisher, hook catsync.Hook) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173", // dev frontend
			"http://localhost:3000",
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Transaction-scoped services share the pool and mint their stores
	// from whatever DBTX the transaction hands them.
	ordenService := service.NewOrdenService(pool, func(db database.DBTX) service.OrdenStore {
		return database.New(db)
	})
	checkoutService := service.NewCheckoutService(pool, func(db database.DBTX) service.CheckoutStore {
		return database.New(db)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Mesas registry
		mesaHandler := handler.NewMesaHandler(queries)
		r.Route("/mesas", mesaHandler.RegisterRoutes)

		// Order building
		ordenHandler := handler.NewOrdenHandler(ordenService, queries, hub)
		r.Route("/ordenar", ordenHandler.RegisterRoutes)

		// Cashier
		cajaHandler := handler.NewCajaHandler(checkoutService, ordenService, queries, pub, hub)
		r.Route("/caja", cajaHandler.RegisterRoutes)

		// Sales ledger + transfer reconciliation
		ventaHandler := handler.NewVentaHandler(queries, hub)
		conciliacionHandler := handler.NewConciliacionHandler(queries)
		r.Route("/ventas", func(r chi.Router) {
			ventaHandler.RegisterRoutes(r)
			conciliacionHandler.RegisterRoutes(r)
		})

		// Products + bulk import
		productoHandler := handler.NewProductoHandler(queries)
		importHandler := handler.NewImportHandler(queries)
		r.Route("/productos", func(r chi.Router) {
			productoHandler.RegisterRoutes(r)
			importHandler.RegisterRoutes(r)
		})

		// Sabores
		saborHandler := handler.NewSaborHandler(queries)
		r.Route("/sabores", saborHandler.RegisterRoutes)

		// Categorias with folder mirroring
		categoriaHandler := handler.NewCategoriaHandler(queries, hook)
		r.Route("/categorias", categoriaHandler.RegisterRoutes)

		// Daily closures
		cierreHandler := handler.NewCierreHandler(queries)
		r.Route("/cierres", cierreHandler.RegisterRoutes)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.RoleAdmin))

			personalHandler := handler.NewPersonalHandler(queries)
			r.Route("/personal", personalHandler.RegisterRoutes)
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}

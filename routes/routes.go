package routes

import (
	"net/http"

	"github.com/Dosada05/party-bets/docs"
	"github.com/Dosada05/party-bets/handlers"
	"github.com/Dosada05/party-bets/metrics"
	"github.com/Dosada05/party-bets/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

type Options struct {
	AllowedOrigins []string
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
}

func SetupRoutes(
	router chi.Router,
	entryHandler *handlers.EntryHandler,
	webSocketHandler *handlers.WebSocketHandler,
	opts Options,
) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(logger, opts.Metrics))
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/", entryHandler.Index)

	router.Route("/entries", func(r chi.Router) {
		r.Get("/", entryHandler.ListEntries)
		r.Post("/", entryHandler.SubmitEntry)
		r.Get("/{entryID}", entryHandler.GetEntry)
	})

	router.Get("/members", entryHandler.ListMembers)

	router.Get("/ws/entries", webSocketHandler.ServeWs)

	router.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(docs.OpenAPI)
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

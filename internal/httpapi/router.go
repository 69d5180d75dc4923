package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/vntrieu/mafia/internal/httpapi/handler"
	"github.com/vntrieu/mafia/internal/ratelimit"
	"github.com/vntrieu/mafia/internal/websocket"

	_ "github.com/vntrieu/mafia/docs" // swag-generated docs
)

// Deps are the services behind the router. Live, Archive, ArchivePing and
// Limiter may be nil.
type Deps struct {
	Engine      handler.MatchEngine
	Matches     handler.MatchCounter
	Live        handler.MatchLister
	Archive     handler.ArchiveReader
	ArchivePing handler.Pinger
	Feed        *websocket.EventHandler
	Spectators  *websocket.WSHandler
	Limiter     ratelimit.Limiter
	TokenSecret []byte
	CORSOrigins []string
	Logger      *slog.Logger
}

// NewRouter builds the root HTTP router.
//
// @title            Mafia Host API
// @version          1.0
// @description      Rules engine for a live Mafia host: roster, night-zero binding, day votes, night resolution and a spectator feed.
// @BasePath         /
// @SecurityDefinitions.apikey  BearerAuth
// @in               header
// @name             Authorization
func NewRouter(d Deps) http.Handler {
	if d.Limiter == nil {
		d.Limiter = ratelimit.Noop{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Spectator-Password", "X-Request-Id"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", handler.NewHealthHandler(d.Matches, d.ArchivePing).Healthz)

	// Swagger UI and the generated OpenAPI document (from swag comments)
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs/", http.StatusMovedPermanently)
	})
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

	var feed handler.Publisher
	var guard handler.SpectatorGuard
	if d.Feed != nil {
		feed = d.Feed
	}
	if d.Spectators != nil {
		guard = d.Spectators
		r.Get("/ws/matches/{id}", d.Spectators.HandleSpectator)
	}

	matches := handler.NewMatchHandler(d.Engine, feed, guard, d.TokenSecret, d.Logger)
	rateLimitByIP := RateLimitMiddleware(d.Limiter, RateLimitKeyByIP)

	r.Get("/api/roles", matches.ListRoles)
	r.Route("/api/matches", func(r chi.Router) {
		r.Use(LimitRequestBody(DefaultMaxBodyBytes))
		r.With(rateLimitByIP).Post("/", matches.CreateMatch)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/public", matches.PublicState)

			r.Group(func(r chi.Router) {
				r.Use(RequireHost(d.TokenSecret))

				r.Get("/", matches.GetMatch)
				r.Delete("/", matches.DeleteMatch)
				r.Get("/check-start", matches.CheckStart)
				r.Get("/targets/{step}", matches.Targets)
				r.Post("/moves", matches.ApplyMove)
				r.Put("/spectator-password", matches.SetSpectatorPassword)

				r.Post("/players", matches.AddPlayer)
				r.Delete("/players/{name}", matches.RemovePlayer)
				r.Put("/roles/{role}", matches.SetRoleCount)
				r.Post("/start", matches.Start)

				r.Post("/binding/role", matches.BindRole)
				r.Post("/binding/player", matches.BindPlayer)
				r.Post("/binding/undo", matches.UndoBind)

				r.Post("/mayor", matches.SelectMayor)
				r.Post("/successor", matches.SelectSuccessor)
				r.Post("/day/vote/start", matches.StartDayVote)
				r.Post("/day/vote", matches.CastDayVote)
				r.Post("/day/avenger", matches.AvengerRevenge)

				r.Post("/night", matches.SkipToNight)
				r.Post("/night/choices/{step}", matches.NightChoice)
				r.Post("/night/finish", matches.FinishNight)

				r.Post("/undo", matches.Undo)
				r.Post("/reset", matches.Reset)

				if d.Live != nil {
					r.Get("/host-matches", handler.NewHostHandler(d.Live, d.Logger).LiveMatches)
				}
				if d.Archive != nil {
					archive := handler.NewArchiveHandler(d.Archive, d.Logger)
					r.Get("/archive", archive.ListArchives)
					r.Get("/archive/{archiveID}", archive.GetArchive)
				}
			})
		})
	})

	return r
}

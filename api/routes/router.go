package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/catalog-backend/api/controllers"
	"github.com/angelmondragon/catalog-backend/api/middleware"
	"github.com/angelmondragon/catalog-backend/api/responses"
	"github.com/angelmondragon/catalog-backend/internal/auth"
	"github.com/angelmondragon/catalog-backend/internal/characters"
	"github.com/angelmondragon/catalog-backend/internal/genres"
	"github.com/angelmondragon/catalog-backend/internal/images"
	"github.com/angelmondragon/catalog-backend/internal/movies"
	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/metrics"
	"github.com/angelmondragon/catalog-backend/pkg/redis"
	"github.com/angelmondragon/catalog-backend/pkg/storage/local"
)

// Services are the domain services exposed over HTTP.
type Services struct {
	Auth       auth.Service
	Movies     movies.Service
	Characters characters.Service
	Genres     genres.Service
	Images     images.Service
}

// NewRouter builds the API handler. redisClient may be nil, which disables
// the redis backed auth rate limits. staticRoot, when set, is served under
// /static for the local storage driver.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	services Services,
	staticRoot string,
	onFatal func(error),
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Recoverer(logg, onFatal),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Metrics(metrics.NewHTTPMetrics(registry)),
	)
	if cfg.HTTPRateLimit.Requests > 0 && cfg.HTTPRateLimit.Window > 0 {
		r.Use(httprate.Limit(
			cfg.HTTPRateLimit.Requests,
			cfg.HTTPRateLimit.Window,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, req *http.Request) {
				responses.WriteError(req.Context(), logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests, try again later"))
			}),
		))
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	})

	readiness := map[string]controllers.Pinger{"db": dbP}
	var limiter rateLimiter
	if redisClient != nil {
		readiness["redis"] = redisClient
		limiter = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})
	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	if staticRoot != "" {
		r.Handle(local.StaticPrefix+"/*", http.StripPrefix(local.StaticPrefix, http.FileServer(http.Dir(staticRoot))))
	}

	onlyJSON := middleware.OnlyAccepts(middleware.ContentTypeJSON, logg)
	onlyMultipart := middleware.OnlyAccepts(middleware.ContentTypeMultipart, logg)
	maxUpload := cfg.Storage.MaxUploadBytes

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(onlyJSON)
			r.With(authRateLimit(middleware.RegisterRateLimitPolicy(cfg.AuthRateLimit), limiter, logg)).
				Post("/register", controllers.AuthRegister(services.Auth, logg))
			r.With(authRateLimit(middleware.LoginRateLimitPolicy(cfg.AuthRateLimit), limiter, logg)).
				Post("/login", controllers.AuthLogin(services.Auth, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth, logg))

			r.Route("/characters", func(r chi.Router) {
				r.Get("/", controllers.CharactersList(services.Characters, logg))
				r.With(onlyJSON).Post("/", controllers.CharacterCreate(services.Characters, logg))
				r.Get("/{id}", controllers.CharacterGet(services.Characters, logg))
				r.With(onlyJSON).Patch("/{id}", controllers.CharacterPatch(services.Characters, logg))
				r.Delete("/{id}", controllers.CharacterDelete(services.Characters, logg))
			})

			r.Route("/movies", func(r chi.Router) {
				r.Get("/", controllers.MoviesList(services.Movies, logg))
				r.With(onlyJSON).Post("/", controllers.MovieCreate(services.Movies, logg))
				r.Get("/{id}", controllers.MovieGet(services.Movies, logg))
				r.With(onlyJSON).Patch("/{id}", controllers.MoviePatch(services.Movies, logg))
				r.Delete("/{id}", controllers.MovieDelete(services.Movies, logg))
			})

			r.Route("/genres", func(r chi.Router) {
				r.Get("/", controllers.GenresList(services.Genres, logg))
				r.With(onlyJSON).Post("/", controllers.GenreCreate(services.Genres, logg))
				r.Get("/{id}", controllers.GenreGet(services.Genres, logg))
				r.With(onlyJSON).Patch("/{id}", controllers.GenrePatch(services.Genres, logg))
				r.Delete("/{id}", controllers.GenreDelete(services.Genres, logg))
			})

			r.Route("/images", func(r chi.Router) {
				for _, entityType := range enums.EntityTypes() {
					r.With(onlyMultipart).Post("/"+entityType.Plural(), controllers.ImageUpload(services.Images, entityType, maxUpload, logg))
				}
				r.Get("/{id}", controllers.ImageGet(services.Images, logg))
				r.With(onlyMultipart).Put("/{id}", controllers.ImageReplace(services.Images, maxUpload, logg))
				r.Delete("/{id}", controllers.ImageDelete(services.Images, logg))
			})
		})
	})

	return r
}

type rateLimiter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	RateLimitKey(scope string) string
}

func authRateLimit(policy middleware.AuthRateLimitPolicy, limiter rateLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	if limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.AuthRateLimit(policy, limiter, logg)
}

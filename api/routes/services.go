package routes

import (
	"fmt"

	"github.com/angelmondragon/catalog-backend/internal/associations"
	"github.com/angelmondragon/catalog-backend/internal/auth"
	"github.com/angelmondragon/catalog-backend/internal/characters"
	"github.com/angelmondragon/catalog-backend/internal/genres"
	"github.com/angelmondragon/catalog-backend/internal/images"
	"github.com/angelmondragon/catalog-backend/internal/movies"
	"github.com/angelmondragon/catalog-backend/internal/notifications"
	"github.com/angelmondragon/catalog-backend/internal/repo"
	"github.com/angelmondragon/catalog-backend/internal/users"
	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/angelmondragon/catalog-backend/pkg/db"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/metrics"
	"github.com/angelmondragon/catalog-backend/pkg/storage"
)

// NewServices wires repositories, image governance and the domain services
// over one database client and storage backend.
func NewServices(cfg *config.Config, logg *logger.Logger, client *db.Client, store storage.Store, imageMetrics *metrics.ImageMetrics) (Services, error) {
	conn := client.DB()
	imageRepo := images.NewRepository(conn)
	governance, err := images.NewGovernance(images.GovernanceParams{
		Repo:    imageRepo,
		Store:   store,
		Metrics: imageMetrics,
		Logger:  logg,
	})
	if err != nil {
		return Services{}, fmt.Errorf("image governance: %w", err)
	}
	links := associations.NewManager(conn, client)
	finder := repo.NewBase(conn)

	imageService, err := images.NewService(images.ServiceParams{
		Repo:           imageRepo,
		Governance:     governance,
		Store:          store,
		Logger:         logg,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
	})
	if err != nil {
		return Services{}, fmt.Errorf("image service: %w", err)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(conn),
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Notifier:       notifications.NewLogNotifier(logg, cfg.Notifications.DefaultFrom),
		SendWelcome:    cfg.Notifications.SendEmails,
		Logger:         logg,
	})
	if err != nil {
		return Services{}, fmt.Errorf("auth service: %w", err)
	}

	movieService, err := movies.NewService(movies.ServiceParams{
		Repo:         movies.NewRepository(conn),
		Tx:           client,
		Finder:       finder,
		Images:       governance,
		Associations: links,
		Logger:       logg,
	})
	if err != nil {
		return Services{}, fmt.Errorf("movie service: %w", err)
	}

	characterService, err := characters.NewService(characters.ServiceParams{
		Repo:         characters.NewRepository(conn),
		Tx:           client,
		Finder:       finder,
		Images:       governance,
		Associations: links,
		Logger:       logg,
	})
	if err != nil {
		return Services{}, fmt.Errorf("character service: %w", err)
	}

	genreService, err := genres.NewService(genres.ServiceParams{
		Repo:         genres.NewRepository(conn),
		Tx:           client,
		Finder:       finder,
		Images:       governance,
		Associations: links,
		Logger:       logg,
	})
	if err != nil {
		return Services{}, fmt.Errorf("genre service: %w", err)
	}

	return Services{
		Auth:       authService,
		Movies:     movieService,
		Characters: characterService,
		Genres:     genreService,
		Images:     imageService,
	}, nil
}

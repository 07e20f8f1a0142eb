package router

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/dogshouse/dogs-api/config"
	"github.com/dogshouse/dogs-api/internal/application"
	pginfra "github.com/dogshouse/dogs-api/internal/infrastructure/postgres"
	handlers "github.com/dogshouse/dogs-api/internal/interface/http"
	"github.com/dogshouse/dogs-api/internal/router/modules"
	"github.com/dogshouse/dogs-api/pkg/helpers"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps carries every shared dependency the modules need. Everything is
// passed explicitly; no package-level lookup anywhere below this point.
type Deps struct {
	Config    *config.Config
	Logger    *logrus.Logger
	Pool      *pgxpool.Pool
	Redis     *redis.Client
	ES        *elasticsearch.Client
	GCS       *storage.Client
	JWT       *helpers.JWTManager
	Publisher application.Publisher
}

// InitModules builds the repositories, services and handlers and registers
// every feature module with the registry.
func InitModules(r *Registry, d Deps) {
	dogRepo := pginfra.NewDogRepository(d.Pool)
	userRepo := pginfra.NewUserRepository(d.Pool)

	dogSvc := application.NewDogService(dogRepo, d.ES, d.Config.ESDogsIndex, d.Logger)
	authSvc := application.NewAuthService(userRepo, d.JWT, d.Publisher, d.Logger,
		d.Config.ResetPasswordURL, d.Config.ResetTokenTTL, d.Config.VerifyOTPTTL)
	userSvc := application.NewUserService(userRepo, d.GCS, d.Config.GCSBucket, d.Logger)

	dogHandler := handlers.NewDogHandler(dogSvc, d.Logger)
	authHandler := handlers.NewAuthHandler(authSvc, d.Logger, d.Config.CookieDomain, d.Config.CookieSecure)
	userHandler := handlers.NewUserHandler(userSvc, d.Logger)

	r.Add(modules.NewDogModule(dogHandler, userRepo, d.JWT, d.Redis))
	r.Add(modules.NewUserModule(authHandler, userHandler, userRepo, d.JWT, d.Redis))
}

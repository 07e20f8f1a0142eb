package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/dogshouse/dogs-api/internal/domain/entity"
	"github.com/dogshouse/dogs-api/internal/domain/repository"
	handlers "github.com/dogshouse/dogs-api/internal/interface/http"
	"github.com/dogshouse/dogs-api/internal/interface/middleware"
	"github.com/dogshouse/dogs-api/pkg/helpers"
)

// DogModule wires the dogs catalogue routes.
// Public: listing and single reads.
// Protected: search, the aggregate reports (verified accounts only) and the
// writes (admin/seller roles).
type DogModule struct {
	Handler *handlers.DogHandler
	Users   repository.UserRepository
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewDogModule(h *handlers.DogHandler, users repository.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client) *DogModule {
	return &DogModule{Handler: h, Users: users, JWT: jwt, Redis: rdb}
}

func (m *DogModule) Register(rg *gin.RouterGroup) {
	dogs := rg.Group("/dogs")

	protect := middleware.Protect(m.Users, m.JWT)
	verified := middleware.RequireVerified()
	staff := middleware.RestrictTo(entity.RoleAdmin, entity.RoleSeller)

	dogs.GET("", m.Handler.List)
	dogs.GET("/:id", m.Handler.Get)

	searchLimiter := middleware.RateLimit(m.Redis, 30, time.Minute, middleware.KeyByIPAndPath())
	dogs.GET("/search", protect, searchLimiter, m.Handler.Search)
	dogs.GET("/dogs-stats", protect, verified, m.Handler.Stats)
	dogs.GET("/top-3-smart-dogs", protect, verified, m.Handler.TopSmart)

	dogs.POST("", protect, staff, m.Handler.Create)
	dogs.PATCH("/:id", protect, staff, m.Handler.Update)
	dogs.DELETE("/:id", protect, staff, m.Handler.Delete)
}

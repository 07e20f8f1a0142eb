package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/dogshouse/dogs-api/internal/domain/repository"
	handlers "github.com/dogshouse/dogs-api/internal/interface/http"
	"github.com/dogshouse/dogs-api/internal/interface/middleware"
	"github.com/dogshouse/dogs-api/pkg/helpers"
)

// UserModule wires the accounts routes: signup/login, the credential flows
// and the profile endpoints. The credential endpoints carry tighter per-IP
// limiters than the global one.
type UserModule struct {
	Auth    *handlers.AuthHandler
	Profile *handlers.UserHandler
	Users   repository.UserRepository
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewUserModule(auth *handlers.AuthHandler, profile *handlers.UserHandler,
	users repository.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client) *UserModule {
	return &UserModule{Auth: auth, Profile: profile, Users: users, JWT: jwt, Redis: rdb}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	group := rg.Group("/users")

	signupLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath())
	loginLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath())
	forgotLimiter := middleware.RateLimit(m.Redis, 5, time.Minute, middleware.KeyByIPAndPath())
	resetLimiter := middleware.RateLimit(m.Redis, 30, time.Minute, middleware.KeyByIPAndPath())

	group.POST("/signup", signupLimiter, m.Auth.Signup)
	group.POST("/login", loginLimiter, m.Auth.Login)
	group.POST("/forgot-password", forgotLimiter, m.Auth.ForgotPassword)
	group.PATCH("/reset-password/:token", resetLimiter, m.Auth.ResetPassword)
	group.PATCH("/confirm-email/:id", resetLimiter, m.Auth.ConfirmEmail)

	protect := middleware.Protect(m.Users, m.JWT)

	group.GET("", protect, m.Profile.List)
	group.GET("/me", protect, m.Profile.Me)
	group.PATCH("/update-current-password", protect, m.Auth.UpdatePassword)
	group.POST("/verify-email", protect, m.Auth.VerifyEmail)
	group.PATCH("/update-me", protect, m.Profile.UpdateMe)
	group.DELETE("/delete-me", protect, m.Profile.DeleteMe)
	group.POST("/avatar", protect, m.Profile.UploadAvatar)
}

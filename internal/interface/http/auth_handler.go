package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dogshouse/dogs-api/internal/application"
	"github.com/dogshouse/dogs-api/internal/interface/middleware"
	"github.com/dogshouse/dogs-api/pkg/helpers"
	"github.com/dogshouse/dogs-api/pkg/response"
)

type AuthHandler struct {
	Svc     *application.AuthService
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type signupRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,pwd"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required,eqfield=Password"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Password        string `json:"password" binding:"required,pwd"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required,eqfield=Password"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	Password        string `json:"password" binding:"required,pwd"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required,eqfield=Password"`
}

type confirmEmailRequest struct {
	OTP string `json:"otp" binding:"required,len=6,numeric"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	_, token, exp, err := h.Svc.Signup(c.Request.Context(), application.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Cookies.SetJWT(c, token, exp)
	response.Token(c, http.StatusOK, token)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	_, token, exp, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Cookies.SetJWT(c, token, exp)
	response.Token(c, http.StatusOK, token)
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.Svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		_ = c.Error(err)
		return
	}
	response.Message(c, http.StatusOK, "Token sent to email!")
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	_, token, exp, err := h.Svc.ResetPassword(c.Request.Context(), c.Param("token"), req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Cookies.SetJWT(c, token, exp)
	response.Token(c, http.StatusCreated, token)
}

func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	token, exp, err := h.Svc.UpdatePassword(c.Request.Context(),
		c.GetString(middleware.CtxUserIDKey), req.CurrentPassword, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Cookies.SetJWT(c, token, exp)
	response.Token(c, http.StatusCreated, token)
}

// VerifyEmail mails a fresh OTP code to the logged-in user.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	if err := h.Svc.RequestEmailVerify(c.Request.Context(), c.GetString(middleware.CtxUserIDKey)); err != nil {
		_ = c.Error(err)
		return
	}
	response.Message(c, http.StatusOK, "OTP sent to email!")
}

// ConfirmEmail redeems the mailed OTP for the account in the path.
func (h *AuthHandler) ConfirmEmail(c *gin.Context) {
	var req confirmEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.Svc.ConfirmEmailVerify(c.Request.Context(), c.Param("id"), req.OTP); err != nil {
		_ = c.Error(err)
		return
	}
	response.Message(c, http.StatusCreated, "Email verified!")
}

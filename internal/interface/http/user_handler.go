package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dogshouse/dogs-api/internal/application"
	"github.com/dogshouse/dogs-api/internal/interface/middleware"
	"github.com/dogshouse/dogs-api/pkg/apperror"
	"github.com/dogshouse/dogs-api/pkg/response"
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type updateMeRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email" binding:"omitempty,email"`
	Avatar *string `json:"avatar"`

	// Present only to produce a clear rejection; password changes go
	// through /update-current-password.
	Password *string `json:"password"`
}

type deleteMeRequest struct {
	Password string `json:"password" binding:"required"`
	Reason   string `json:"reason"`
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Svc.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Data(c, http.StatusOK, gin.H{"users": users})
}

func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.Svc.Get(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Data(c, http.StatusOK, gin.H{"user": u})
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	if req.Password != nil {
		_ = c.Error(apperror.BadRequest("This route is not for password updates. Please use /update-current-password"))
		return
	}
	u, err := h.Svc.UpdateMe(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), application.UpdateMeInput{
		Name:   req.Name,
		Email:  req.Email,
		Avatar: req.Avatar,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Data(c, http.StatusOK, gin.H{"user": u})
}

func (h *UserHandler) DeleteMe(c *gin.Context) {
	var req deleteMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.Svc.DeleteMe(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), req.Password, req.Reason); err != nil {
		_ = c.Error(err)
		return
	}
	response.NoContent(c)
}

// UploadAvatar accepts a multipart "avatar" file and stores it in the
// bucket.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		_ = c.Error(apperror.BadRequest("Missing avatar file"))
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer f.Close()

	u, err := h.Svc.UploadAvatar(c.Request.Context(),
		c.GetString(middleware.CtxUserIDKey),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		f,
	)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Data(c, http.StatusOK, gin.H{"user": u})
}

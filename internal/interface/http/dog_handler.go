package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dogshouse/dogs-api/internal/application"
	"github.com/dogshouse/dogs-api/internal/domain/entity"
	"github.com/dogshouse/dogs-api/pkg/apperror"
	"github.com/dogshouse/dogs-api/pkg/response"
)

type DogHandler struct {
	Svc    *application.DogService
	Logger *logrus.Logger
}

func NewDogHandler(svc *application.DogService, logger *logrus.Logger) *DogHandler {
	return &DogHandler{Svc: svc, Logger: logger}
}

type createDogRequest struct {
	Name         string  `json:"name" binding:"required"`
	Owner        string  `json:"owner"`
	Breed        string  `json:"breed" binding:"required"`
	BreedType    string  `json:"breedType" binding:"omitempty,oneof=Purebred Wild"`
	Popularity   float64 `json:"popularity"`
	Intelligence float64 `json:"intelligence" binding:"omitempty,min=1,max=10"`
	Photo        string  `json:"photo" binding:"required"`
}

type updateDogRequest struct {
	Name         *string  `json:"name"`
	Owner        *string  `json:"owner"`
	Breed        *string  `json:"breed"`
	BreedType    *string  `json:"breedType" binding:"omitempty,oneof=Purebred Wild"`
	Popularity   *float64 `json:"popularity"`
	Intelligence *float64 `json:"intelligence" binding:"omitempty,min=1,max=10"`
	Photo        *string  `json:"photo"`
}

// List serves the catalogue through the query-feature pipeline; filter,
// sort, fields, page and limit all come straight from the query string.
func (h *DogHandler) List(c *gin.Context) {
	dogs, err := h.Svc.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Data(c, http.StatusOK, gin.H{"dogs": dogs})
}

func (h *DogHandler) Get(c *gin.Context) {
	dog, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Data(c, http.StatusOK, gin.H{"dog": dog})
}

func (h *DogHandler) Create(c *gin.Context) {
	var req createDogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	dog, err := h.Svc.Create(c.Request.Context(), &entity.Dog{
		Name:         req.Name,
		Owner:        req.Owner,
		Breed:        req.Breed,
		BreedType:    req.BreedType,
		Popularity:   req.Popularity,
		Intelligence: req.Intelligence,
		Photo:        req.Photo,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Data(c, http.StatusCreated, gin.H{"dog": dog})
}

func (h *DogHandler) Update(c *gin.Context) {
	var req updateDogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	dog, err := h.Svc.Update(c.Request.Context(), c.Param("id"), application.UpdateDogInput{
		Name:         req.Name,
		Owner:        req.Owner,
		Breed:        req.Breed,
		BreedType:    req.BreedType,
		Popularity:   req.Popularity,
		Intelligence: req.Intelligence,
		Photo:        req.Photo,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Data(c, http.StatusOK, gin.H{"dog": dog})
}

func (h *DogHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	response.NoContent(c)
}

func (h *DogHandler) Stats(c *gin.Context) {
	stats, err := h.Svc.Stats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Data(c, http.StatusOK, gin.H{"stats": stats})
}

func (h *DogHandler) TopSmart(c *gin.Context) {
	dogs, err := h.Svc.TopSmart(c.Request.Context(), 3)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Data(c, http.StatusOK, gin.H{"dogs": dogs})
}

func (h *DogHandler) Search(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		_ = c.Error(apperror.BadRequest("Missing search term"))
		return
	}
	dogs, err := h.Svc.Search(c.Request.Context(), term)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Data(c, http.StatusOK, gin.H{"dogs": dogs})
}

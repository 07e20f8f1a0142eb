package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dogshouse/dogs-api/internal/interface/middleware"
	"github.com/dogshouse/dogs-api/pkg/validation"
)

func dogCreateRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	r := gin.New()
	r.Use(middleware.ErrorHandler(log, true))
	h := NewDogHandler(nil, log)
	r.POST("/api/v1/dogs", h.Create)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestCreateDogRequiresPhoto(t *testing.T) {
	r := dogCreateRouter(t)

	rr := postJSON(t, r, "/api/v1/dogs", `{"name":"Rex","breed":"Husky"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "fail", body["status"])
	assert.Contains(t, body["message"], "photo is required")
}

func TestCreateDogRejectsUnknownBreedType(t *testing.T) {
	r := dogCreateRouter(t)

	rr := postJSON(t, r, "/api/v1/dogs",
		`{"name":"Rex","breed":"Husky","photo":"rex.jpg","breedType":"Hybrid"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "fail", body["status"])
	assert.Contains(t, body["message"], "breedType")
}

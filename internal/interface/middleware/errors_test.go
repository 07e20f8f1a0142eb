package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dogshouse/dogs-api/internal/domain/repository"
	"github.com/dogshouse/dogs-api/pkg/apperror"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func serveFailing(t *testing.T, production bool, fail error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler(testLogger(), production))
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(fail)
	})
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", nil))
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestErrorHandlerOperational(t *testing.T) {
	rr := serveFailing(t, true, apperror.NotFound("No dog found with that ID"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "fail", body["status"])
	assert.Equal(t, "No dog found with that ID", body["message"])
	assert.NotContains(t, body, "stack")
}

func TestErrorHandlerRepositoryNotFound(t *testing.T) {
	// A missing row forwarded straight from a repository must render the
	// uniform 404, never a 500.
	rr := serveFailing(t, true, repository.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "fail", body["status"])
	assert.Equal(t, "Resource not found", body["message"])
}

func TestErrorHandlerHidesInternalsInProduction(t *testing.T) {
	rr := serveFailing(t, true, errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Something went wrong", body["message"])
	assert.NotContains(t, rr.Body.String(), "connection refused")
}

func TestErrorHandlerDevelopmentCarriesCauseAndStack(t *testing.T) {
	rr := serveFailing(t, false, errors.New("pq: connection refused"))
	body := decode(t, rr)
	assert.Equal(t, "pq: connection refused", body["error"])
	assert.Contains(t, body, "stack")
}

func TestErrorHandlerMapsDuplicateKey(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "dogs_name_key"}
	rr := serveFailing(t, true, pgErr)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "fail", body["status"])
	assert.Equal(t, "The name already exists", body["message"])
}

func TestErrorHandlerMapsInvalidIdentifier(t *testing.T) {
	rr := serveFailing(t, true, &pgconn.PgError{Code: "22P02"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid identifier", decode(t, rr)["message"])
}

func TestNotFoundHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.NoRoute(NotFoundHandler())

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "fail", body["status"])
	assert.Equal(t, "Can't find /api/v1/nope on this server!", body["message"])
}

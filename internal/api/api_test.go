package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	backend "urbansense/internal/api"
	"urbansense/internal/cache"
	"urbansense/internal/core"
	"urbansense/internal/core/forest"
	"urbansense/internal/database"
	"urbansense/internal/dataset"
	"urbansense/internal/features"
	"urbansense/internal/geo"
	"urbansense/pkg/api"
)

func createDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.GetMigrator(db).Migrate())
	return db
}

func createRouter(t *testing.T, db *gorm.DB) chi.Router {
	t.Helper()

	profile := geo.DefaultProfile()
	profile.GridSpacing = 0.002

	extractor := features.NewSyntheticExtractor(profile, 42)
	samples, err := dataset.NewGenerator(profile, extractor, false).Generate(context.Background())
	require.NoError(t, err)

	rows, labels := dataset.ToMatrix(samples)
	pipeline, _, err := forest.TrainPipeline(rows, labels, features.Names, 0.2, forest.Config{NumTrees: 15, MaxDepth: 10, MinLeaf: 1, Seed: 42})
	require.NoError(t, err)

	predictor := core.NewPredictor(profile, pipeline, extractor, cache.New(db, 128, 0))
	service := backend.NewBackendService(db, predictor)

	router := chi.NewRouter()
	service.AddRoutes(router)
	return router
}

func postPredict(t *testing.T, router chi.Router, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router := createRouter(t, createDB(t))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var response api.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response.Status)
}

func TestPredict(t *testing.T) {
	db := createDB(t)
	router := createRouter(t, db)

	rec := postPredict(t, router, `{"latitude": 4.2250, "longitude": 73.5400}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var response api.PredictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))

	assert.NotEmpty(t, response.Prediction)
	assert.NotEmpty(t, response.Why)
	assert.False(t, response.Cached)
	assert.Len(t, response.Features, len(features.Names))

	sum := 0.0
	for _, s := range response.ConfidenceScores {
		sum += s
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	// The prediction is logged.
	var count int64
	require.NoError(t, db.Model(&database.Prediction{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPredictRepeatedIsCachedAndStable(t *testing.T) {
	router := createRouter(t, createDB(t))

	first := postPredict(t, router, `{"latitude": 4.2250, "longitude": 73.5400}`)
	require.Equal(t, http.StatusOK, first.Code)
	second := postPredict(t, router, `{"latitude": 4.2250, "longitude": 73.5400}`)
	require.Equal(t, http.StatusOK, second.Code)

	var firstResp, secondResp api.PredictResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &firstResp))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &secondResp))

	assert.False(t, firstResp.Cached)
	assert.True(t, secondResp.Cached)
	assert.Equal(t, firstResp.Prediction, secondResp.Prediction)
	assert.Equal(t, firstResp.ConfidenceScores, secondResp.ConfidenceScores)
	assert.Equal(t, firstResp.Features, secondResp.Features)
	assert.Equal(t, firstResp.Why, secondResp.Why)
}

func TestPredictQueryParams(t *testing.T) {
	router := createRouter(t, createDB(t))

	req := httptest.NewRequest(http.MethodGet, "/predict?latitude=4.2250&longitude=73.5400", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var response api.PredictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.NotEmpty(t, response.Prediction)
}

func TestPredictMalformedInput(t *testing.T) {
	router := createRouter(t, createDB(t))

	rec := postPredict(t, router, `{"latitude": "not a number"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postPredict(t, router, `{broken`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/predict?latitude=abc&longitude=73.54", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPredictOutOfBounds(t *testing.T) {
	router := createRouter(t, createDB(t))

	rec := postPredict(t, router, `{"latitude": 52.52, "longitude": 13.40}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetModel(t *testing.T) {
	router := createRouter(t, createDB(t))

	req := httptest.NewRequest(http.MethodGet, "/model", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var response api.ModelInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))

	assert.Equal(t, features.Names, response.FeatureNames)
	assert.Equal(t, 15, response.NumTrees)
	assert.NotEmpty(t, response.Classes)
}

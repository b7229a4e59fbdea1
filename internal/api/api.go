package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"urbansense/internal/core"
	"urbansense/internal/database"
	"urbansense/pkg/api"
)

type BackendService struct {
	db        *gorm.DB
	predictor *core.Predictor
}

func NewBackendService(db *gorm.DB, predictor *core.Predictor) *BackendService {
	return &BackendService{db: db, predictor: predictor}
}

func (s *BackendService) AddRoutes(r chi.Router) {
	r.Get("/health", RestHandler(func(r *http.Request) (any, error) {
		return api.HealthResponse{Status: "healthy"}, nil
	}))
	r.Post("/predict", RestHandler(s.Predict))
	r.Get("/predict", RestHandler(s.PredictQuery))
	r.Get("/model", RestHandler(s.GetModel))
}

// Predict handles the map click: JSON body with latitude/longitude.
func (s *BackendService) Predict(r *http.Request) (any, error) {
	req, err := ParseRequest[api.PredictRequest](r)
	if err != nil {
		return nil, err
	}
	return s.predict(r, req)
}

// PredictQuery is the GET variant, ?latitude=..&longitude=.., handy for
// curl and dashboards.
func (s *BackendService) PredictQuery(r *http.Request) (any, error) {
	req, err := ParseRequestQueryParams[api.PredictRequest](r)
	if err != nil {
		return nil, err
	}
	return s.predict(r, req)
}

func (s *BackendService) predict(r *http.Request, req api.PredictRequest) (any, error) {
	ctx := r.Context()

	result, err := s.predictor.Predict(ctx, req.Latitude, req.Longitude)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidCoordinate):
			return nil, CodedErrorf(http.StatusBadRequest, "latitude and longitude must be finite numbers")
		case errors.Is(err, core.ErrOutOfBounds):
			return nil, CodedErrorf(http.StatusUnprocessableEntity, "coordinate (%f, %f) is outside the supported region", req.Latitude, req.Longitude)
		default:
			return nil, CodedErrorf(http.StatusInternalServerError, "prediction failed: %v", err)
		}
	}

	id := uuid.New()
	if s.db != nil {
		database.SavePrediction(ctx, s.db, id, result.Point.Lat(), result.Point.Lon(), result.Label, result.Scores[result.Label], result.Cached)
	}

	return api.PredictResponse{
		Id:               id,
		Prediction:       result.Label,
		ConfidenceScores: result.Scores,
		Why:              result.Why,
		Features:         result.Features.Map(),
		Cached:           result.Cached,
	}, nil
}

func (s *BackendService) GetModel(r *http.Request) (any, error) {
	pipeline := s.predictor.Pipeline()
	return api.ModelInfo{
		Classes:      pipeline.Classes,
		FeatureNames: pipeline.FeatureNames,
		NumTrees:     len(pipeline.Forest.Trees),
		TrainedAt:    pipeline.TrainedAt,
		Accuracy:     pipeline.Accuracy,
	}, nil
}

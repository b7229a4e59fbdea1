package forest

import (
	"encoding/gob"
	"fmt"
	"os"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Pipeline is the serialized model artifact: the fitted scaler, the trained
// forest, and the label/feature vocabulary. It is written once by the trainer
// and loaded read-only by the prediction service.
type Pipeline struct {
	Scaler       *StandardScaler
	Forest       *Forest
	Classes      []string
	FeatureNames []string
	TrainedAt    time.Time
	Accuracy     float64
}

// PredictProba scales a raw feature row and returns per-class probabilities
// keyed by class name, plus the top class.
func (p *Pipeline) PredictProba(row []float64) (map[string]float64, string, error) {
	if len(row) != len(p.FeatureNames) {
		return nil, "", fmt.Errorf("expected %d features, got %d", len(p.FeatureNames), len(row))
	}

	probs := p.Forest.PredictProba(p.Scaler.Transform(row))

	scores := make(map[string]float64, len(p.Classes))
	for i, class := range p.Classes {
		scores[class] = probs[i]
	}
	return scores, p.Classes[floats.MaxIdx(probs)], nil
}

// Save writes the pipeline to path as a gob artifact.
func (p *Pipeline) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating model artifact %s: %w", path, err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(p); err != nil {
		return fmt.Errorf("error encoding model artifact: %w", err)
	}
	return nil
}

// Load reads a pipeline artifact from path.
func Load(path string) (*Pipeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening model artifact %s: %w", path, err)
	}
	defer f.Close()

	var p Pipeline
	if err := gob.NewDecoder(f).Decode(&p); err != nil {
		return nil, fmt.Errorf("error decoding model artifact %s: %w", path, err)
	}
	if p.Scaler == nil || p.Forest == nil || len(p.Classes) == 0 {
		return nil, fmt.Errorf("model artifact %s is incomplete", path)
	}
	return &p, nil
}

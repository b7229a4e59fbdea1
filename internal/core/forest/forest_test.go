package forest

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blobs builds a toy three-class dataset with well-separated clusters.
func blobs(n int, seed int64) ([][]float64, []string) {
	rng := rand.New(rand.NewSource(seed))
	centers := map[string][]float64{
		"A": {0, 0},
		"B": {10, 0},
		"C": {0, 10},
	}

	var rows [][]float64
	var labels []string
	for label, center := range centers {
		for i := 0; i < n; i++ {
			rows = append(rows, []float64{
				center[0] + rng.NormFloat64(),
				center[1] + rng.NormFloat64(),
			})
			labels = append(labels, label)
		}
	}
	return rows, labels
}

func TestFitScaler(t *testing.T) {
	rows := [][]float64{{1, 100}, {2, 100}, {3, 100}}

	scaler, err := FitScaler(rows)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, scaler.Mean[0], 1e-9)
	// Constant column keeps std 1 so Transform stays finite.
	assert.Equal(t, 1.0, scaler.Std[1])

	scaled := scaler.Transform([]float64{2, 100})
	assert.InDelta(t, 0, scaled[0], 1e-9)
	assert.InDelta(t, 0, scaled[1], 1e-9)

	_, err = FitScaler(nil)
	assert.Error(t, err)
}

func TestTrainPipelineSeparable(t *testing.T) {
	rows, labels := blobs(60, 7)

	cfg := Config{NumTrees: 25, MaxDepth: 8, MinLeaf: 1, Seed: 42}
	pipeline, report, err := TrainPipeline(rows, labels, []string{"x", "y"}, 0.2, cfg)
	require.NoError(t, err)

	assert.Greater(t, report.Accuracy, 0.95)
	assert.Equal(t, []string{"A", "B", "C"}, pipeline.Classes)
	assert.Len(t, report.PerClass, 3)
	assert.Equal(t, report.TrainSize+report.TestSize, len(rows))

	scores, top, err := pipeline.PredictProba([]float64{10, 0})
	require.NoError(t, err)
	assert.Equal(t, "B", top)

	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestTrainingIsDeterministic(t *testing.T) {
	rows, labels := blobs(40, 3)
	cfg := Config{NumTrees: 15, MaxDepth: 8, MinLeaf: 1, Seed: 42}

	first, _, err := TrainPipeline(rows, labels, []string{"x", "y"}, 0.2, cfg)
	require.NoError(t, err)
	second, _, err := TrainPipeline(rows, labels, []string{"x", "y"}, 0.2, cfg)
	require.NoError(t, err)

	probe := [][]float64{{0, 0}, {10, 0}, {0, 10}, {5, 5}, {-2, 3}}
	for _, row := range probe {
		_, topFirst, err := first.PredictProba(row)
		require.NoError(t, err)
		_, topSecond, err := second.PredictProba(row)
		require.NoError(t, err)
		assert.Equal(t, topFirst, topSecond)

		scoresFirst, _, _ := first.PredictProba(row)
		scoresSecond, _, _ := second.PredictProba(row)
		assert.Equal(t, scoresFirst, scoresSecond)
	}
}

func TestProbabilitiesSumToOne(t *testing.T) {
	rows, labels := blobs(30, 11)
	cfg := Config{NumTrees: 10, MaxDepth: 6, MinLeaf: 1, Seed: 1}

	pipeline, _, err := TrainPipeline(rows, labels, []string{"x", "y"}, 0.2, cfg)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 50; i++ {
		row := []float64{rng.Float64()*20 - 5, rng.Float64()*20 - 5}
		scores, _, err := pipeline.PredictProba(row)
		require.NoError(t, err)

		sum := 0.0
		for _, s := range scores {
			sum += s
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestPipelineSaveLoadRoundtrip(t *testing.T) {
	rows, labels := blobs(30, 13)
	cfg := Config{NumTrees: 10, MaxDepth: 6, MinLeaf: 1, Seed: 42}

	pipeline, _, err := TrainPipeline(rows, labels, []string{"x", "y"}, 0.2, cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.gob")
	require.NoError(t, pipeline.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, pipeline.Classes, loaded.Classes)
	assert.Equal(t, pipeline.FeatureNames, loaded.FeatureNames)

	probe := [][]float64{{0, 0}, {10, 0}, {0, 10}}
	for _, row := range probe {
		origScores, origTop, err := pipeline.PredictProba(row)
		require.NoError(t, err)
		loadedScores, loadedTop, err := loaded.PredictProba(row)
		require.NoError(t, err)
		assert.Equal(t, origTop, loadedTop)
		assert.Equal(t, origScores, loadedScores)
	}
}

func TestLoadMissingArtifact(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.gob"))
	assert.Error(t, err)
}

func TestPredictProbaWrongWidth(t *testing.T) {
	rows, labels := blobs(20, 1)
	pipeline, _, err := TrainPipeline(rows, labels, []string{"x", "y"}, 0.2, Config{NumTrees: 5, MaxDepth: 4, MinLeaf: 1, Seed: 1})
	require.NoError(t, err)

	_, _, err = pipeline.PredictProba([]float64{1})
	assert.Error(t, err)
}

package forest

import (
	"fmt"
	"math/rand"
	"sort"
	"time"
)

// ClassMetrics holds per-class evaluation results on the held-out split.
type ClassMetrics struct {
	Class     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report summarizes a training run.
type Report struct {
	Accuracy  float64
	PerClass  []ClassMetrics
	TrainSize int
	TestSize  int
}

// TrainPipeline runs the full supervised flow: stratified train/test split,
// scaler fit on the train split, forest training, and evaluation on the test
// split. Labels are encoded against the sorted set of distinct class names.
func TrainPipeline(rows [][]float64, labels []string, featureNames []string, testFraction float64, cfg Config) (*Pipeline, *Report, error) {
	if len(rows) != len(labels) {
		return nil, nil, fmt.Errorf("row/label count mismatch: %d vs %d", len(rows), len(labels))
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("cannot train on empty dataset")
	}

	classes := encodeClasses(labels)
	encoded := make([]int, len(labels))
	for i, label := range labels {
		encoded[i] = indexOf(classes, label)
	}

	trainIdx, testIdx := stratifiedSplit(encoded, len(classes), testFraction, cfg.Seed)

	trainRows, trainLabels := subset(rows, encoded, trainIdx)
	testRows, testLabels := subset(rows, encoded, testIdx)

	scaler, err := FitScaler(trainRows)
	if err != nil {
		return nil, nil, err
	}

	f, err := Train(scaler.TransformAll(trainRows), trainLabels, len(classes), cfg)
	if err != nil {
		return nil, nil, err
	}

	report := evaluate(f, scaler.TransformAll(testRows), testLabels, classes)
	report.TrainSize = len(trainIdx)
	report.TestSize = len(testIdx)

	pipeline := &Pipeline{
		Scaler:       scaler,
		Forest:       f,
		Classes:      classes,
		FeatureNames: featureNames,
		TrainedAt:    time.Now().UTC(),
		Accuracy:     report.Accuracy,
	}
	return pipeline, report, nil
}

func encodeClasses(labels []string) []string {
	seen := map[string]struct{}{}
	var classes []string
	for _, label := range labels {
		if _, ok := seen[label]; !ok {
			seen[label] = struct{}{}
			classes = append(classes, label)
		}
	}
	sort.Strings(classes)
	return classes
}

func indexOf(classes []string, label string) int {
	for i, c := range classes {
		if c == label {
			return i
		}
	}
	return -1
}

// stratifiedSplit shuffles within each class so the test split preserves the
// class balance of the dataset.
func stratifiedSplit(labels []int, numClasses int, testFraction float64, seed int64) (trainIdx, testIdx []int) {
	rng := rand.New(rand.NewSource(seed))

	byClass := make([][]int, numClasses)
	for i, label := range labels {
		byClass[label] = append(byClass[label], i)
	}

	for _, members := range byClass {
		rng.Shuffle(len(members), func(i, j int) {
			members[i], members[j] = members[j], members[i]
		})
		nTest := int(float64(len(members)) * testFraction)
		testIdx = append(testIdx, members[:nTest]...)
		trainIdx = append(trainIdx, members[nTest:]...)
	}

	sort.Ints(trainIdx)
	sort.Ints(testIdx)
	return trainIdx, testIdx
}

func subset(rows [][]float64, labels []int, idx []int) ([][]float64, []int) {
	outRows := make([][]float64, len(idx))
	outLabels := make([]int, len(idx))
	for i, j := range idx {
		outRows[i] = rows[j]
		outLabels[i] = labels[j]
	}
	return outRows, outLabels
}

func evaluate(f *Forest, rows [][]float64, labels []int, classes []string) *Report {
	report := &Report{}
	if len(rows) == 0 {
		return report
	}

	truePos := make([]int, len(classes))
	falsePos := make([]int, len(classes))
	falseNeg := make([]int, len(classes))
	support := make([]int, len(classes))
	correct := 0

	for i, row := range rows {
		predicted := f.Predict(row)
		actual := labels[i]
		support[actual]++
		if predicted == actual {
			correct++
			truePos[actual]++
		} else {
			falsePos[predicted]++
			falseNeg[actual]++
		}
	}

	report.Accuracy = float64(correct) / float64(len(rows))
	for i, class := range classes {
		m := ClassMetrics{Class: class, Support: support[i]}
		if truePos[i]+falsePos[i] > 0 {
			m.Precision = float64(truePos[i]) / float64(truePos[i]+falsePos[i])
		}
		if truePos[i]+falseNeg[i] > 0 {
			m.Recall = float64(truePos[i]) / float64(truePos[i]+falseNeg[i])
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		report.PerClass = append(report.PerClass, m)
	}
	return report
}

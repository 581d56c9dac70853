package ml

import (
	"encoding/json"
	"errors"
	"math"
	"sort"
)

// KNN is a k-nearest-neighbors classifier. The whole training set is the
// model; prediction is a majority vote among the k nearest vectors by
// Euclidean distance. Ties break toward the nearer neighbor, then toward
// the lower class index, so predictions are deterministic.
type KNN struct {
	k       int
	vectors [][]float64
	labels  []int
}

func NewKNN(k int) *KNN {
	if k <= 0 {
		k = 5
	}
	return &KNN{k: k}
}

func (m *KNN) Name() string {
	return "knn"
}

func (m *KNN) K() int {
	return m.k
}

func (m *KNN) Train(features [][]float64, labels []int) error {
	if len(features) == 0 || len(labels) == 0 {
		return &TrainingError{Reason: "features or labels empty"}
	}
	if len(features) != len(labels) {
		return &TrainingError{Reason: "features and labels size mismatch"}
	}
	width := len(features[0])
	for _, vector := range features {
		if len(vector) != width {
			return &TrainingError{Reason: "ragged feature vectors"}
		}
	}

	m.vectors = make([][]float64, len(features))
	for i, vector := range features {
		m.vectors[i] = append([]float64(nil), vector...)
	}
	m.labels = append([]int(nil), labels...)
	return nil
}

func (m *KNN) Predict(features []float64) (int, float64, error) {
	if len(m.vectors) == 0 {
		return 0, 0, errors.New("model not trained")
	}
	if len(features) != len(m.vectors[0]) {
		return 0, 0, errors.New("feature vector size mismatch")
	}

	type neighbor struct {
		index    int
		distance float64
	}
	neighbors := make([]neighbor, len(m.vectors))
	for i, vector := range m.vectors {
		neighbors[i] = neighbor{index: i, distance: euclidean(features, vector)}
	}
	sort.Slice(neighbors, func(a, b int) bool {
		if neighbors[a].distance != neighbors[b].distance {
			return neighbors[a].distance < neighbors[b].distance
		}
		return neighbors[a].index < neighbors[b].index
	})

	k := m.k
	if k > len(neighbors) {
		k = len(neighbors)
	}

	votes := make(map[int]int)
	firstSeen := make(map[int]int)
	for rank := 0; rank < k; rank++ {
		label := m.labels[neighbors[rank].index]
		votes[label]++
		if _, ok := firstSeen[label]; !ok {
			firstSeen[label] = rank
		}
	}

	best := -1
	bestVotes := -1
	for label, count := range votes {
		if count > bestVotes {
			best = label
			bestVotes = count
			continue
		}
		if count == bestVotes {
			if firstSeen[label] < firstSeen[best] ||
				(firstSeen[label] == firstSeen[best] && label < best) {
				best = label
			}
		}
	}

	return best, float64(bestVotes) / float64(k), nil
}

type knnPayload struct {
	K       int         `json:"k"`
	Vectors [][]float64 `json:"vectors"`
	Labels  []int       `json:"labels"`
}

func (m *KNN) MarshalJSON() ([]byte, error) {
	if len(m.vectors) == 0 {
		return nil, errors.New("model not trained")
	}
	return json.Marshal(knnPayload{K: m.k, Vectors: m.vectors, Labels: m.labels})
}

func (m *KNN) UnmarshalJSON(data []byte) error {
	var payload knnPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	if payload.K <= 0 || len(payload.Vectors) == 0 || len(payload.Vectors) != len(payload.Labels) {
		return errors.New("invalid knn payload")
	}
	m.k = payload.K
	m.vectors = payload.Vectors
	m.labels = payload.Labels
	return nil
}

func euclidean(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

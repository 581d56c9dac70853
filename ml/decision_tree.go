package ml

import (
	"encoding/json"
	"errors"
	"math"
)

// DecisionTree is a CART-style classifier: binary splits on the median of
// the best feature by gini impurity, stored as a flat node array.
type DecisionTree struct {
	maxDepth int
	nodes    []treeNode
}

type treeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	ClassLabel int     `json:"class_label"`
	Confidence float64 `json:"confidence"`
	IsLeaf     bool    `json:"is_leaf"`
}

func NewDecisionTree(maxDepth int) *DecisionTree {
	if maxDepth <= 0 {
		maxDepth = 6
	}
	return &DecisionTree{maxDepth: maxDepth}
}

func (dt *DecisionTree) Name() string {
	return "decision_tree"
}

func (dt *DecisionTree) Train(features [][]float64, labels []int) error {
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

	dt.nodes = dt.buildNode(features, labels, 0)
	return nil
}

func (dt *DecisionTree) Predict(features []float64) (int, float64, error) {
	if len(dt.nodes) == 0 {
		return 0, 0, errors.New("model not trained")
	}
	idx := 0
	for {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return node.ClassLabel, node.Confidence, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, 0, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.nodes) {
			return 0, 0, errors.New("invalid tree state")
		}
	}
}

func (dt *DecisionTree) buildNode(features [][]float64, labels []int, depth int) []treeNode {
	label, share := majorityLabel(labels)
	leaf := treeNode{
		FeatureIdx: -1,
		LeftChild:  -1,
		RightChild: -1,
		ClassLabel: label,
		Confidence: share,
		IsLeaf:     true,
	}
	if depth >= dt.maxDepth || isPure(labels) {
		return []treeNode{leaf}
	}

	bestFeature, threshold, ok := findBestSplit(features, labels)
	if !ok {
		return []treeNode{leaf}
	}

	leftFeatures, leftLabels, rightFeatures, rightLabels := splitData(features, labels, bestFeature, threshold)
	if len(leftLabels) == 0 || len(rightLabels) == 0 {
		return []treeNode{leaf}
	}

	leftNodes := dt.buildNode(leftFeatures, leftLabels, depth+1)
	rightNodes := dt.buildNode(rightFeatures, rightLabels, depth+1)

	root := treeNode{
		FeatureIdx: bestFeature,
		Threshold:  threshold,
		LeftChild:  1,
		RightChild: 1 + len(leftNodes),
		ClassLabel: label,
		Confidence: share,
	}

	nodes := make([]treeNode, 0, 1+len(leftNodes)+len(rightNodes))
	nodes = append(nodes, root)
	nodes = append(nodes, rebaseChildren(leftNodes, 1)...)
	nodes = append(nodes, rebaseChildren(rightNodes, 1+len(leftNodes))...)
	return nodes
}

// rebaseChildren shifts a subtree's self-relative child indices to their
// absolute position in the combined node array.
func rebaseChildren(nodes []treeNode, offset int) []treeNode {
	for i := range nodes {
		if nodes[i].IsLeaf {
			continue
		}
		nodes[i].LeftChild += offset
		nodes[i].RightChild += offset
	}
	return nodes
}

type treePayload struct {
	MaxDepth int        `json:"max_depth"`
	Nodes    []treeNode `json:"nodes"`
}

func (dt *DecisionTree) MarshalJSON() ([]byte, error) {
	if len(dt.nodes) == 0 {
		return nil, errors.New("model not trained")
	}
	return json.Marshal(treePayload{MaxDepth: dt.maxDepth, Nodes: dt.nodes})
}

func (dt *DecisionTree) UnmarshalJSON(data []byte) error {
	var payload treePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	if len(payload.Nodes) == 0 {
		return errors.New("invalid decision tree payload")
	}
	dt.maxDepth = payload.MaxDepth
	dt.nodes = payload.Nodes
	return nil
}

func findBestSplit(features [][]float64, labels []int) (int, float64, bool) {
	featureCount := len(features[0])
	bestFeature := -1
	bestThreshold := 0.0
	bestImpurity := math.MaxFloat64

	for featureIdx := 0; featureIdx < featureCount; featureIdx++ {
		values := make([]float64, len(features))
		for i := range features {
			values[i] = features[i][featureIdx]
		}
		threshold := median(values)
		leftLabels, rightLabels := splitLabels(features, labels, featureIdx, threshold)
		if len(leftLabels) == 0 || len(rightLabels) == 0 {
			continue
		}
		impurity := weightedGini(leftLabels, rightLabels)
		if impurity < bestImpurity {
			bestImpurity = impurity
			bestFeature = featureIdx
			bestThreshold = threshold
		}
	}
	if bestFeature == -1 {
		return -1, 0, false
	}
	return bestFeature, bestThreshold, true
}

func splitData(features [][]float64, labels []int, featureIdx int, threshold float64) ([][]float64, []int, [][]float64, []int) {
	leftFeatures := make([][]float64, 0)
	leftLabels := make([]int, 0)
	rightFeatures := make([][]float64, 0)
	rightLabels := make([]int, 0)
	for i, feature := range features {
		if feature[featureIdx] <= threshold {
			leftFeatures = append(leftFeatures, feature)
			leftLabels = append(leftLabels, labels[i])
		} else {
			rightFeatures = append(rightFeatures, feature)
			rightLabels = append(rightLabels, labels[i])
		}
	}
	return leftFeatures, leftLabels, rightFeatures, rightLabels
}

func splitLabels(features [][]float64, labels []int, featureIdx int, threshold float64) ([]int, []int) {
	leftLabels := make([]int, 0)
	rightLabels := make([]int, 0)
	for i, feature := range features {
		if feature[featureIdx] <= threshold {
			leftLabels = append(leftLabels, labels[i])
		} else {
			rightLabels = append(rightLabels, labels[i])
		}
	}
	return leftLabels, rightLabels
}

func weightedGini(leftLabels, rightLabels []int) float64 {
	leftWeight := float64(len(leftLabels))
	rightWeight := float64(len(rightLabels))
	total := leftWeight + rightWeight
	return (leftWeight/total)*gini(leftLabels) + (rightWeight/total)*gini(rightLabels)
}

func gini(labels []int) float64 {
	if len(labels) == 0 {
		return 0
	}
	counts := make(map[int]int)
	for _, label := range labels {
		counts[label]++
	}
	impurity := 1.0
	for _, count := range counts {
		prob := float64(count) / float64(len(labels))
		impurity -= prob * prob
	}
	return impurity
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sortFloats(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func sortFloats(values []float64) {
	for i := 1; i < len(values); i++ {
		j := i
		for j > 0 && values[j-1] > values[j] {
			values[j-1], values[j] = values[j], values[j-1]
			j--
		}
	}
}

func majorityLabel(labels []int) (int, float64) {
	counts := make(map[int]int)
	bestLabel := 0
	bestCount := -1
	for _, label := range labels {
		counts[label]++
		if counts[label] > bestCount || (counts[label] == bestCount && label < bestLabel) {
			bestCount = counts[label]
			bestLabel = label
		}
	}
	if len(labels) == 0 {
		return 0, 0
	}
	return bestLabel, float64(bestCount) / float64(len(labels))
}

func isPure(labels []int) bool {
	if len(labels) == 0 {
		return true
	}
	first := labels[0]
	for _, label := range labels[1:] {
		if label != first {
			return false
		}
	}
	return true
}

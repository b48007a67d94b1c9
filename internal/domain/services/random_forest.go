package services

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"fraudguard-lab/pkg/logger"
)

// RandomForest is a binary fraud classifier: an ensemble of decision
// trees over fixed-length numeric vectors, scoring P(fraud) in [0,1].
type RandomForest struct {
	trees          []*decisionTree
	numTrees       int
	maxDepth       int
	minSamplesLeaf int
	maxFeatures    int
	numFeatures    int
	trained        bool
	trainedAt      time.Time
	trainingSize   int
	accuracy       float64
	rng            *rand.Rand
	mu             sync.RWMutex
	log            *logger.Logger
}

// decisionTree represents a single tree in the forest
type decisionTree struct {
	root *dtNode
}

// dtNode represents a node in a decision tree
type dtNode struct {
	feature   int     // Feature index for split
	threshold float64 // Split threshold
	left      *dtNode // Left child (feature < threshold)
	right     *dtNode // Right child (feature >= threshold)
	isLeaf    bool
	fraudProb float64 // P(fraud) at this leaf
}

// RandomForestConfig holds configuration
type RandomForestConfig struct {
	NumTrees       int   // Number of trees (default: 10)
	MaxDepth       int   // Maximum tree depth (default: 10)
	MinSamplesLeaf int   // Minimum samples in leaf (default: 2)
	MaxFeatures    int   // Max features per split (default: sqrt(n_features))
	Seed           int64 // RNG seed; runs with equal seed and data train identical forests
}

// DefaultRandomForestConfig returns default configuration
func DefaultRandomForestConfig() RandomForestConfig {
	return RandomForestConfig{
		NumTrees:       10,
		MaxDepth:       10,
		MinSamplesLeaf: 2,
		MaxFeatures:    0, // sqrt(n_features)
		Seed:           42,
	}
}

// NewRandomForest creates a new random forest classifier
func NewRandomForest(config RandomForestConfig, log *logger.Logger) *RandomForest {
	if config.NumTrees <= 0 {
		config.NumTrees = 10
	}
	if config.MaxDepth <= 0 {
		config.MaxDepth = 10
	}
	if config.MinSamplesLeaf <= 0 {
		config.MinSamplesLeaf = 2
	}

	return &RandomForest{
		numTrees:       config.NumTrees,
		maxDepth:       config.MaxDepth,
		minSamplesLeaf: config.MinSamplesLeaf,
		maxFeatures:    config.MaxFeatures,
		rng:            rand.New(rand.NewSource(config.Seed)),
		log:            log.WithComponent("random-forest"),
	}
}

// Fit trains the forest on labeled vectors. Labels are 1 for fraud and 0
// for legitimate. All vectors must share one length.
func (rf *RandomForest) Fit(data [][]float64, labels []int) error {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	startTime := time.Now()
	n := len(data)

	if n == 0 {
		return fmt.Errorf("no training vectors")
	}
	if len(labels) != n {
		return fmt.Errorf("label count %d does not match vector count %d", len(labels), n)
	}

	numFeatures := len(data[0])
	if numFeatures == 0 {
		return fmt.Errorf("zero-length feature vectors")
	}
	for i, point := range data {
		if len(point) != numFeatures {
			return fmt.Errorf("vector %d has length %d, want %d", i, len(point), numFeatures)
		}
	}
	rf.numFeatures = numFeatures

	maxFeatures := rf.maxFeatures
	if maxFeatures <= 0 {
		maxFeatures = int(math.Sqrt(float64(numFeatures)))
		if maxFeatures < 1 {
			maxFeatures = 1
		}
	}

	// Build trees on bootstrap samples
	trees := make([]*decisionTree, rf.numTrees)
	for i := 0; i < rf.numTrees; i++ {
		sampleData, sampleLabels := rf.bootstrapSample(data, labels)
		trees[i] = &decisionTree{
			root: rf.buildNode(sampleData, sampleLabels, 0, maxFeatures),
		}
	}
	rf.trees = trees

	// Resubstitution accuracy at the 0.5 decision threshold
	correct := 0
	for i, point := range data {
		pred := 0
		if rf.scoreLocked(point) >= 0.5 {
			pred = 1
		}
		if pred == labels[i] {
			correct++
		}
	}
	rf.accuracy = float64(correct) / float64(n)

	rf.trained = true
	rf.trainedAt = time.Now()
	rf.trainingSize = n

	rf.log.Info().
		Int("trees", rf.numTrees).
		Int("training_size", n).
		Float64("accuracy", rf.accuracy).
		Dur("duration", time.Since(startTime)).
		Msg("random forest trained")

	return nil
}

// PredictProba returns P(fraud) for one vector, averaged over all trees.
// An untrained forest scores a neutral 0.5.
func (rf *RandomForest) PredictProba(point []float64) float64 {
	rf.mu.RLock()
	defer rf.mu.RUnlock()

	if !rf.trained || len(rf.trees) == 0 {
		return 0.5
	}
	return rf.scoreLocked(point)
}

func (rf *RandomForest) scoreLocked(point []float64) float64 {
	total := 0.0
	for _, tree := range rf.trees {
		total += treePredict(tree.root, point)
	}
	return total / float64(len(rf.trees))
}

// treePredict walks a single tree to its leaf fraud probability
func treePredict(node *dtNode, point []float64) float64 {
	if node == nil {
		return 0.5
	}

	for !node.isLeaf {
		if node.feature < len(point) && point[node.feature] < node.threshold {
			node = node.left
		} else {
			node = node.right
		}
		if node == nil {
			return 0.5
		}
	}

	return node.fraudProb
}

// buildNode recursively builds tree nodes
func (rf *RandomForest) buildNode(data [][]float64, labels []int, depth, maxFeatures int) *dtNode {
	n := len(data)

	fraudCount := 0
	for _, label := range labels {
		if label == 1 {
			fraudCount++
		}
	}

	// Stopping conditions
	if depth >= rf.maxDepth || n <= rf.minSamplesLeaf || fraudCount == 0 || fraudCount == n {
		return createLeaf(fraudCount, n)
	}

	bestFeature, bestThreshold, bestGain := rf.findBestSplit(data, labels, fraudCount, maxFeatures)
	if bestGain <= 0 {
		return createLeaf(fraudCount, n)
	}

	leftData, leftLabels, rightData, rightLabels := splitData(data, labels, bestFeature, bestThreshold)
	if len(leftData) == 0 || len(rightData) == 0 {
		return createLeaf(fraudCount, n)
	}

	return &dtNode{
		feature:   bestFeature,
		threshold: bestThreshold,
		left:      rf.buildNode(leftData, leftLabels, depth+1, maxFeatures),
		right:     rf.buildNode(rightData, rightLabels, depth+1, maxFeatures),
	}
}

// createLeaf creates a leaf node carrying the fraud fraction
func createLeaf(fraudCount, total int) *dtNode {
	prob := 0.5
	if total > 0 {
		prob = float64(fraudCount) / float64(total)
	}
	return &dtNode{
		isLeaf:    true,
		fraudProb: prob,
	}
}

// findBestSplit finds the best split using Gini impurity
func (rf *RandomForest) findBestSplit(data [][]float64, labels []int, fraudCount, maxFeatures int) (int, float64, float64) {
	n := len(data)
	if n == 0 || len(data[0]) == 0 {
		return 0, 0, 0
	}

	dims := len(data[0])
	currentGini := giniImpurity(fraudCount, n)

	bestFeature := -1
	bestThreshold := 0.0
	bestGain := 0.0

	for _, feature := range rf.selectRandomFeatures(dims, maxFeatures) {
		values := make([]float64, n)
		for i, point := range data {
			values[i] = point[feature]
		}
		sort.Float64s(values)

		// Try thresholds between distinct adjacent values
		for i := 0; i < n-1; i++ {
			if values[i] == values[i+1] {
				continue
			}
			threshold := (values[i] + values[i+1]) / 2

			leftFraud, leftTotal := 0, 0
			rightFraud, rightTotal := 0, 0
			for j, point := range data {
				if point[feature] < threshold {
					leftTotal++
					leftFraud += labels[j]
				} else {
					rightTotal++
					rightFraud += labels[j]
				}
			}

			if leftTotal == 0 || rightTotal == 0 {
				continue
			}

			leftGini := giniImpurity(leftFraud, leftTotal)
			rightGini := giniImpurity(rightFraud, rightTotal)
			weightedGini := (float64(leftTotal)*leftGini + float64(rightTotal)*rightGini) / float64(n)

			gain := currentGini - weightedGini
			if gain > bestGain {
				bestGain = gain
				bestFeature = feature
				bestThreshold = threshold
			}
		}
	}

	return bestFeature, bestThreshold, bestGain
}

// giniImpurity for a binary split: 1 - p^2 - (1-p)^2
func giniImpurity(fraudCount, total int) float64 {
	if total == 0 {
		return 0
	}
	p := float64(fraudCount) / float64(total)
	return 1 - p*p - (1-p)*(1-p)
}

// splitData splits data based on feature and threshold
func splitData(data [][]float64, labels []int, feature int, threshold float64) ([][]float64, []int, [][]float64, []int) {
	var leftData, rightData [][]float64
	var leftLabels, rightLabels []int

	for i, point := range data {
		if point[feature] < threshold {
			leftData = append(leftData, point)
			leftLabels = append(leftLabels, labels[i])
		} else {
			rightData = append(rightData, point)
			rightLabels = append(rightLabels, labels[i])
		}
	}

	return leftData, leftLabels, rightData, rightLabels
}

// selectRandomFeatures randomly selects feature indices to consider
func (rf *RandomForest) selectRandomFeatures(numFeatures, maxFeatures int) []int {
	if maxFeatures >= numFeatures {
		features := make([]int, numFeatures)
		for i := range features {
			features[i] = i
		}
		return features
	}

	indices := make([]int, numFeatures)
	for i := range indices {
		indices[i] = i
	}

	// Fisher-Yates for the first maxFeatures elements
	for i := 0; i < maxFeatures; i++ {
		j := i + rf.rng.Intn(numFeatures-i)
		indices[i], indices[j] = indices[j], indices[i]
	}

	return indices[:maxFeatures]
}

// bootstrapSample samples n points with replacement
func (rf *RandomForest) bootstrapSample(data [][]float64, labels []int) ([][]float64, []int) {
	n := len(data)
	sampleData := make([][]float64, n)
	sampleLabels := make([]int, n)

	for i := 0; i < n; i++ {
		idx := rf.rng.Intn(n)
		sampleData[i] = data[idx]
		sampleLabels[i] = labels[idx]
	}

	return sampleData, sampleLabels
}

// IsTrained returns whether the model has been trained
func (rf *RandomForest) IsTrained() bool {
	rf.mu.RLock()
	defer rf.mu.RUnlock()
	return rf.trained
}

// Accuracy returns the resubstitution accuracy of the last fit
func (rf *RandomForest) Accuracy() float64 {
	rf.mu.RLock()
	defer rf.mu.RUnlock()
	return rf.accuracy
}

// ForestState is the serializable snapshot of a trained forest
type ForestState struct {
	NumTrees       int          `json:"num_trees"`
	MaxDepth       int          `json:"max_depth"`
	MinSamplesLeaf int          `json:"min_samples_leaf"`
	NumFeatures    int          `json:"num_features"`
	Accuracy       float64      `json:"accuracy"`
	TrainedAt      time.Time    `json:"trained_at"`
	TrainingSize   int          `json:"training_size"`
	Trees          []*NodeState `json:"trees"`
}

// NodeState mirrors dtNode for encoding
type NodeState struct {
	Feature   int        `json:"f"`
	Threshold float64    `json:"t"`
	Left      *NodeState `json:"l,omitempty"`
	Right     *NodeState `json:"r,omitempty"`
	Leaf      bool       `json:"leaf,omitempty"`
	FraudProb float64    `json:"p,omitempty"`
}

// Snapshot captures the trained forest for persistence. Returns nil for
// an untrained forest.
func (rf *RandomForest) Snapshot() *ForestState {
	rf.mu.RLock()
	defer rf.mu.RUnlock()

	if !rf.trained {
		return nil
	}

	state := &ForestState{
		NumTrees:       rf.numTrees,
		MaxDepth:       rf.maxDepth,
		MinSamplesLeaf: rf.minSamplesLeaf,
		NumFeatures:    rf.numFeatures,
		Accuracy:       rf.accuracy,
		TrainedAt:      rf.trainedAt,
		TrainingSize:   rf.trainingSize,
		Trees:          make([]*NodeState, len(rf.trees)),
	}
	for i, tree := range rf.trees {
		state.Trees[i] = exportNode(tree.root)
	}
	return state
}

// Restore replaces the forest contents with a persisted snapshot
func (rf *RandomForest) Restore(state *ForestState) error {
	if state == nil {
		return fmt.Errorf("nil forest state")
	}
	if len(state.Trees) == 0 {
		return fmt.Errorf("forest state has no trees")
	}

	trees := make([]*decisionTree, len(state.Trees))
	for i, root := range state.Trees {
		trees[i] = &decisionTree{root: importNode(root)}
	}

	rf.mu.Lock()
	defer rf.mu.Unlock()

	rf.trees = trees
	rf.numTrees = state.NumTrees
	rf.maxDepth = state.MaxDepth
	rf.minSamplesLeaf = state.MinSamplesLeaf
	rf.numFeatures = state.NumFeatures
	rf.accuracy = state.Accuracy
	rf.trainedAt = state.TrainedAt
	rf.trainingSize = state.TrainingSize
	rf.trained = true

	return nil
}

func exportNode(node *dtNode) *NodeState {
	if node == nil {
		return nil
	}
	return &NodeState{
		Feature:   node.feature,
		Threshold: node.threshold,
		Left:      exportNode(node.left),
		Right:     exportNode(node.right),
		Leaf:      node.isLeaf,
		FraudProb: node.fraudProb,
	}
}

func importNode(state *NodeState) *dtNode {
	if state == nil {
		return nil
	}
	return &dtNode{
		feature:   state.Feature,
		threshold: state.Threshold,
		left:      importNode(state.Left),
		right:     importNode(state.Right),
		isLeaf:    state.Leaf,
		fraudProb: state.FraudProb,
	}
}

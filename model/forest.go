// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package model

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

type (
	// Forest evaluates a decision-forest artifact by majority vote. The trees
	// are opaque data produced by the training tooling; Forest only walks
	// them.
	Forest struct {
		name  string
		trees [][]node
	}

	forestFile struct {
		Name     string   `yaml:"name"`
		Features []string `yaml:"features"`
		Classes  []string `yaml:"classes"`
		Trees    [][]node `yaml:"trees"`
	}

	// A node is a leaf when Class is set; otherwise inputs at or below the
	// threshold go left.
	node struct {
		Feature   int     `yaml:"feature"`
		Threshold float64 `yaml:"threshold"`
		Left      int     `yaml:"left"`
		Right     int     `yaml:"right"`
		Class     *int    `yaml:"class"`
	}
)

//go:embed default_forest.yaml
var defaultForest []byte

// DefaultForest returns the forest bundled with the binary.
func DefaultForest() *Forest {
	f, err := ParseForest(bytes.NewReader(defaultForest))
	if err != nil {
		panic(fmt.Sprintf("bundled forest is invalid: %v", err))
	}
	return f
}

// LoadForest reads a forest artifact from a YAML file.
func LoadForest(path string) (*Forest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model: %w", err)
	}
	defer file.Close()

	f, err := ParseForest(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// ParseForest decodes and validates a forest artifact. Validation guarantees
// that every traversal ends at a leaf: child indices must point strictly
// forward within the tree.
func ParseForest(r io.Reader) (*Forest, error) {
	var ff forestFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ff); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}

	if len(ff.Features) > 0 && !slices.Equal(ff.Features, featureNames[:]) {
		return nil, fmt.Errorf(
			"model feature order %v does not match %v",
			ff.Features, featureNames,
		)
	}
	if len(ff.Classes) > 0 && !slices.Equal(ff.Classes, classNames[:]) {
		return nil, fmt.Errorf(
			"model classes %v do not match %v",
			ff.Classes, classNames,
		)
	}
	if len(ff.Trees) == 0 {
		return nil, fmt.Errorf("model has no trees")
	}

	for t, tree := range ff.Trees {
		if err := validateTree(tree); err != nil {
			return nil, fmt.Errorf("tree %d: %w", t, err)
		}
	}
	return &Forest{name: ff.Name, trees: ff.Trees}, nil
}

func validateTree(tree []node) error {
	if len(tree) == 0 {
		return fmt.Errorf("empty tree")
	}
	for i, n := range tree {
		if n.Class != nil {
			if !Class(*n.Class).Valid() {
				return fmt.Errorf("node %d: invalid class %d", i, *n.Class)
			}
			continue
		}
		if n.Feature < 0 || n.Feature >= NumFeatures {
			return fmt.Errorf("node %d: invalid feature %d", i, n.Feature)
		}
		if math.IsNaN(n.Threshold) {
			return fmt.Errorf("node %d: threshold is NaN", i)
		}
		for _, child := range []int{n.Left, n.Right} {
			if child <= i || child >= len(tree) {
				return fmt.Errorf("node %d: child %d out of order", i, child)
			}
		}
	}
	return nil
}

// Name returns the artifact name.
func (f *Forest) Name() string {
	return f.name
}

// Size returns the number of trees.
func (f *Forest) Size() int {
	return len(f.trees)
}

// Predict returns the class with the most votes, breaking ties toward the
// lowest class index.
func (f *Forest) Predict(x Features) Class {
	var votes [NumClasses]int
	for _, tree := range f.trees {
		votes[walk(tree, x)]++
	}

	best := Cloudy
	for c := range Class(NumClasses) {
		if votes[c] > votes[best] {
			best = c
		}
	}
	return best
}

func walk(tree []node, x Features) Class {
	i := 0
	for {
		n := tree[i]
		if n.Class != nil {
			return Class(*n.Class)
		}
		// NaN compares false and goes right.
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

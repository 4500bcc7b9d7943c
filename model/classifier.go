// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package model

// Classifier maps a scaled feature vector to a weather class. Implementations
// must be deterministic and total: every input, including values outside
// [0,1], NaN or infinities, yields a valid class.
type Classifier interface {
	Predict(features Features) Class
}

// ClassifierFunc adapts a plain function to the Classifier interface.
type ClassifierFunc func(Features) Class

// Predict calls f.
func (f ClassifierFunc) Predict(features Features) Class {
	return f(features)
}

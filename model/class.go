// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package model

import (
	"fmt"
	"time"
)

// Class is a weather category produced by the classifier. The numeric values
// are fixed by the trained model.
type Class int

const (
	Cloudy Class = iota
	Foggy
	Rainy
	Stormy
	Sunny

	// NumClasses is the number of weather categories.
	NumClasses = int(Sunny) + 1
)

var classNames = [NumClasses]string{
	"Cloudy",
	"Foggy",
	"Rainy",
	"Stormy",
	"Sunny",
}

func (c Class) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Class(%d)", int(c))
	}
	return classNames[c]
}

// Valid reports whether the class index is one the model can produce.
func (c Class) Valid() bool {
	return c >= 0 && int(c) < NumClasses
}

// ParseClass maps a class name back to its index.
func ParseClass(name string) (Class, error) {
	for i, n := range classNames {
		if n == name {
			return Class(i), nil
		}
	}
	return 0, fmt.Errorf("unknown weather class %q", name)
}

// Prediction is the result of one classification cycle.
type Prediction struct {
	Class     Class
	Inference time.Duration
}

// Micros returns the inference time in whole microseconds.
func (p Prediction) Micros() uint64 {
	if p.Inference < 0 {
		return 0
	}
	return uint64(p.Inference / time.Microsecond)
}

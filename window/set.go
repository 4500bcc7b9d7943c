// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package window

import (
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sensor"
)

// Set holds one Buffer per sensor channel, all advanced together.
type Set struct {
	buffers [sensor.NumChannels]Buffer
}

// Push writes every channel of the sample into its buffer.
func (s *Set) Push(sample sensor.Sample) {
	for c := range sensor.Channel(sensor.NumChannels) {
		s.buffers[c].Push(sample.Value(c))
	}
}

// Average returns the per-channel averages as a sample. The timestamp is left
// zero; callers stamp the result themselves.
func (s *Set) Average() sensor.Sample {
	var avg sensor.Sample
	for c := range sensor.Channel(sensor.NumChannels) {
		avg = avg.With(c, s.buffers[c].Average())
	}
	return avg
}

// Len returns the number of samples pushed since the last reset, up to Size.
func (s *Set) Len() int {
	return s.buffers[0].Len()
}

// Full reports whether a complete window has been collected.
func (s *Set) Full() bool {
	return s.Len() == Size
}

// Channel exposes the buffer of a single channel.
func (s *Set) Channel(c sensor.Channel) *Buffer {
	return &s.buffers[c]
}

// Reset rewinds every buffer.
func (s *Set) Reset() {
	for i := range s.buffers {
		s.buffers[i].Reset()
	}
}

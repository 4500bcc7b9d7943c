// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package sensor

import (
	"context"
	"math/rand"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/options"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/wallclock"
)

type (
	// Pattern is a simulated weather regime with plausible value ranges.
	Pattern struct {
		Name        string
		Weight      int
		Temperature Range
		Humidity    Range
		Pressure    Range
		Illuminance Range
		Gas         Range
	}

	// Range is a closed interval sampled uniformly.
	Range struct{ Min, Max float64 }

	// Simulator generates samples drawn from weighted weather patterns. It
	// stands in for real hardware on development machines.
	Simulator struct {
		patterns []Pattern
		total    int
		hold     int
		seed     *int64
		rng      *rand.Rand

		current *Pattern
		left    int
	}

	// SimulatorOption represents a single simulator option.
	SimulatorOption interface{ simulator(*Simulator) }

	// WithSeed fixes the random seed for reproducible runs.
	WithSeed int64

	// WithHold keeps a drawn pattern for the given number of samples, so an
	// averaging window sees a consistent regime. The default of 1 draws a new
	// pattern for every sample.
	WithHold int

	// WithPatterns replaces the default pattern table.
	WithPatterns []Pattern
)

// DefaultPatterns is weighted 4:2:2:1:1 for cloudy, sunny, rainy, stormy and
// foggy weather.
var DefaultPatterns = []Pattern{
	{
		Name: "Cloudy", Weight: 4,
		Temperature: Range{20, 26},
		Humidity:    Range{40, 70},
		Pressure:    Range{98000, 101000},
		Illuminance: Range{100, 400},
		Gas:         Range{200, 800},
	},
	{
		Name: "Sunny", Weight: 2,
		Temperature: Range{28, 35},
		Humidity:    Range{20, 45},
		Pressure:    Range{100500, 103000},
		Illuminance: Range{500, 1000},
		Gas:         Range{100, 400},
	},
	{
		Name: "Rainy", Weight: 2,
		Temperature: Range{15, 22},
		Humidity:    Range{70, 90},
		Pressure:    Range{96000, 98500},
		Illuminance: Range{10, 150},
		Gas:         Range{300, 900},
	},
	{
		Name: "Stormy", Weight: 1,
		Temperature: Range{16, 23},
		Humidity:    Range{75, 95},
		Pressure:    Range{95000, 97000},
		Illuminance: Range{0, 80},
		Gas:         Range{400, 1200},
	},
	{
		Name: "Foggy", Weight: 1,
		Temperature: Range{18, 24},
		Humidity:    Range{80, 95},
		Pressure:    Range{97500, 100000},
		Illuminance: Range{5, 100},
		Gas:         Range{500, 1500},
	},
}

// NewSimulator creates a simulated sensor source.
func NewSimulator(opt ...SimulatorOption) *Simulator {
	s := &Simulator{
		patterns: DefaultPatterns,
		hold:     1,
	}
	for o := range options.Apply[SimulatorOption](opt) {
		o.simulator(s)
	}
	seed := wallclock.Instance.Now().UnixNano()
	if s.seed != nil {
		seed = *s.seed
	}
	// #nosec G404
	s.rng = rand.New(rand.NewSource(seed))
	for _, p := range s.patterns {
		s.total += max(p.Weight, 0)
	}
	return s
}

// Read draws the next simulated sample.
func (s *Simulator) Read(ctx context.Context) (Sample, error) {
	if err := ctx.Err(); err != nil {
		return Sample{}, err
	}

	p := s.pattern()
	return Sample{
		Temperature: s.uniform(p.Temperature),
		Humidity:    s.uniform(p.Humidity),
		Pressure:    s.uniform(p.Pressure),
		Illuminance: s.uniform(p.Illuminance),
		GasPPM:      s.uniform(p.Gas),
		Timestamp:   wallclock.Instance.Now(),
	}, nil
}

// Pattern reports the name of the regime used for the most recent sample.
func (s *Simulator) Pattern() string {
	if s.current == nil {
		return ""
	}
	return s.current.Name
}

func (s *Simulator) pattern() *Pattern {
	if s.current != nil && s.left > 0 {
		s.left--
		return s.current
	}

	s.left = s.hold - 1
	s.current = &s.patterns[len(s.patterns)-1]
	if s.total <= 0 {
		return s.current
	}

	n := s.rng.Intn(s.total)
	for i := range s.patterns {
		n -= max(s.patterns[i].Weight, 0)
		if n < 0 {
			s.current = &s.patterns[i]
			break
		}
	}
	return s.current
}

func (s *Simulator) uniform(r Range) float64 {
	return r.Min + s.rng.Float64()*(r.Max-r.Min)
}

func (o WithSeed) simulator(s *Simulator) {
	seed := int64(o)
	s.seed = &seed
}

func (o WithHold) simulator(s *Simulator) {
	s.hold = max(int(o), 1)
}

func (o WithPatterns) simulator(s *Simulator) {
	if len(o) > 0 {
		s.patterns = o
	}
}

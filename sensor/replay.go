// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package sensor

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/relvacode/iso8601"
)

// Replay plays back recorded samples from a CSV log, looping at the end.
// Rows are "timestamp,temperature,humidity,pressure,lux,gas" with an
// ISO-8601 timestamp; a header row is skipped.
type Replay struct {
	samples []Sample
	next    int
}

// ErrEmptyReplay is returned when a log holds no samples.
var ErrEmptyReplay = errors.New("replay log contains no samples")

// OpenReplay loads a replay log from a file.
func OpenReplay(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay log: %w", err)
	}
	defer f.Close()
	return NewReplay(f)
}

// NewReplay parses a replay log.
func NewReplay(r io.Reader) (*Replay, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 6
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var samples []Sample
	for n := 1; ; n++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("replay log: %w", err)
		}
		if n == 1 && strings.EqualFold(rec[0], "timestamp") {
			continue
		}

		s, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("replay log record %d: %w", n, err)
		}
		samples = append(samples, s)
	}

	if len(samples) == 0 {
		return nil, ErrEmptyReplay
	}
	return &Replay{samples: samples}, nil
}

// Read returns the next recorded sample.
func (r *Replay) Read(ctx context.Context) (Sample, error) {
	if err := ctx.Err(); err != nil {
		return Sample{}, err
	}
	s := r.samples[r.next]
	r.next = (r.next + 1) % len(r.samples)
	return s, nil
}

// Len returns the number of recorded samples.
func (r *Replay) Len() int {
	return len(r.samples)
}

func parseRecord(rec []string) (Sample, error) {
	ts, err := iso8601.ParseString(rec[0])
	if err != nil {
		return Sample{}, fmt.Errorf("timestamp %q: %w", rec[0], err)
	}

	s := Sample{Timestamp: ts}
	for i, c := range []Channel{Temperature, Humidity, Pressure, Illuminance, Gas} {
		v, err := strconv.ParseFloat(rec[i+1], 64)
		if err != nil {
			return Sample{}, fmt.Errorf("%s %q: %w", c, rec[i+1], err)
		}
		s = s.With(c, v)
	}
	return s, nil
}

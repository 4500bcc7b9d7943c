// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package firebase_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/wallclock"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/model"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/retry"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sensor"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sink"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sink/docdb"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sink/firebase"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/telemetry"
	"github.com/stretchr/testify/require"
)

type request struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]any
}

type database struct {
	mu       sync.Mutex
	status   int
	requests []request
}

func (d *database) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var doc map[string]any
	_ = json.Unmarshal(body, &doc)

	d.mu.Lock()
	d.requests = append(d.requests, request{
		Method: r.Method,
		Path:   r.URL.Path,
		Auth:   r.URL.Query().Get("auth"),
		Body:   doc,
	})
	status := d.status
	d.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if status != http.StatusOK {
		_, _ = w.Write([]byte(`{"error": "Permission denied"}`))
		return
	}
	_, _ = w.Write(body)
}

func (d *database) calls() []request {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]request(nil), d.requests...)
}

func setup(t *testing.T, status int, token string) (*database, *firebase.Store) {
	t.Cleanup(wallclock.Use(wallclock.NewFake(time.Unix(1_700_000_000, 0))))

	db := &database{status: status}
	srv := httptest.NewServer(db)
	t.Cleanup(srv.Close)

	store, err := firebase.New(srv.URL, firebase.StaticToken(token))
	require.NoError(t, err)
	return db, store
}

func reading() *sink.Reading {
	return &sink.Reading{
		Device: "246F28AB0C01",
		Sample: sensor.Sample{
			Temperature: 25.5, Humidity: 45, Pressure: 101325,
			Illuminance: 550, GasPPM: 450,
		},
		Prediction: model.Prediction{Class: model.Sunny, Inference: 120 * time.Microsecond},
		Timestamp:  time.Unix(1_700_000_123, 0),
	}
}

func TestWriteReading(t *testing.T) {
	db, store := setup(t, http.StatusOK, "secret")
	s := docdb.New(store)

	require.Equal(t, firebase.Name, s.Name())
	require.NoError(t, s.Probe(context.Background()))

	status, err := s.Write(context.Background(), reading())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)

	calls := db.calls()
	require.Len(t, calls, 1)
	require.Equal(t, http.MethodPut, calls[0].Method)
	require.Equal(t, "/devices/246F28AB0C01/readings/1700000123.json", calls[0].Path)
	require.Equal(t, "secret", calls[0].Auth)
	require.Equal(t, map[string]any{
		"temperature":    25.5,
		"humidity":       45.0,
		"pressure":       101325.0,
		"lux":            550.0,
		"gas_ppm":        450.0,
		"gas_quality":    "Fair",
		"light_level":    "Bright",
		"prediction":     "Sunny",
		"class_index":    4.0,
		"inference_time": 120.0,
		"timestamp":      1700000123.0,
		"device_id":      "246F28AB0C01",
	}, calls[0].Body)
}

func TestRejectedWrite(t *testing.T) {
	_, store := setup(t, http.StatusUnauthorized, "expired")

	status, err := store.Put(context.Background(), "/devices/x/status", docdb.Status{})
	var rej *sink.RejectionError
	require.ErrorAs(t, err, &rej)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Permission denied", rej.Body)
}

func TestNotReadyIsSkipped(t *testing.T) {
	db, store := setup(t, http.StatusOK, "")
	require.False(t, store.Ready())

	tm := telemetry.New()
	u := sink.NewUploader(docdb.New(store), sink.WithRecorder(tm))

	require.False(t, u.UploadWithRetry(context.Background(), reading()))
	require.Empty(t, db.calls())
	require.Contains(t, u.LastError(), "not ready")
	require.EqualValues(t, 1, tm.Sink(firebase.Name).Skipped)
}

func TestAnonymousWrite(t *testing.T) {
	db := &database{}
	srv := httptest.NewServer(db)
	t.Cleanup(srv.Close)

	store, err := firebase.New(srv.URL, firebase.Anonymous{})
	require.NoError(t, err)
	require.True(t, store.Ready())

	u := sink.NewUploader(docdb.New(store))
	require.True(t, u.UploadWithRetry(context.Background(), reading()))

	calls := db.calls()
	require.Len(t, calls, 1)
	require.Empty(t, calls[0].Auth)
}

func TestBreakerStopsNetworkCalls(t *testing.T) {
	db, store := setup(t, http.StatusInternalServerError, "secret")

	u := sink.NewUploader(docdb.New(store),
		sink.WithMaxAttempts(1),
		sink.WithFailureThreshold(10),
	)

	ctx := context.Background()
	for range 10 {
		require.False(t, u.UploadWithRetry(ctx, reading()))
	}
	require.Len(t, db.calls(), 10)
	require.True(t, u.Disabled())

	require.False(t, u.UploadWithRetry(ctx, reading()))
	require.Len(t, db.calls(), 10)
}

func TestRegistry(t *testing.T) {
	db, store := setup(t, http.StatusOK, "secret")

	reg := docdb.NewRegistry(store, "246F28AB0C01")
	require.NoError(t, reg.PublishInfo(context.Background(), docdb.Info{
		FirmwareVersion: "v3.0",
		ModelType:       "RandomForest-250trees",
	}))
	require.NoError(t, reg.UpdateStatus(context.Background(), true))

	calls := db.calls()
	require.Len(t, calls, 2)
	require.Equal(t, "/devices/246F28AB0C01/info.json", calls[0].Path)
	require.Equal(t, "24:6F:28:AB:0C:01", calls[0].Body["mac_address"])
	require.Equal(t, 1700000000.0, calls[0].Body["last_boot"])
	require.Equal(t, "/devices/246F28AB0C01/status.json", calls[1].Path)
	require.Equal(t, true, calls[1].Body["online"])
}

func TestRegistryGivesUp(t *testing.T) {
	db, store := setup(t, http.StatusServiceUnavailable, "secret")

	reg := docdb.NewRegistry(store, "246F28AB0C01",
		docdb.WithPolicy{Policy: &retry.LinearBackoff{MaxAttempts: 2}},
	)
	require.Error(t, reg.UpdateStatus(context.Background(), false))
	require.Len(t, db.calls(), 2)
}

type countingTransport struct {
	mu    sync.Mutex
	trips int
}

func (c *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	c.mu.Lock()
	c.trips++
	c.mu.Unlock()
	return http.DefaultTransport.RoundTrip(r)
}

func TestResolvedOptions(t *testing.T) {
	db := &database{}
	srv := httptest.NewServer(db)
	t.Cleanup(srv.Close)

	rt := &countingTransport{}
	store, err := firebase.New(srv.URL, firebase.StaticToken("secret"),
		nil,
		&firebase.StoreOptions{HTTPClient: &http.Client{Transport: rt}},
	)
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "/devices/x/status", docdb.Status{})
	require.NoError(t, err)
	require.Equal(t, 1, rt.trips)
	require.Len(t, db.calls(), 1)
}

func TestNewValidates(t *testing.T) {
	_, err := firebase.New("project.firebaseio.com", nil)
	require.Error(t, err)

	s, err := firebase.New("https://project.firebaseio.com", nil)
	require.NoError(t, err)
	require.False(t, s.Ready())
	require.Equal(t, "https://project.firebaseio.com", s.Endpoint())
}

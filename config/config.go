// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sink/mqtt"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sink/thingspeak"
	"github.com/BurntSushi/toml"
)

type (
	// Config is the complete station configuration.
	Config struct {
		Device      Device      `toml:"device"`
		Log         Log         `toml:"log"`
		Acquisition Acquisition `toml:"acquisition"`
		Source      Source      `toml:"source"`
		Model       Model       `toml:"model"`
		Upload      Upload      `toml:"upload"`
		ThingSpeak  ThingSpeak  `toml:"thingspeak"`
		Firebase    Firebase    `toml:"firebase"`
		Dynamo      Dynamo      `toml:"dynamodb"`
		MQTT        MQTT        `toml:"mqtt"`
		Archive     Archive     `toml:"archive"`
	}

	// Device identifies the station. ID overrides the identity derived from
	// the network interface.
	Device struct {
		ID              string `toml:"id"`
		Interface       string `toml:"interface"`
		FirmwareVersion string `toml:"firmware_version"`
	}

	// Log configures the console logger.
	Log struct {
		Level string `toml:"level"`
	}

	// Acquisition sets the cadence of the control loop.
	Acquisition struct {
		SamplePeriod  Duration `toml:"sample_period"`
		PredictPeriod Duration `toml:"predict_period"`
		PollInterval  Duration `toml:"poll_interval"`
	}

	// Source selects where samples come from: "simulator", "replay" or
	// "bme280".
	Source struct {
		Kind       string `toml:"kind"`
		ReplayPath string `toml:"replay_path"`
		Seed       int64  `toml:"seed"`
		I2CBus     string `toml:"i2c_bus"`
		I2CAddress int    `toml:"i2c_address"`
	}

	// Model points at a forest artifact. The bundled model is used when Path
	// is empty.
	Model struct {
		Path string `toml:"path"`
	}

	// Upload is the retry policy shared by every sink.
	Upload struct {
		MaxAttempts int      `toml:"max_attempts"`
		BaseDelay   Duration `toml:"base_delay"`
	}

	// Sink holds the settings every sink has.
	Sink struct {
		Enabled          bool     `toml:"enabled"`
		FailureThreshold int      `toml:"failure_threshold"`
		Timeout          Duration `toml:"timeout"`
	}

	ThingSpeak struct {
		Sink
		URL    string `toml:"url"`
		APIKey string `toml:"api_key"`
	}

	// Firebase writes without credentials only when Public is set, for
	// databases whose rules allow anonymous writes.
	Firebase struct {
		Sink
		URL    string `toml:"url"`
		Secret string `toml:"secret"`
		Public bool   `toml:"public"`
	}

	Dynamo struct {
		Sink
		Region string `toml:"region"`
		Table  string `toml:"table"`
	}

	MQTT struct {
		Sink
		Address  string `toml:"address"`
		Prefix   string `toml:"prefix"`
		ClientID string `toml:"client_id"`
		Username string `toml:"username"`
		Password string `toml:"password"`
	}

	Archive struct {
		Sink
		DSN string `toml:"dsn"`
	}
)

// Source kinds.
const (
	SourceSimulator = "simulator"
	SourceReplay    = "replay"
	SourceBME280    = "bme280"
)

// BME280 bus addresses.
const (
	BME280Primary   = 0x76
	BME280Secondary = 0x77
)

// EnvPrefix marks the environment variables read by ApplyEnv.
const EnvPrefix = "WEATHER_"

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	docSink := Sink{FailureThreshold: 10, Timeout: Duration(10 * time.Second)}
	return &Config{
		Device: Device{FirmwareVersion: "2.0.0"},
		Log:    Log{Level: "info"},
		Acquisition: Acquisition{
			SamplePeriod:  Duration(time.Second),
			PredictPeriod: Duration(15 * time.Second),
			PollInterval:  Duration(50 * time.Millisecond),
		},
		Source: Source{Kind: SourceSimulator, I2CAddress: BME280Primary},
		Upload: Upload{
			MaxAttempts: 3,
			BaseDelay:   Duration(2 * time.Second),
		},
		ThingSpeak: ThingSpeak{
			Sink: Sink{Timeout: Duration(10 * time.Second)},
			URL:  thingspeak.DefaultBaseURL,
		},
		Firebase: Firebase{Sink: docSink},
		Dynamo:   Dynamo{Sink: docSink},
		MQTT:     MQTT{Sink: docSink, Prefix: mqtt.DefaultPrefix},
		Archive:  Archive{Sink: docSink},
	}
}

// Load builds the configuration from defaults, then the TOML file at path
// (skipped when path is empty), then WEATHER_* environment variables, and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file: %w", err)
			}
			return nil, &InvalidArgumentError{
				Setting: path,
				message: "cannot decode config file",
				wrapped: err,
			}
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, invalid(undecoded[0].String(), nil, "unknown setting")
		}
	}
	if err := cfg.ApplyEnv(os.Environ()); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Validate checks settings that cannot be expressed by their types.
func (c *Config) Validate() error {
	a := c.Acquisition
	switch {
	case a.SamplePeriod <= 0:
		return invalid("acquisition.sample_period", a.SamplePeriod.Std(),
			"must be positive")
	case a.PredictPeriod <= 0:
		return invalid("acquisition.predict_period", a.PredictPeriod.Std(),
			"must be positive")
	case a.PollInterval <= 0:
		return invalid("acquisition.poll_interval", a.PollInterval.Std(),
			"must be positive")
	case a.PredictPeriod < a.SamplePeriod:
		return invalid("acquisition.predict_period", a.PredictPeriod.Std(),
			"must not be shorter than the sample period")
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return &InvalidArgumentError{
			Setting: "log.level",
			Value:   c.Log.Level,
			message: "unknown level",
			wrapped: err,
		}
	}

	switch c.Source.Kind {
	case SourceSimulator:
	case SourceReplay:
		if c.Source.ReplayPath == "" {
			return invalid("source.replay_path", "", "required for replay")
		}
	case SourceBME280:
		if a := c.Source.I2CAddress; a != BME280Primary && a != BME280Secondary {
			return invalid("source.i2c_address", a, "must be 0x76 or 0x77")
		}
	default:
		return invalid("source.kind", c.Source.Kind,
			"must be simulator, replay or bme280")
	}

	if c.Upload.MaxAttempts < 1 {
		return invalid("upload.max_attempts", c.Upload.MaxAttempts,
			"must be at least 1")
	}
	if c.Upload.BaseDelay < 0 {
		return invalid("upload.base_delay", c.Upload.BaseDelay.Std(),
			"must not be negative")
	}

	return c.validateSinks()
}

func (c *Config) validateSinks() error {
	sinks := []struct {
		name     string
		sink     Sink
		required map[string]string
	}{
		{"thingspeak", c.ThingSpeak.Sink, map[string]string{
			"url":     c.ThingSpeak.URL,
			"api_key": c.ThingSpeak.APIKey,
		}},
		{"firebase", c.Firebase.Sink, map[string]string{
			"url":    c.Firebase.URL,
			"secret": c.Firebase.Secret,
		}},
		{"dynamodb", c.Dynamo.Sink, map[string]string{
			"region": c.Dynamo.Region,
			"table":  c.Dynamo.Table,
		}},
		{"mqtt", c.MQTT.Sink, map[string]string{
			"address": c.MQTT.Address,
		}},
		{"archive", c.Archive.Sink, map[string]string{
			"dsn": c.Archive.DSN,
		}},
	}

	for _, s := range sinks {
		if !s.sink.Enabled {
			continue
		}
		for _, key := range sortedKeys(s.required) {
			if s.name == "firebase" && key == "secret" && c.Firebase.Public {
				continue
			}
			if s.required[key] == "" {
				return invalid(s.name+"."+key, "", "required when enabled")
			}
		}
		if s.sink.FailureThreshold < 0 {
			return invalid(s.name+".failure_threshold",
				s.sink.FailureThreshold, "must not be negative")
		}
		if s.sink.Timeout < 0 {
			return invalid(s.name+".timeout", s.sink.Timeout.Std(),
				"must not be negative")
		}
	}

	if c.ThingSpeak.Enabled {
		if err := validateURL("thingspeak.url", c.ThingSpeak.URL); err != nil {
			return err
		}
	}
	if c.Firebase.Enabled {
		if err := validateURL("firebase.url", c.Firebase.URL); err != nil {
			return err
		}
	}

	if c.ThingSpeak.Enabled &&
		c.Acquisition.PredictPeriod.Std() < thingspeak.MinInterval {
		return invalid("acquisition.predict_period",
			c.Acquisition.PredictPeriod.Std(),
			fmt.Sprintf("must be at least %v while thingspeak is enabled",
				thingspeak.MinInterval))
	}
	return nil
}

func validateURL(setting, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return &InvalidArgumentError{
			Setting: setting,
			Value:   raw,
			message: "malformed URL",
			wrapped: err,
		}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return invalid(setting, raw, "must be an http or https URL")
	}
	if u.Host == "" {
		return invalid(setting, raw, "must include a host")
	}
	return nil
}

// ApplyEnv overrides settings from WEATHER_* variables in KEY=value form.
// Underscores and case are ignored after the prefix, so
// WEATHER_THINGSPEAK_API_KEY sets thingspeak.api_key. Acquisition settings
// also accept their short form, e.g. WEATHER_PREDICT_PERIOD. Unrecognized
// variables are ignored.
func (c *Config) ApplyEnv(environ []string) error {
	for key, v := range parseToSettingsMap(environ) {
		set, ok := envSetters[key]
		if !ok {
			continue
		}
		if err := set(c, v.value); err != nil {
			return &InvalidArgumentError{
				Setting: v.name,
				Value:   v.value,
				message: "invalid environment setting",
				wrapped: err,
			}
		}
	}
	return nil
}

type envValue struct{ name, value string }

func parseToSettingsMap(environ []string) map[string]envValue {
	settings := make(map[string]envValue)
	for _, kv := range environ {
		name, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		k := strings.ToLower(
			strings.ReplaceAll(strings.TrimPrefix(name, EnvPrefix), "_", ""),
		)
		settings[k] = envValue{name, strings.TrimSpace(v)}
	}
	return settings
}

// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package config

import (
	"maps"
	"slices"
	"strconv"
)

type setter func(*Config, string) error

// envSetters is keyed by the normalized variable name (prefix stripped,
// lowercase, no underscores).
var envSetters = map[string]setter{
	"deviceid":              str(func(c *Config) *string { return &c.Device.ID }),
	"deviceinterface":       str(func(c *Config) *string { return &c.Device.Interface }),
	"devicefirmwareversion": str(func(c *Config) *string { return &c.Device.FirmwareVersion }),
	"loglevel":              str(func(c *Config) *string { return &c.Log.Level }),

	"sampleperiod":             dur(func(c *Config) *Duration { return &c.Acquisition.SamplePeriod }),
	"predictperiod":            dur(func(c *Config) *Duration { return &c.Acquisition.PredictPeriod }),
	"pollinterval":             dur(func(c *Config) *Duration { return &c.Acquisition.PollInterval }),
	"acquisitionsampleperiod":  dur(func(c *Config) *Duration { return &c.Acquisition.SamplePeriod }),
	"acquisitionpredictperiod": dur(func(c *Config) *Duration { return &c.Acquisition.PredictPeriod }),
	"acquisitionpollinterval":  dur(func(c *Config) *Duration { return &c.Acquisition.PollInterval }),

	"sourcekind":       str(func(c *Config) *string { return &c.Source.Kind }),
	"sourcereplaypath": str(func(c *Config) *string { return &c.Source.ReplayPath }),
	"sourceseed":       i64(func(c *Config) *int64 { return &c.Source.Seed }),
	"sourcei2cbus":     str(func(c *Config) *string { return &c.Source.I2CBus }),
	"sourcei2caddress": integer(func(c *Config) *int { return &c.Source.I2CAddress }),
	"modelpath":        str(func(c *Config) *string { return &c.Model.Path }),

	"uploadmaxattempts": integer(func(c *Config) *int { return &c.Upload.MaxAttempts }),
	"uploadbasedelay":   dur(func(c *Config) *Duration { return &c.Upload.BaseDelay }),

	"thingspeakenabled": boolean(func(c *Config) *bool { return &c.ThingSpeak.Enabled }),
	"thingspeakurl":     str(func(c *Config) *string { return &c.ThingSpeak.URL }),
	"thingspeakapikey":  str(func(c *Config) *string { return &c.ThingSpeak.APIKey }),

	"firebaseenabled": boolean(func(c *Config) *bool { return &c.Firebase.Enabled }),
	"firebaseurl":     str(func(c *Config) *string { return &c.Firebase.URL }),
	"firebasesecret":  str(func(c *Config) *string { return &c.Firebase.Secret }),
	"firebasepublic":  boolean(func(c *Config) *bool { return &c.Firebase.Public }),

	"dynamodbenabled": boolean(func(c *Config) *bool { return &c.Dynamo.Enabled }),
	"dynamodbregion":  str(func(c *Config) *string { return &c.Dynamo.Region }),
	"dynamodbtable":   str(func(c *Config) *string { return &c.Dynamo.Table }),

	"mqttenabled":  boolean(func(c *Config) *bool { return &c.MQTT.Enabled }),
	"mqttaddress":  str(func(c *Config) *string { return &c.MQTT.Address }),
	"mqttprefix":   str(func(c *Config) *string { return &c.MQTT.Prefix }),
	"mqttclientid": str(func(c *Config) *string { return &c.MQTT.ClientID }),
	"mqttusername": str(func(c *Config) *string { return &c.MQTT.Username }),
	"mqttpassword": str(func(c *Config) *string { return &c.MQTT.Password }),

	"archiveenabled": boolean(func(c *Config) *bool { return &c.Archive.Enabled }),
	"archivedsn":     str(func(c *Config) *string { return &c.Archive.DSN }),
}

func str(field func(*Config) *string) setter {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

func dur(field func(*Config) *Duration) setter {
	return func(c *Config, v string) error {
		d, err := ParseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = Duration(d)
		return nil
	}
}

func integer(field func(*Config) *int) setter {
	return func(c *Config, v string) error {
		n, err := strconv.ParseInt(v, 0, 0)
		if err != nil {
			return err
		}
		*field(c) = int(n)
		return nil
	}
}

func i64(field func(*Config) *int64) setter {
	return func(c *Config, v string) error {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func boolean(field func(*Config) *bool) setter {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}

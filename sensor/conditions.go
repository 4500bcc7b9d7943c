// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package sensor

// LightCondition describes an illuminance reading in words.
func LightCondition(lux float64) string {
	switch {
	case lux < 10:
		return "Dark"
	case lux < 50:
		return "Dim"
	case lux < 200:
		return "Indoor"
	case lux < 400:
		return "Overcast"
	default:
		return "Bright"
	}
}

// AirQuality describes a gas concentration in words.
func AirQuality(ppm float64) string {
	switch {
	case ppm < 200:
		return "Excellent"
	case ppm < 400:
		return "Good"
	case ppm < 700:
		return "Fair"
	case ppm < 1000:
		return "Poor"
	default:
		return "Hazardous"
	}
}

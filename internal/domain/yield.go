package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	loamySoilMultiplier      = 1.1
	dripIrrigationMultiplier = 1.15
	defaultLandSize          = 1.0
)

// ErrInvalidLandSize is returned when land_size cannot be read as a finite number.
var ErrInvalidLandSize = errors.New("invalid land_size")

// YieldInput is a decoded yield prediction request.
type YieldInput struct {
	// CropType is empty when the request named a crop with a non-string value.
	CropType         string
	SoilType         string
	IrrigationMethod string
	LandSize         float64
}

// YieldEstimate is the computed prediction. Figures are rounded to two decimals.
type YieldEstimate struct {
	PredictedYield  float64  `json:"predicted_yield"`
	TotalProduction float64  `json:"total_production"`
	Recommendations []string `json:"recommendations"`
}

// ParseYieldRequest decodes a JSON object body into a YieldInput.
//
// A missing crop_type falls back to defaultCrop. land_size may be a number or a
// numeric string and defaults to 1 when absent; booleans count as 0 or 1. Null,
// other JSON types, and non-finite values are rejected with ErrInvalidLandSize.
func ParseYieldRequest(body []byte, defaultCrop string) (YieldInput, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return YieldInput{}, err
	}

	in := YieldInput{
		CropType:         defaultCrop,
		SoilType:         stringField(fields, "soil_type"),
		IrrigationMethod: stringField(fields, "irrigation_method"),
		LandSize:         defaultLandSize,
	}
	if raw, ok := fields["crop_type"]; ok {
		in.CropType = stringValue(raw)
	}
	if raw, ok := fields["land_size"]; ok {
		size, err := parseLandSize(raw)
		if err != nil {
			return YieldInput{}, err
		}
		in.LandSize = size
	}
	return in, nil
}

// PredictYield applies the soil and irrigation multipliers to the crop's base
// yield and scales it by land size.
func PredictYield(ref ReferenceData, in YieldInput) (YieldEstimate, error) {
	base, ok := ref.BaseYields[in.CropType]
	if !ok {
		base = ref.DefaultYield
	}

	multiplier := 1.0
	if in.SoilType == "loamy" {
		multiplier *= loamySoilMultiplier
	}
	if in.IrrigationMethod == "drip" {
		multiplier *= dripIrrigationMultiplier
	}

	predicted := base * multiplier
	total := predicted * in.LandSize
	if math.IsInf(total, 0) || math.IsNaN(total) {
		return YieldEstimate{}, fmt.Errorf("%w: total production overflows", ErrInvalidLandSize)
	}

	return YieldEstimate{
		PredictedYield:  roundTo(predicted, 2),
		TotalProduction: roundTo(total, 2),
		Recommendations: []string{
			fmt.Sprintf("Expected yield: %.1f tons/hectare", predicted),
			fmt.Sprintf("Total production: %.1f tons", total),
			"Apply balanced fertilizer based on soil test",
			"Monitor crop health regularly",
			"Ensure proper irrigation scheduling",
		},
	}, nil
}

func parseLandSize(raw json.RawMessage) (float64, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidLandSize, err)
	}

	var size float64
	switch t := v.(type) {
	case float64:
		size = t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: could not convert %q to a number", ErrInvalidLandSize, t)
		}
		size = f
	case bool:
		if t {
			size = 1
		}
	default:
		return 0, fmt.Errorf("%w: expected a number or numeric string, got %s", ErrInvalidLandSize, jsonKind(v))
	}

	if math.IsInf(size, 0) || math.IsNaN(size) {
		return 0, fmt.Errorf("%w: must be finite", ErrInvalidLandSize)
	}
	return size, nil
}

// roundTo rounds the exact binary value of v, so 0.495 (stored just below)
// becomes 0.49. Exact ties go to even.
func roundTo(v float64, places int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil {
		return v
	}
	return r
}

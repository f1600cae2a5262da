// Package domain holds the computations behind the agricultural demo API:
// location autocomplete, crop-yield estimation, synthetic weather, and the
// shape of farmer submissions.
//
// # Reference Data
//
// Every handler computes over [ReferenceData], a set of lookup tables loaded
// once at startup. The built-in tables ([DefaultReferenceData]) cover:
//
//	Locations:    5 Haryana settlements (name, district, state, pincode, village|city)
//	Base yields:  rice 5.5, wheat 4.2, maize 7.0, cotton 2.8, sugarcane 85, soybean 3.2
//	              (tons/hectare); unrecognized crops use 5.0
//	City boxes:   Delhi, Mumbai, Bangalore, Hyderabad, Chennai (inclusive lat/lng ranges)
//	Descriptions: 9 short sky descriptions ("Clear sky", "Overcast", ...)
//
// A YAML file can replace any section; see [LoadReferenceData].
//
// # Yield Estimation
//
//	predicted = base × 1.1 (loamy soil) × 1.15 (drip irrigation)
//	total     = predicted × land_size
//
// Both adjustments are optional and stack. Reported figures are rounded to two
// decimals; the two templated recommendations use the unrounded values with one
// decimal, e.g. wheat/loamy/drip on 2 ha gives 5.31 t/ha and 10.63 t.
//
// land_size accepts JSON numbers and numeric strings ("2", " 2.5 "). Anything
// else, including null and non-finite values, is [ErrInvalidLandSize].
//
// # Weather Synthesis
//
// Samples are fabricated, not observed. Only temperature depends on the input:
//
//	temperature = clamp(round1(35 − 0.8·|lat| + U[−3, 8]), 15, 45)
//
// Every other field is an independent uniform draw from a fixed range. Nothing is
// cached, so the same coordinate yields different samples on each call. The
// location label comes from the first matching city box; when none match, an
// optional [PlaceResolver] may supply a name, otherwise "Unknown Location".
//
// Unparseable or non-finite coordinates produce [FallbackWeather] (25.0 °C,
// "Data unavailable") together with [ErrInvalidCoordinate].
//
// # Submissions
//
// A [Submission] is any JSON object a caller posts, kept verbatim and stamped
// with a sequential ID and a timestamp from the package clock (see [SetClock]).
// Server-assigned "id" and "timestamp" override caller values with those keys.
package domain

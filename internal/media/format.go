package media

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// parseNumber reads a tag value rendered either as a rational ("1/250") or
// as a decimal ("0.004"). Multi-valued strings do not parse.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil {
			return 0, false
		}
		d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err != nil || d == 0 {
			return 0, false
		}
		return n / d, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// formatDecimal renders v in its shortest form, always keeping one decimal
// place for integral values (50 -> "50.0").
func formatDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// FormatExposure renders an exposure time in seconds. Sub-second values
// become a reciprocal fraction. Values that do not parse, or are not
// positive, are returned unchanged.
func FormatExposure(raw string) string {
	v, ok := parseNumber(raw)
	if !ok || v <= 0 {
		return raw
	}
	if v < 1 {
		return fmt.Sprintf("1/%d秒", int64(math.Round(1/v)))
	}
	return formatDecimal(v) + "秒"
}

// FormatAperture renders an F-number with one decimal place.
func FormatAperture(raw string) string {
	v, ok := parseNumber(raw)
	if !ok || v <= 0 {
		return raw
	}
	return fmt.Sprintf("f/%.1f", v)
}

// FormatApexAperture converts an APEX aperture value (Av) to an F-number
// before rendering it. f = sqrt(2)^Av.
func FormatApexAperture(raw string) string {
	av, ok := parseNumber(raw)
	if !ok {
		return raw
	}
	return fmt.Sprintf("f/%.1f", math.Pow(math.Sqrt2, av))
}

// FormatFocalLength renders a focal length in millimetres.
func FormatFocalLength(raw string) string {
	v, ok := parseNumber(raw)
	if !ok {
		return raw
	}
	return formatDecimal(v) + "mm"
}

// FormatISO prefixes the ISO speed rating.
func FormatISO(raw string) string {
	return "ISO " + strings.TrimSpace(raw)
}

// Package validate holds the field-level rules every mutating entry
// point applies before persistence. Each function returns a
// human-readable error suitable for the API's validation-failed
// response; nothing here touches storage.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/boatfinder/internal/app/system/normalize"
)

// Inclusive bounds for the numeric fields.
const (
	SiteDepthMin = 1
	SiteDepthMax = 300

	MaxDepthMin = 10
	MaxDepthMax = 300

	ThresholdMin = 0
	ThresholdMax = 50

	SiteNameMinLen = 2
	SiteNameMaxLen = 120
)

var (
	siteNameRe = regexp.MustCompile(`^[A-Za-z0-9 '().,/&-]+$`)

	// Australian mobile numbers, after formatting characters have been
	// stripped: local 04XXXXXXXX, or international 614XXXXXXXX with or
	// without a leading plus.
	phoneLocalRe = regexp.MustCompile(`^04\d{8}$`)
	phoneIntlRe  = regexp.MustCompile(`^\+?614\d{8}$`)
)

// SiteName checks length and character set. The value should already be
// normalized (trimmed, markup stripped).
func SiteName(name string) error {
	if n := len([]rune(name)); n < SiteNameMinLen || n > SiteNameMaxLen {
		return fmt.Errorf("name must be %d-%d characters", SiteNameMinLen, SiteNameMaxLen)
	}
	if !siteNameRe.MatchString(name) {
		return errors.New("name contains unsupported characters")
	}
	return nil
}

// SiteDepth checks a dive site depth in meters.
func SiteDepth(d int) error {
	if d < SiteDepthMin || d > SiteDepthMax {
		return fmt.Errorf("depth must be between %d and %d meters", SiteDepthMin, SiteDepthMax)
	}
	return nil
}

// DiverMaxDepth checks a diver's certified maximum depth in meters.
func DiverMaxDepth(d int) error {
	if d < MaxDepthMin || d > MaxDepthMax {
		return fmt.Errorf("maxDepth must be between %d and %d meters", MaxDepthMin, MaxDepthMax)
	}
	return nil
}

// Threshold checks an operator notification threshold.
func Threshold(t int) error {
	if t < ThresholdMin || t > ThresholdMax {
		return fmt.Errorf("operatorNotificationThreshold must be between %d and %d", ThresholdMin, ThresholdMax)
	}
	return nil
}

// Phone validates an Australian mobile number and returns its canonical
// local form (04XXXXXXXX). +61 and 61 prefixed forms normalize to the
// same canonical value; anything else is rejected.
func Phone(raw string) (string, error) {
	s := normalize.Phone(raw)
	switch {
	case phoneLocalRe.MatchString(s):
		return s, nil
	case phoneIntlRe.MatchString(s):
		return "0" + s[len(s)-9:], nil
	default:
		return "", errors.New("phone must be an Australian mobile number (04XXXXXXXX)")
	}
}

// Coordinates enforces the both-or-neither pairing and geographic
// bounds for an optional latitude/longitude pair.
func Coordinates(lat, lon *float64) error {
	if (lat == nil) != (lon == nil) {
		return errors.New("latitude and longitude must be provided together")
	}
	if lat == nil {
		return nil
	}
	if *lat < -90 || *lat > 90 {
		return errors.New("latitude must be between -90 and 90")
	}
	if *lon < -180 || *lon > 180 {
		return errors.New("longitude must be between -180 and 180")
	}
	return nil
}

// Date checks a calendar date in YYYY-MM-DD form. Dates are stored and
// compared as strings, so the format has to be exact.
func Date(s string) error {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD: %q", s)
	}
	return nil
}

// DateRange checks a start/end pair. ISO date strings order
// lexicographically, so the comparison is a plain string compare.
func DateRange(start, end string) error {
	if err := Date(start); err != nil {
		return err
	}
	if err := Date(end); err != nil {
		return err
	}
	if strings.Compare(start, end) > 0 {
		return errors.New("startDate must not be after endDate")
	}
	return nil
}

package services

import (
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/medtalks/website/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	pricePrinter = message.NewPrinter(language.English)
	upperCaser   = cases.Upper(language.English)
	lowerCaser   = cases.Lower(language.English)
)

// FormatPrice formats a whole-dollar price with thousands separators, e.g. "$1,234".
//
// Fractions are truncated. Anything that is not a number, or text holding an integer, formats as "$0".
func FormatPrice(price any) string {
	n, ok := wholeNumber(price)
	if !ok {
		return "$0"
	}
	return pricePrinter.Sprintf("$%d", n)
}

// CourseStats builds the display statistics of a normalized course
func CourseStats(c models.Course) models.CourseStats {
	formatted := "0h"
	if hours := int64(c.DurationHours); hours > 0 {
		formatted = strconv.FormatInt(hours, 10) + "h"
	}

	return models.CourseStats{
		TotalSections:          c.TotalSections,
		TotalLessons:           c.TotalLessons,
		TotalDurationFormatted: formatted,
		DurationHours:          c.DurationHours,
		EnrolledCount:          c.EnrolledCount,
		Level:                  capitalize(c.Level),
	}
}

// capitalize upper-cases the first letter and lower-cases the rest
func capitalize(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeRuneInString(s)
	return upperCaser.String(s[:size]) + lowerCaser.String(s[size:])
}

// wholeNumber converts numbers and integer text to an int64, truncating fractions
func wholeNumber(v any) (int64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n, err == nil
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}

// lessonMinutes parses a lesson duration, counting anything that is not an integer as zero
func lessonMinutes(duration string) int {
	n, err := strconv.Atoi(strings.TrimSpace(duration))
	if err != nil {
		return 0
	}
	return n
}

//-------------------------------------------------------------------------
//
// pgEdge Sales Warehouse Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package normalize converts raw source values into the canonical forms
// used as warehouse natural keys. Every function here is pure; dimension
// loading and fact resolution must both go through them so that the keys
// they compute always agree.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ISOLayout is the canonical calendar-date layout.
const ISOLayout = "2006-01-02"

// Date rejection reasons.
var (
	ErrEmpty              = errors.New("empty date")
	ErrInvalidMarker      = errors.New("date marked as invalid")
	ErrUnrecognizedFormat = errors.New("unrecognized date format")
	ErrImpossibleDate     = errors.New("impossible calendar date")
)

var (
	isoPattern = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	dmyPattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

// invalidMarkers are compared after Fold.
var invalidMarkers = map[string]struct{}{
	"n/a":           {},
	"invalid date":  {},
	"data invalida": {},
}

var foldCaser = cases.Fold()

// Fold trims, lowercases and strips diacritics so that "  Data Inválida "
// and "data invalida" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return strings.TrimSpace(foldCaser.String(stripped))
}

// Date returns raw as a zero-padded YYYY-MM-DD string. Accepted shapes are
// loosely padded ISO (2024-3-5) and day/month/year (5/3/2024, 05/03/2024).
func Date(raw string) (string, error) {
	txt := Fold(raw)
	if txt == "" {
		return "", ErrEmpty
	}
	if _, ok := invalidMarkers[txt]; ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidMarker, raw)
	}

	var y, m, d string
	if parts := isoPattern.FindStringSubmatch(txt); parts != nil {
		y, m, d = parts[1], parts[2], parts[3]
	} else if parts := dmyPattern.FindStringSubmatch(txt); parts != nil {
		d, m, y = parts[1], parts[2], parts[3]
	} else {
		return "", fmt.Errorf("%w: %q", ErrUnrecognizedFormat, raw)
	}

	iso := y + "-" + pad2(m) + "-" + pad2(d)
	if _, err := time.Parse(ISOLayout, iso); err != nil {
		return "", fmt.Errorf("%w: %q", ErrImpossibleDate, raw)
	}
	return iso, nil
}

// DatePtr is Date for nullable columns. A NULL value is rejected with ErrEmpty.
func DatePtr(raw *string) (string, error) {
	if raw == nil {
		return "", ErrEmpty
	}
	return Date(*raw)
}

// OptionalDate normalizes a nullable date whose rejection is tolerated by
// the caller, returning nil instead of an error.
func OptionalDate(raw *string) *string {
	iso, err := DatePtr(raw)
	if err != nil {
		return nil
	}
	return &iso
}

// DateParts holds the calendar attributes derived from a canonical date.
type DateParts struct {
	Day     int
	Month   int
	Year    int
	Quarter int
}

// Parts derives day, month, year and quarter from a canonical date.
func Parts(iso string) (DateParts, error) {
	t, err := time.Parse(ISOLayout, iso)
	if err != nil {
		return DateParts{}, fmt.Errorf("failed to parse canonical date %q: %w", iso, err)
	}
	month := int(t.Month())
	return DateParts{
		Day:     t.Day(),
		Month:   month,
		Year:    t.Year(),
		Quarter: (month-1)/3 + 1,
	}, nil
}

func pad2(s string) string {
	n, err := strconv.Atoi(s)
	if err != nil {
		return s
	}
	return fmt.Sprintf("%02d", n)
}

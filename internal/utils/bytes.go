// Package utils holds small formatting helpers shared by the commands.
package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var sizePattern = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*([kKmMgGtT]?[bB]?)?\s*$`)

// ParseBytes parses a byte size string like "4MB", "500KB", "2GB". Units are powers of 1024.
// The empty string is zero.
func ParseBytes(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid size: %s", s)
	}

	val, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, err
	}

	multiplier := int64(1)
	switch strings.ToLower(matches[2]) {
	case "k", "kb":
		multiplier = 1 << 10
	case "m", "mb":
		multiplier = 1 << 20
	case "g", "gb":
		multiplier = 1 << 30
	case "t", "tb":
		multiplier = 1 << 40
	}

	return int64(val * float64(multiplier)), nil
}

// HumanBytes converts bytes to human-readable format
func HumanBytes(n int64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	i := 0
	val := float64(n)

	for val >= 1024 && i < len(units)-1 {
		val /= 1024
		i++
	}

	return fmt.Sprintf("%.2f%s", val, units[i])
}

package util

import (
	"strconv"
)

// CSVWriter writes into a CSV file.
type CSVWriter interface {
	Write(fields []string) error
}

// FormatIndex formats a global index as a CSV field.
func FormatIndex(index int) string { return strconv.Itoa(index) }

// FormatValue formats a matrix/vector value as a CSV field,
// using the shortest representation that round-trips.
func FormatValue(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}

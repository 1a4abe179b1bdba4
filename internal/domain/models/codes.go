package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Code prefixes for generated record codes.
const (
	BatchCodePrefix  = "B"
	FarmerCodePrefix = "F"
	TraderCodePrefix = "T"
)

// NextCode returns the next "<prefix><year>-<seq>" code after the highest
// sequence already used for that prefix and year. Codes that do not match the
// pattern are ignored.
func NextCode(prefix string, year int, existing []string) string {
	series := fmt.Sprintf("%s%d-", prefix, year)
	highest := 0
	for _, code := range existing {
		rest, ok := strings.CutPrefix(code, series)
		if !ok {
			continue
		}
		seq, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		if seq > highest {
			highest = seq
		}
	}
	return fmt.Sprintf("%s%03d", series, highest+1)
}

package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Procedure number suffixes per domain.
const (
	LabNumberSuffix = "L"
	VetNumberSuffix = "V"
)

var procedureNumberRe = regexp.MustCompile(`^(\d{4,})-(\d{4})-([A-Z])$`)

// ParseProcedureNumber splits "0042-2025-L" into (42, 2025, "L").
func ParseProcedureNumber(s string) (seq, year int, suffix string, ok bool) {
	m := procedureNumberRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, "", false
	}
	seq, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, "", false
	}
	year, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, "", false
	}
	return seq, year, m[3], true
}

// FormatProcedureNumber renders a sequence as NNNN-YYYY-S.
func FormatProcedureNumber(seq, year int, suffix string) string {
	return fmt.Sprintf("%04d-%d-%s", seq, year, suffix)
}

// NextProcedureNumber returns max(sequence for year and suffix)+1 formatted.
// Numbers from other years or with other suffixes are ignored, so the count
// restarts at 0001 every January.
func NextProcedureNumber(existing []string, year int, suffix string) string {
	highest := 0
	for _, n := range existing {
		seq, y, sfx, ok := ParseProcedureNumber(n)
		if !ok || y != year || sfx != suffix {
			continue
		}
		if seq > highest {
			highest = seq
		}
	}
	return FormatProcedureNumber(highest+1, year, suffix)
}

// ProcedurePrefix returns the leading numeric part of a procedure number.
func ProcedurePrefix(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseProcedureNumber(t *testing.T) {
	tests := []struct {
		in     string
		seq    int
		year   int
		suffix string
		ok     bool
	}{
		{"0001-2025-L", 1, 2025, "L", true},
		{"0420-2024-V", 420, 2024, "V", true},
		{"12345-2025-L", 12345, 2025, "L", true},
		{" 0007-2025-L ", 7, 2025, "L", true},
		{"001-2025-L", 0, 0, "", false},
		{"0001-25-L", 0, 0, "", false},
		{"0001-2025-l", 0, 0, "", false},
		{"abc", 0, 0, "", false},
		{"", 0, 0, "", false},
	}
	for _, tt := range tests {
		seq, year, suffix, ok := ParseProcedureNumber(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.seq, seq, tt.in)
		assert.Equal(t, tt.year, year, tt.in)
		assert.Equal(t, tt.suffix, suffix, tt.in)
	}
}

func TestNextProcedureNumber(t *testing.T) {
	assert.Equal(t, "0001-2025-L", NextProcedureNumber(nil, 2025, "L"))

	existing := []string{"0003-2025-L", "0010-2024-L", "0001-2025-L", "garbage", "0099-2025-V"}
	assert.Equal(t, "0004-2025-L", NextProcedureNumber(existing, 2025, "L"))
	assert.Equal(t, "0100-2025-V", NextProcedureNumber(existing, 2025, "V"))

	// year rollover restarts the sequence
	assert.Equal(t, "0001-2026-L", NextProcedureNumber(existing, 2026, "L"))

	assert.Equal(t, "10000-2025-L", NextProcedureNumber([]string{"9999-2025-L"}, 2025, "L"))
}

func TestProcedurePrefix(t *testing.T) {
	n, ok := ProcedurePrefix("0042-2025-L")
	assert.True(t, ok)
	assert.Equal(t, 42, n)

	_, ok = ProcedurePrefix("")
	assert.False(t, ok)
	_, ok = ProcedurePrefix("L-0042")
	assert.False(t, ok)
}

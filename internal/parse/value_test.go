package parse

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestID(t *testing.T) {
	testCases := []struct {
		name     string
		in       any
		expected int64
		ok       bool
	}{
		{name: "JSON number", in: float64(42), expected: 42, ok: true},
		{name: "Numeric string", in: " 17 ", expected: 17, ok: true},
		{name: "Fractional number", in: 1.5, ok: false},
		{name: "Zero", in: float64(0), ok: false},
		{name: "Negative", in: float64(-3), ok: false},
		{name: "UUID string", in: "8c1c4c4e-8f1a-4a53-9d2a-3f3c7d1b2a10", ok: false},
		{name: "Nil", in: nil, ok: false},
		{name: "Object", in: map[string]any{"id": 1}, ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, ok := ID(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, id)
		})
	}
}

func TestInt(t *testing.T) {
	testCases := []struct {
		name     string
		in       any
		expected int64
		wantErr  bool
	}{
		{name: "Largest exact float", in: float64(1 << 62), expected: 1 << 62},
		{name: "Lowest int64", in: -0x1p63, expected: math.MinInt64},
		{name: "At the upper bound", in: 0x1p63, wantErr: true},
		{name: "Far out of range", in: 1e300, wantErr: true},
		{name: "Far below range", in: -1e19, wantErr: true},
		{name: "Infinity", in: math.Inf(1), wantErr: true},
		{name: "String", in: "-12", expected: -12},
		{name: "Bool", in: true, expected: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n, err := Int(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, n)
		})
	}

	_, ok := ID(1e20)
	assert.False(t, ok)
}

func TestCanonicalUUID(t *testing.T) {
	assert.Equal(t, "8c1c4c4e-8f1a-4a53-9d2a-3f3c7d1b2a10", CanonicalUUID(" 8C1C4C4E-8F1A-4A53-9D2A-3F3C7D1B2A10 "))
	assert.Equal(t, "legacy-key", CanonicalUUID(" legacy-key "))
	assert.True(t, IsUUID("8c1c4c4e-8f1a-4a53-9d2a-3f3c7d1b2a10"))
	assert.False(t, IsUUID("12"))
}

func TestBool(t *testing.T) {
	for _, in := range []any{true, float64(1), "YES", "true", "1"} {
		b, err := Bool(in)
		assert.NoError(t, err)
		assert.True(t, b, "%v", in)
	}
	for _, in := range []any{false, float64(0), "no", ""} {
		b, err := Bool(in)
		assert.NoError(t, err)
		assert.False(t, b, "%v", in)
	}
	_, err := Bool("maybe")
	assert.Error(t, err)
}

func TestString(t *testing.T) {
	s, err := String(float64(12))
	assert.NoError(t, err)
	assert.Equal(t, "12", s)

	_, err = String([]any{"a"})
	assert.Error(t, err)
}

func TestTime(t *testing.T) {
	shanghai, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		t.Skip("timezone database unavailable")
	}

	testCases := []struct {
		name     string
		in       any
		loc      *time.Location
		expected time.Time
		wantErr  bool
	}{
		{name: "RFC3339", in: "2016-03-25T10:00:00Z", expected: time.Date(2016, 3, 25, 10, 0, 0, 0, time.UTC)},
		{name: "Local layout in zone", in: "2016-03-25 18:00:00", loc: shanghai, expected: time.Date(2016, 3, 25, 10, 0, 0, 0, time.UTC)},
		{name: "Date only", in: "2016-03-25", expected: time.Date(2016, 3, 25, 0, 0, 0, 0, time.UTC)},
		{name: "Epoch seconds", in: float64(1458900000), expected: time.Unix(1458900000, 0).UTC()},
		{name: "Epoch milliseconds", in: float64(1458900000000), expected: time.Unix(1458900000, 0).UTC()},
		{name: "Garbage", in: "yesterday", wantErr: true},
		{name: "Wrong type", in: true, wantErr: true},
		{name: "Out of range", in: 1e300, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Time(tc.in, tc.loc)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.True(t, tc.expected.Equal(got), "expected %s, got %s", tc.expected, got)
		})
	}
}

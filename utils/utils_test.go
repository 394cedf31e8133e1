package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositiveAtoi(t *testing.T) {
	cases := []struct {
		in   string
		def  int
		want int
	}{
		{"5", 1, 5},
		{"", 1, 1},
		{"abc", 30, 30},
		{"0", 30, 30},
		{"-7", 30, 30},
		{"2.5", 30, 30},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PositiveAtoi(tc.in, tc.def), "input %q", tc.in)
	}
}

func TestClampInt(t *testing.T) {
	assert.Equal(t, 0, ClampInt(-3, 0, 100))
	assert.Equal(t, 100, ClampInt(150, 0, 100))
	assert.Equal(t, 42, ClampInt(42, 0, 100))
}

func TestContainsString(t *testing.T) {
	roles := []string{"admin", "instructor"}
	assert.True(t, ContainsString(roles, "admin"))
	assert.False(t, ContainsString(roles, "learner"))
	assert.False(t, ContainsString(nil, "admin"))
}

func TestPointerHelpers(t *testing.T) {
	assert.Nil(t, StringPtr(""))
	if p := StringPtr("x"); assert.NotNil(t, p) {
		assert.Equal(t, "x", *p)
	}
	assert.Nil(t, IntPtr(0))
	if p := IntPtr(7); assert.NotNil(t, p) {
		assert.Equal(t, 7, *p)
	}
}

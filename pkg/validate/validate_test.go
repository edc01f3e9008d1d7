package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidEntityID(t *testing.T) {
	cases := map[string]bool{
		"507f1f77bcf86cd799439011":   true,
		"507F1F77BCF86CD799439011":   true,
		"abc":                        false,
		"":                           false,
		" 507f1f77bcf86cd799439011":  false,
		"507f1f77bcf86cd79943901z":   false,
		"507f1f77bcf86cd7994390111":  false,
		"507f1f77bcf86cd79943901":    false,
	}
	for input, want := range cases {
		assert.Equal(t, want, IsValidEntityID(input), "input %q", input)
	}
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("volunteer@example.org"))
	assert.True(t, IsValidEmail("first.last+tag@sub.example.co"))
	assert.False(t, IsValidEmail("volunteer@example"))
	assert.False(t, IsValidEmail("volunteer example@site.org"))
	assert.False(t, IsValidEmail("@example.org"))
	assert.False(t, IsValidEmail(""))
}

func TestValidatorCustomTags(t *testing.T) {
	type payload struct {
		ID    string `validate:"entityid"`
		Email string `validate:"basicemail"`
	}

	v := Validator()
	require.NoError(t, v.Struct(payload{ID: "507f1f77bcf86cd799439011", Email: "a@b.co"}))
	require.Error(t, v.Struct(payload{ID: "abc", Email: "a@b.co"}))
	require.Error(t, v.Struct(payload{ID: "507f1f77bcf86cd799439011", Email: "a@b"}))
}

package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnlyDigits(t *testing.T) {
	assert.Equal(t, "52998224725", OnlyDigits("529.982.247-25"))
	assert.Equal(t, "11222333000181", OnlyDigits("11.222.333/0001-81"))
	assert.Equal(t, "", OnlyDigits("abc"))
	assert.Equal(t, "", OnlyDigits("٥٢٩٩٨٢٢٤٧٢٥"))
	assert.Equal(t, "12", OnlyDigits("1٢2"))
}

func TestIsCPFOrCNPJ(t *testing.T) {
	cases := map[string]bool{
		"529.982.247-25":     true,
		"52998224725":        true,
		"52998224724":        false,
		"111.111.111-11":     false,
		"11.222.333/0001-81": true,
		"11222333000182":     false,
		"00000000000000":     false,
		"123":                false,
		"٥٢٩٩٨٢٢٤٧٢٥":        false,
		"":                   false,
	}
	for in, want := range cases {
		assert.Equal(t, want, IsCPFOrCNPJ(in), in)
	}
}

func TestNewVerificationCode(t *testing.T) {
	six := regexp.MustCompile(`^\d{6}$`)
	seen := map[string]struct{}{}
	for i := 0; i < 50; i++ {
		c, err := NewVerificationCode()
		require.NoError(t, err)
		assert.Regexp(t, six, c)
		seen[c] = struct{}{}
	}
	assert.Greater(t, len(seen), 1)
}

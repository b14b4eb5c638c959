package portspec_test

import (
	"testing"

	"github.com/nibbabob/portdog/internal/exception"
	"github.com/nibbabob/portdog/internal/portspec"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	t.Run("parses single ports and ranges", func(st *testing.T) {
		spec, err := portspec.Parse("22,80,8000-8002")

		assert.NoError(st, err)
		assert.Equal(st, []uint16{22, 80, 8000, 8001, 8002}, spec.Ports())
	})

	t.Run("deduplicates overlapping tokens", func(st *testing.T) {
		spec, err := portspec.Parse("80,79-81,80")

		assert.NoError(st, err)
		assert.Equal(st, []uint16{79, 80, 81}, spec.Ports())
	})

	t.Run("orders deterministically regardless of input order", func(st *testing.T) {
		a, err := portspec.Parse("443,22,80")
		assert.NoError(st, err)

		b, err := portspec.Parse("80,443,22")
		assert.NoError(st, err)

		assert.Equal(st, a.Ports(), b.Ports())
		assert.Equal(st, []uint16{22, 80, 443}, a.Ports())
	})

	t.Run("expands full range literal", func(st *testing.T) {
		spec, err := portspec.Parse("-")

		assert.NoError(st, err)
		assert.Equal(st, 65535, spec.Len())
		assert.Equal(st, uint16(1), spec.Ports()[0])
		assert.Equal(st, uint16(65535), spec.Ports()[spec.Len()-1])
	})

	t.Run("parses the default specification", func(st *testing.T) {
		spec, err := portspec.Parse(portspec.DefaultSpec)

		assert.NoError(st, err)
		assert.Equal(st, 1024, spec.Len())
	})

	t.Run("ignores empty tokens", func(st *testing.T) {
		spec, err := portspec.Parse("22,,80,")

		assert.NoError(st, err)
		assert.Equal(st, []uint16{22, 80}, spec.Ports())
	})

	t.Run("rejects malformed input", func(st *testing.T) {
		cases := []string{
			"",
			"abc",
			"0",
			"65536",
			"100-99",
			"1-",
			"80,x",
		}

		for _, c := range cases {
			_, err := portspec.Parse(c)
			assert.ErrorIs(st, err, exception.ErrInvalidPortSpec, "spec: %q", c)
		}
	})
}

func TestContains(t *testing.T) {
	spec, err := portspec.Parse("22,80,443")

	assert.NoError(t, err)
	assert.True(t, spec.Contains(80))
	assert.False(t, spec.Contains(8080))
}

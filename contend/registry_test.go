package contend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_OrderFollowsRegistration(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister("alpha", func(*T) {})
	reg.MustRegister("beta", func(*T) {})
	reg.MustRegister("gamma", func(*T) {})

	tests := reg.Tests()
	require.Len(t, tests, 3)
	for i, name := range []string{"alpha", "beta", "gamma"} {
		assert.Equal(t, name, tests[i].Identity.Name)
		assert.Equal(t, i, tests[i].Identity.Index)
		assert.Equal(t, "registry_test.go", tests[i].Identity.Source)
		assert.NotZero(t, tests[i].Identity.Line)
	}
}

func TestRegistry_DeclarationSiteIsTheCallersLine(t *testing.T) {
	reg := NewRegistry()

	_, here := callerSite(0)
	reg.MustRegister("via_must", func(*T) {})
	require.NoError(t, reg.Register("via_plain", func(*T) {}))

	tests := reg.Tests()
	require.Len(t, tests, 2)

	assert.Equal(t, "registry_test.go", tests[0].Identity.Source)
	assert.Equal(t, here+1, tests[0].Identity.Line)
	assert.Equal(t, "registry_test.go", tests[1].Identity.Source)
	assert.Equal(t, here+2, tests[1].Identity.Line)
}

func TestRegistry_RejectsDuplicatesAndEmpty(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("dup", func(*T) {}))
	assert.Error(t, reg.Register("dup", func(*T) {}))
	assert.Error(t, reg.Register("", func(*T) {}))
	assert.Error(t, reg.Register("nofunc", nil))
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_Lookup(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister("present", func(*T) {})

	_, ok := reg.Lookup("present")
	assert.True(t, ok)
	_, ok = reg.Lookup("absent")
	assert.False(t, ok)
}

func TestRegistry_Match(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister("codec_encode", func(*T) {})
	reg.MustRegister("codec_decode", func(*T) {})
	reg.MustRegister("runner", func(*T) {})

	all, err := reg.Match("")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	codec, err := reg.Match("codec_.*")
	require.NoError(t, err)
	require.Len(t, codec, 2)
	assert.Equal(t, "codec_encode", codec[0].Identity.Name)

	// Anchored: a bare substring must not match.
	none, err := reg.Match("codec")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = reg.Match("(")
	assert.Error(t, err)
}

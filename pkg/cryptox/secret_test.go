package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateSecret(t *testing.T) {
	t.Run("sizes encode to expected length", func(t *testing.T) {
		s, err := GenerateSecret(SecretSize128)
		require.NoError(t, err)
		require.Len(t, s, 22)

		s, err = GenerateSecret(SecretSize256)
		require.NoError(t, err)
		require.Len(t, s, 43)
	})

	t.Run("secrets are unique", func(t *testing.T) {
		a := MustGenerateSecret(SecretSize256)
		b := MustGenerateSecret(SecretSize256)
		require.NotEqual(t, a, b)
	})

	t.Run("rejects non-positive size", func(t *testing.T) {
		_, err := GenerateSecret(0)
		require.Error(t, err)

		require.Panics(t, func() { MustGenerateSecret(-1) })
	})
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("code-a")

	require.Equal(t, a, Fingerprint("code-a"))
	require.NotEqual(t, a, Fingerprint("code-b"))
	require.Len(t, a, 12)
}

func TestEqualSecret(t *testing.T) {
	require.True(t, EqualSecret("s1", "s1"))
	require.False(t, EqualSecret("s1", "S1"))
	require.False(t, EqualSecret("s1", "s1 "))
	require.False(t, EqualSecret("secret", ""))
	require.True(t, EqualSecret("", ""))
}

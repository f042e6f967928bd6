package vault

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCipher_RoundTrip(t *testing.T) {
	c := NewCipher("voidborn", DefaultSalt)

	token, err := c.Seal("The void hungers.")
	require.NoError(t, err)
	assert.NotContains(t, token, "void")
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")

	plain, err := c.Open(token)
	require.NoError(t, err)
	assert.Equal(t, "The void hungers.", plain)
}

func TestCipher_NonceIsFresh(t *testing.T) {
	c := NewCipher("voidborn", DefaultSalt)
	a, err := c.Seal("same")
	require.NoError(t, err)
	b, err := c.Seal("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCipher_WrongKey(t *testing.T) {
	token, err := NewCipher("voidborn", DefaultSalt).Seal("secret")
	require.NoError(t, err)

	_, err = NewCipher("letmein", DefaultSalt).Open(token)
	assert.ErrorIs(t, err, ErrDecrypt)

	_, err = NewCipher("voidborn", []byte("other_salt")).Open(token)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestCipher_Tampered(t *testing.T) {
	c := NewCipher("voidborn", DefaultSalt)
	token, err := c.Seal("secret")
	require.NoError(t, err)

	flipped := []byte(token)
	i := len(flipped) / 2
	if flipped[i] == 'A' {
		flipped[i] = 'B'
	} else {
		flipped[i] = 'A'
	}
	_, err = c.Open(string(flipped))
	assert.Error(t, err)

	_, err = c.Open("not base64 at all!!")
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = c.Open("AAAA")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestCipher_Empty(t *testing.T) {
	c := NewCipher("x", DefaultSalt)
	token, err := c.Seal("")
	require.NoError(t, err)
	assert.Empty(t, token)

	plain, err := c.Open("")
	require.NoError(t, err)
	assert.Empty(t, plain)
}

func TestDeriveKey(t *testing.T) {
	a := DeriveKey("voidborn_secure_password", DefaultSalt)
	b := DeriveKey("voidborn_secure_password", DefaultSalt)
	assert.Len(t, a, KeySize)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, DeriveKey("voidborn_secure_password", []byte("x")))
}

func TestPasswordHash(t *testing.T) {
	stored, err := HashPassword("shadow")
	require.NoError(t, err)

	assert.True(t, VerifyPassword(stored, "shadow"))
	assert.False(t, VerifyPassword(stored, "Shadow"))
	assert.False(t, VerifyPassword("garbage", "shadow"))
	assert.False(t, VerifyPassword("", "shadow"))

	again, err := HashPassword("shadow")
	require.NoError(t, err)
	assert.NotEqual(t, stored, again, "salt is random")
}

func TestHashData(t *testing.T) {
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", HashData("hello"))
}

func TestMultiHash(t *testing.T) {
	sums := MultiHash("hello")
	require.Len(t, sums, 4)
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", sums["md5"])
	assert.Equal(t, "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d", sums["sha1"])
	assert.Equal(t, HashData("hello"), sums["sha256"])
	assert.Len(t, sums["sha512"], 128)
	assert.Equal(t, strings.ToLower(sums["sha512"]), sums["sha512"])
}

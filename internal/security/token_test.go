package security

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenParser_RoundTrip(t *testing.T) {
	parser := NewTokenParser("test-secret")

	token, err := parser.Sign("user-42")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := parser.ParseSubject(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", subject)
}

func TestTokenParser_WrongSecret(t *testing.T) {
	token, err := NewTokenParser("secret-a").Sign("user-42")
	require.NoError(t, err)

	_, err = NewTokenParser("secret-b").ParseSubject(token)
	assert.Error(t, err)
}

func TestTokenParser_MissingSubject(t *testing.T) {
	parser := NewTokenParser("test-secret")

	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"foo": "bar"})
	token, err := raw.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = parser.ParseSubject(token)
	assert.Error(t, err)
}

func TestTokenParser_Garbage(t *testing.T) {
	_, err := NewTokenParser("test-secret").ParseSubject("not.a.token")
	assert.Error(t, err)
}

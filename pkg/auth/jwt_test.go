package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndSubject(t *testing.T) {
	cfg := Config{Secret: "s3cret", Issuer: "rota"}

	token, err := Issue(cfg, "u-1", time.Hour)
	require.NoError(t, err)

	sub, err := Subject(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", sub)

	_, err = Subject(Config{Secret: "other"}, token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	_, err = Subject(Config{Secret: "s3cret", Issuer: "someone-else"}, token)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestIssue_Errors(t *testing.T) {
	_, err := Issue(Config{}, "u-1", 0)
	assert.Error(t, err)

	_, err = Issue(Config{Secret: "s"}, "", 0)
	assert.ErrorIs(t, err, ErrNoSubject)
}

func TestSubject_Expired(t *testing.T) {
	cfg := Config{Secret: "s3cret"}
	token, err := Issue(cfg, "u-1", -time.Minute)
	require.NoError(t, err)

	_, err = Subject(cfg, token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/libris/internal/platform/sec"
)

func newTokenService(t *testing.T, issuer string) *sec.TokenService {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return sec.NewTokenServiceFromKey(key, &key.PublicKey, issuer)
}

/*
TestTokenService_RoundTrip signs and verifies an access token.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service := newTokenService(t, "libris.app")

	token, err := service.GenerateAccessToken("user-1", "alice", string(sec.RoleMember), time.Minute)
	require.NoError(t, err)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, sec.Actor{UserID: "user-1", Role: sec.RoleMember}, claims.Actor())
}

/*
TestTokenService_RejectsExpiredAndForeign rejects expired tokens and tokens
signed by another key.
*/
func TestTokenService_RejectsExpiredAndForeign(t *testing.T) {
	service := newTokenService(t, "libris.app")
	other := newTokenService(t, "libris.app")

	expired, err := service.GenerateAccessToken("user-1", "alice", "member", -time.Minute)
	require.NoError(t, err)
	_, err = service.VerifyToken(expired)
	assert.Error(t, err)

	foreign, err := other.GenerateAccessToken("user-1", "alice", "member", time.Minute)
	require.NoError(t, err)
	_, err = service.VerifyToken(foreign)
	assert.Error(t, err)
}

/*
TestPasswordHash verifies bcrypt hashing and comparison.
*/
func TestPasswordHash(t *testing.T) {
	hash, err := sec.HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, sec.CheckPasswordHash("correct horse", hash))
	assert.False(t, sec.CheckPasswordHash("battery staple", hash))
}

/*
TestActor_Access covers the ownership rule used by the lending service.
*/
func TestActor_Access(t *testing.T) {
	admin := sec.Actor{UserID: "a", Role: sec.RoleAdmin}
	member := sec.Actor{UserID: "m", Role: sec.RoleMember}

	assert.True(t, admin.CanAccess("someone-else"))
	assert.True(t, member.CanAccess("m"))
	assert.False(t, member.CanAccess("someone-else"))
	assert.False(t, sec.UserRole("moderator").Valid())
}

/*
TestSecureToken produces distinct tokens with stable hashes.
*/
func TestSecureToken(t *testing.T) {
	first, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)
	second, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, sec.HashToken(first), sec.HashToken(first))
	assert.Len(t, sec.HashToken(first), 64)
}

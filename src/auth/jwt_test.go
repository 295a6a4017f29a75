package auth_test

import (
	"testing"
	"time"

	"inventory/src/auth"
	"inventory/src/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService(t *testing.T) {
	svc := auth.NewJWTService("secret", "inventory")

	t.Run("should round-trip an actor", func(t *testing.T) {
		token, err := svc.Sign(models.Actor{ID: "u1", Email: "a@x.org", Role: models.RoleSuperAdmin}, time.Minute)
		require.NoError(t, err)

		actor, err := svc.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "u1", actor.ID)
		assert.Equal(t, "a@x.org", actor.Email)
		assert.True(t, actor.IsSuperAdmin())
	})

	t.Run("should downgrade unknown roles", func(t *testing.T) {
		token, err := svc.Sign(models.Actor{ID: "u2", Role: "root"}, time.Minute)
		require.NoError(t, err)

		actor, err := svc.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, actor.Role)
	})

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{"expired", func(t *testing.T) string {
			token, err := svc.Sign(models.Actor{ID: "u1"}, -time.Minute)
			require.NoError(t, err)
			return token
		}},
		{"other secret", func(t *testing.T) string {
			token, err := auth.NewJWTService("other", "inventory").Sign(models.Actor{ID: "u1"}, time.Minute)
			require.NoError(t, err)
			return token
		}},
		{"other issuer", func(t *testing.T) string {
			token, err := auth.NewJWTService("secret", "elsewhere").Sign(models.Actor{ID: "u1"}, time.Minute)
			require.NoError(t, err)
			return token
		}},
		{"no subject", func(t *testing.T) string {
			token, err := svc.Sign(models.Actor{Email: "a@x.org"}, time.Minute)
			require.NoError(t, err)
			return token
		}},
		{"unsigned", func(t *testing.T) string {
			token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "u1", "iss": "inventory"}).
				SignedString(jwt.UnsafeAllowNoneSignatureType)
			require.NoError(t, err)
			return token
		}},
		{"garbage", func(t *testing.T) string { return "not.a.token" }},
	}
	for _, tt := range tests {
		t.Run("should reject "+tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token(t))
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

package auth

import (
	"errors"
	"testing"
	"time"

	"bloodbank-backend/internal/models"
	"bloodbank-backend/internal/testutil"

	"github.com/golang-jwt/jwt/v5"
)

func TestToken_RoundTrip(t *testing.T) {
	cfg := testutil.Config()
	user := &models.User{ID: 42, Email: "h@hosp.org", Role: models.RoleHospital}

	tok, err := GenerateToken(cfg, user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ParseToken(cfg, tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 || claims.Role != models.RoleHospital || claims.Email != "h@hosp.org" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.ID == "" {
		t.Error("expected a token id")
	}
}

func TestParseToken_Rejects(t *testing.T) {
	cfg := testutil.Config()
	user := &models.User{ID: 1, Email: "a@b.org", Role: models.RoleAdmin}

	other := *cfg
	other.JWTSecret = "another-secret-that-is-at-least-32-chars"
	wrongSecret, _ := GenerateToken(&other, user)

	otherIssuer := *cfg
	otherIssuer.JWTIssuer = "someone-else"
	wrongIssuer, _ := GenerateToken(&otherIssuer, user)

	expiredCfg := *cfg
	expiredCfg.TokenTTL = -time.Minute
	expired, _ := GenerateToken(&expiredCfg, user)

	// audience says donor, role says admin
	mismatch := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTCustomClaims{
		UserID: 1,
		Role:   models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.JWTIssuer,
			Audience:  jwt.ClaimStrings{string(models.RoleDonor)},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	mismatchTok, _ := mismatch.SignedString([]byte(cfg.JWTSecret))

	cases := map[string]string{
		"garbage":           "not.a.token",
		"wrong secret":      wrongSecret,
		"wrong issuer":      wrongIssuer,
		"expired":           expired,
		"audience mismatch": mismatchTok,
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseToken(cfg, tok); !errors.Is(err, models.ErrAuth) {
				t.Errorf("expected ErrAuth, got %v", err)
			}
		})
	}
}

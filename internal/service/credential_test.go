package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignAndParseAdminToken(t *testing.T) {
	now := time.Now()
	token, expiresAt, err := signAdminToken(testJWTSecret, AdminClaims{AdminID: 3, Email: "a@x.com", Role: "admin"}, now, time.Hour)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if !expiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected expiry: %v", expiresAt)
	}
	claims, err := parseAdminToken(testJWTSecret, token, now.Add(59*time.Minute))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.AdminID != 3 || claims.SessionID == "" || claims.ID != claims.SessionID {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if _, err := parseAdminToken(testJWTSecret, token, now.Add(61*time.Minute)); err == nil {
		t.Fatalf("expired token should not parse")
	}

	other, _, err := signAdminToken(testJWTSecret, AdminClaims{AdminID: 3}, now, time.Hour)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if other == token || HashSessionToken(other) == HashSessionToken(token) {
		t.Fatalf("tokens minted in the same second must differ")
	}
}

func TestParseAdminTokenRejectsOtherAlgorithms(t *testing.T) {
	claims := AdminClaims{AdminID: 1, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none failed: %v", err)
	}
	if _, err := parseAdminToken(testJWTSecret, unsigned, time.Now()); err == nil {
		t.Fatalf("alg none must be rejected")
	}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign hs512 failed: %v", err)
	}
	if _, err := parseAdminToken(testJWTSecret, hs512, time.Now()); err == nil {
		t.Fatalf("only HS256 is accepted")
	}
}

func TestHashSessionToken(t *testing.T) {
	if got := HashSessionToken("abc"); got != "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		t.Fatalf("unexpected sha256 hex: %s", got)
	}
}

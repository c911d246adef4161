package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, address string, expiresAt time.Time) string {
	t.Helper()
	claims := &Claims{
		Address: address,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(expiresAt.Add(-time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("game-server-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func TestDecode(t *testing.T) {
	exp := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	raw := signedToken(t, "0xabc123", exp)

	claims, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.Address != "0xabc123" {
		t.Errorf("address = %q, want 0xabc123", claims.Address)
	}
	if !claims.ExpiresAt.Time.Equal(exp) {
		t.Errorf("expiry = %v, want %v", claims.ExpiresAt.Time, exp)
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode("not-a-token"); err == nil {
		t.Error("expected an error for a malformed token")
	}
}

func TestCheckExpiry(t *testing.T) {
	exp := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	raw := signedToken(t, "0xabc123", exp)

	if _, err := Check(raw, exp.Add(-time.Minute)); err != nil {
		t.Errorf("valid token rejected: %v", err)
	}
	if _, err := Check(raw, exp.Add(time.Minute)); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expired token error = %v, want ErrExpiredToken", err)
	}
}

func TestTimeLeft(t *testing.T) {
	exp := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	claims, err := Decode(signedToken(t, "0xabc123", exp))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	left, ok := TimeLeft(claims, exp.Add(-2*time.Hour))
	if !ok || left != 2*time.Hour {
		t.Errorf("time left = %v ok=%v, want 2h true", left, ok)
	}

	if _, ok := TimeLeft(&Claims{}, exp); ok {
		t.Error("claims without expiry should report ok=false")
	}
}

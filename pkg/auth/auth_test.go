package auth

import (
	"testing"

	"github.com/yeisme/bacasendiri/pkg/configs"
)

func testAuthConfig() *configs.AuthConfig {
	return &configs.AuthConfig{
		Enabled:       true,
		Secret:        "test-secret",
		TokenTTLHours: 24,
		Issuer:        "bacasendiri",
	}
}

func TestSignAndVerify(t *testing.T) {
	cfg := testAuthConfig()

	id := Identity{ID: "u-1", Name: "alice", Email: "alice@example.com", Role: RoleUser}

	token, err := Sign(id, cfg)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	got, err := Verify(token, cfg)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if got.ID != id.ID || got.Email != id.Email || got.Role != id.Role || got.Name != id.Name {
		t.Errorf("identity mismatch: got %+v, want %+v", got, id)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	cfg := testAuthConfig()

	token, err := Sign(Identity{ID: "u-1", Role: RoleUser}, cfg)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	other := testAuthConfig()
	other.Secret = "another-secret"

	if _, err := Verify(token, other); err != ErrTokenInvalid {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	cfg := testAuthConfig()
	cfg.TokenTTLHours = -1

	token, err := Sign(Identity{ID: "u-1", Role: RoleUser}, cfg)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	if _, err := Verify(token, cfg); err != ErrTokenExpired {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	if _, err := Verify("not-a-token", testAuthConfig()); err != ErrTokenInvalid {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestIsAdmin(t *testing.T) {
	if (&Identity{Role: RoleUser}).IsAdmin() {
		t.Error("user role must not be admin")
	}

	if !(&Identity{Role: RoleAdmin}).IsAdmin() {
		t.Error("admin role must be admin")
	}
}

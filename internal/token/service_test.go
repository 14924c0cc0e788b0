package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jredh-dev/foodrescue/internal/models"
)

func TestGenerateAndValidate(t *testing.T) {
	s := New("test-key", "foodrescue.test", nil)
	u := &models.User{ID: "u-1", Name: "Hotel Grand", Role: models.RoleProvider}

	tok, err := s.GenerateToken(u, time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if strings.Count(tok, ".") != 2 {
		t.Fatalf("token %q does not look like a JWT", tok)
	}

	claims, err := s.ValidateToken(tok)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	got := claims.User()
	if got.ID != "u-1" || got.Name != "Hotel Grand" || got.Role != models.RoleProvider {
		t.Errorf("user = %+v", got)
	}
	if claims.Subject != "u-1" {
		t.Errorf("subject = %q", claims.Subject)
	}
}

func TestValidateToken_Rejects(t *testing.T) {
	s := New("test-key", "foodrescue.test", nil)
	u := &models.User{ID: "u-1", Name: "n", Role: models.RoleNGO}

	expired, _ := New("test-key", "foodrescue.test", func() time.Time {
		return time.Now().Add(-2 * time.Hour)
	}).GenerateToken(u, time.Hour)
	otherKey, _ := New("other-key", "foodrescue.test", nil).GenerateToken(u, time.Hour)
	otherIssuer, _ := New("test-key", "someone.else", nil).GenerateToken(u, time.Hour)
	badRole, _ := s.GenerateToken(&models.User{ID: "u-2", Role: models.Role("CHEF")}, time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"expired", expired},
		{"wrong key", otherKey},
		{"wrong issuer", otherIssuer},
		{"unknown role", badRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.ValidateToken(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestGenerateSigningKey(t *testing.T) {
	a, err := GenerateSigningKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	b, _ := GenerateSigningKey()
	if len(a) != 64 || a == b {
		t.Errorf("keys %q and %q", a, b)
	}
}

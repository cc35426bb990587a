package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agrovest/agrovest/internal/domain"
)

func TestIssueAndVerifyToken(t *testing.T) {
	svc := NewAuthService("test-secret", time.Hour)
	principal := domain.Principal{AccountID: 42, Email: "ada@example.com", Role: domain.RoleInvestor}

	token, err := svc.Issue(principal)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	got, err := svc.AuthJwt(context.Background(), token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if got != principal {
		t.Fatalf("expected %+v got %+v", principal, got)
	}

	// second call is served from the principal cache
	if _, err := svc.AuthJwt(context.Background(), token); err != nil {
		t.Fatalf("cached verify failed: %v", err)
	}
}

func TestAuthJwtRejectsForeignSignature(t *testing.T) {
	issuer := NewAuthService("secret-a", time.Hour)
	verifier := NewAuthService("secret-b", time.Hour)

	token, err := issuer.Issue(domain.Principal{AccountID: 1, Email: "x@y.z", Role: domain.RoleFarmer})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := verifier.AuthJwt(context.Background(), token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated got %v", err)
	}
}

func TestAuthJwtRejectsExpiredToken(t *testing.T) {
	svc := NewAuthService("test-secret", -time.Minute)

	token, err := svc.Issue(domain.Principal{AccountID: 1, Email: "x@y.z", Role: domain.RoleFarmer})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := svc.AuthJwt(context.Background(), token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated got %v", err)
	}
}

func TestAuthJwtRejectsGarbage(t *testing.T) {
	svc := NewAuthService("test-secret", time.Hour)

	if _, err := svc.AuthJwt(context.Background(), "not.a.jwt"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated got %v", err)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	svc := NewAuthService("test-secret", time.Hour)

	hashed, err := svc.Hash("hunter2")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hashed == "hunter2" {
		t.Fatalf("password must not be stored in the clear")
	}
	if !svc.Verify(hashed, "hunter2") {
		t.Fatalf("correct password rejected")
	}
	if svc.Verify(hashed, "hunter3") {
		t.Fatalf("wrong password accepted")
	}
}

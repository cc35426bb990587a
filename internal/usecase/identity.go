package usecase

import (
	"context"
	"strings"

	"github.com/agrovest/agrovest/internal/domain"
)

// IdentityUsecase handles signup and login for both account families.
type IdentityUsecase struct {
	accounts AccountRepository
	hasher   PasswordHasher
	issuer   CredentialIssuer
}

func NewIdentityUsecase(accounts AccountRepository, hasher PasswordHasher, issuer CredentialIssuer) *IdentityUsecase {
	return &IdentityUsecase{
		accounts: accounts,
		hasher:   hasher,
		issuer:   issuer,
	}
}

// AuthSession is a freshly issued credential with its account.
type AuthSession struct {
	Account     domain.Account `json:"account"`
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
}

func (uc *IdentityUsecase) Signup(ctx context.Context, role domain.Role, email string, password string) (AuthSession, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return AuthSession{}, domain.InvalidArgumentError{Reason: "email is required"}
	}
	if password == "" {
		return AuthSession{}, domain.InvalidArgumentError{Reason: "password is required"}
	}

	hashed, err := uc.hasher.Hash(password)
	if err != nil {
		return AuthSession{}, err
	}

	account, err := uc.accounts.Create(ctx, role, email, hashed)
	if err != nil {
		return AuthSession{}, err
	}

	return uc.session(account, role)
}

func (uc *IdentityUsecase) Login(ctx context.Context, role domain.Role, email string, password string) (AuthSession, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	account, hashed, err := uc.accounts.GetByEmail(ctx, role, email)
	if err != nil {
		// do not leak which half of the credential pair was wrong
		return AuthSession{}, domain.ErrUnauthenticated
	}
	if !uc.hasher.Verify(hashed, password) {
		return AuthSession{}, domain.ErrUnauthenticated
	}

	return uc.session(account, role)
}

func (uc *IdentityUsecase) session(account domain.Account, role domain.Role) (AuthSession, error) {
	token, err := uc.issuer.Issue(domain.Principal{
		AccountID: account.ID,
		Email:     account.Email,
		Role:      role,
	})
	if err != nil {
		return AuthSession{}, err
	}
	return AuthSession{
		Account:     account,
		AccessToken: token,
		TokenType:   "bearer",
	}, nil
}

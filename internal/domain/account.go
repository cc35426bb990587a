package domain

import "time"

// Role distinguishes the two account families.
type Role string

const (
	RoleFarmer   Role = "farmer"
	RoleInvestor Role = "investor"
)

// Account is a login identity (farmer or investor side).
type Account struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Principal is the authenticated caller attached to a request.
type Principal struct {
	AccountID uint   `json:"account_id"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
}

// PrincipalCtxKey is the request-context key set by the auth middleware.
const PrincipalCtxKey = "agrovest-principal"

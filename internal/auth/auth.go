package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/frahmantamala/factoryshift/internal/authz"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	issuer = "factoryshift-api"
)

// User is the authentication view of a user row: enough to verify
// credentials and place the actor in the org tree. The full CRUD model
// lives in the user package.
type User struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	Email        string     `json:"email" gorm:"column:email"`
	Username     string     `json:"username" gorm:"column:username"`
	FullName     string     `json:"full_name" gorm:"column:full_name"`
	PasswordHash string     `json:"-" gorm:"column:password_hash"`
	Role         authz.Role `json:"role" gorm:"column:role"`
	DivisionID   *int64     `json:"division_id" gorm:"column:division_id"`
	DepartmentID *int64     `json:"department_id" gorm:"column:department_id"`
	IsActive     bool       `json:"is_active" gorm:"column:is_active"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) Actor() authz.Actor {
	return authz.Actor{
		ID:           u.ID,
		Role:         u.Role,
		DivisionID:   u.DivisionID,
		DepartmentID: u.DepartmentID,
	}
}

// Claims are the signed token payload: identity plus role for access
// tokens, identity only for refresh tokens.
type Claims struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	User         *User  `json:"user"`
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(user *User) (string, error)
	GenerateRefreshToken(user *User) (string, error)
	ValidateToken(tokenString, expectedType string) (*Claims, error)
}

type RepositoryAPI interface {
	GetByLogin(login string) (*User, error)
	GetByID(id int64) (*User, error)
}

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ResolveAccessToken(tokenString string) (*User, error)
	HashPassword(password string) (string, error)
}

type ctxKey string

const ContextUserKey ctxKey = "authUser"

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

type JWTTokenGenerator struct {
	Secret          []byte
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

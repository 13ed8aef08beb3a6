package middleware

import (
	"context"
	"net/http"
	"strings"

	"CoffeeShop/jwt"
	"CoffeeShop/models"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/op/go-logging"
	"gorm.io/gorm"
)

var log = logging.MustGetLogger("log")

// 已驗證的呼叫者
type Subject struct {
	UserID uint        `json:"user_id,omitempty"`
	Email  string      `json:"email,omitempty"`
	Role   models.Role `json:"role"`
}

func (s Subject) Can(capability models.Capability) bool {
	return s.Role.Can(capability)
}

type Authorizer interface {
	Authorize(r *http.Request) (Subject, bool)
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
}

// 驗證登入時簽發的RS256 token
type TokenGate struct {
	Tokens *jwt.Manager
	DB     *gorm.DB
}

func (g *TokenGate) Authorize(r *http.Request) (Subject, bool) {
	token := bearerToken(r)
	if token == "" {
		return Subject{}, false
	}

	claims, err := g.Tokens.VerifyToken(token, g.DB.WithContext(r.Context()))
	if err != nil {
		log.Debugf("token rejected: %v", err)
		return Subject{}, false
	}
	role, err := models.ParseRole(claims.Role)
	if err != nil {
		log.Warningf("token for user %d carries %v", claims.UserID, err)
		return Subject{}, false
	}

	return Subject{UserID: claims.UserID, Role: role}, true
}

// 驗證外部OIDC provider的ID token，角色取自role claim
type OIDCGate struct {
	Verifier *oidc.IDTokenVerifier
}

func NewOIDCGate(ctx context.Context, issuer, clientID string) (*OIDCGate, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, err
	}
	return &OIDCGate{Verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

func (g *OIDCGate) Authorize(r *http.Request) (Subject, bool) {
	token := bearerToken(r)
	if token == "" {
		return Subject{}, false
	}

	idToken, err := g.Verifier.Verify(r.Context(), token)
	if err != nil {
		log.Debugf("id token rejected: %v", err)
		return Subject{}, false
	}
	var claims struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := idToken.Claims(&claims); err != nil {
		log.Warningf("id token claims unreadable: %v", err)
		return Subject{}, false
	}
	role, err := models.ParseRole(claims.Role)
	if err != nil {
		log.Warningf("id token for %s carries %v", claims.Email, err)
		return Subject{}, false
	}

	return Subject{Email: claims.Email, Role: role}, true
}

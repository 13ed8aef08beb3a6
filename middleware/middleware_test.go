package middleware_test

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"CoffeeShop/internal/testdb"
	tokens "CoffeeShop/jwt"
	"CoffeeShop/middleware"
	"CoffeeShop/models"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubGate struct {
	subject middleware.Subject
	ok      bool
}

func (g stubGate) Authorize(*http.Request) (middleware.Subject, bool) {
	return g.subject, g.ok
}

func newEngine(gate middleware.Authorizer) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestIDMiddleware(), middleware.AuthMiddleware(gate))

	router.GET("/open", func(c *gin.Context) {
		_, ok := middleware.GetSubject(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": ok})
	})
	router.GET("/no-login", middleware.CheckPermissionMiddleware(models.CapViewLedger), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	secure := router.Group("")
	secure.Use(middleware.CheckLoginMiddleware())
	secure.GET("/ledger", middleware.CheckPermissionMiddleware(models.CapViewLedger), func(c *gin.Context) {
		token, _ := middleware.GetToken(c)
		c.JSON(http.StatusOK, gin.H{"token": token})
	})
	secure.GET("/reports", middleware.CheckPermissionMiddleware(models.CapViewReports), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func get(router http.Handler, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMiddlewareChain(t *testing.T) {
	staff := stubGate{subject: middleware.Subject{UserID: 1, Role: models.RoleStaff}, ok: true}
	manager := stubGate{subject: middleware.Subject{UserID: 2, Role: models.RoleManager}, ok: true}
	anonymous := stubGate{}

	tests := []struct {
		name string
		gate middleware.Authorizer
		path string
		want int
	}{
		{"anonymous public", anonymous, "/open", http.StatusOK},
		{"anonymous ledger", anonymous, "/ledger", http.StatusUnauthorized},
		{"staff ledger", staff, "/ledger", http.StatusOK},
		{"staff reports", staff, "/reports", http.StatusForbidden},
		{"manager reports", manager, "/reports", http.StatusOK},
		{"permission without login check", anonymous, "/no-login", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(newEngine(tt.gate), tt.path, nil)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestPermissionDeniedBody(t *testing.T) {
	gate := stubGate{subject: middleware.Subject{Role: models.RoleStaff}, ok: true}

	w := get(newEngine(gate), "/reports", nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"message":"permission denied","error":"view-reports required"}`, w.Body.String())
}

func TestRequestID(t *testing.T) {
	router := newEngine(stubGate{})

	id := uuid.NewString()
	header := http.Header{}
	header.Set("x-request-id", id)
	w := get(router, "/open", header)
	assert.Equal(t, id, w.Header().Get(middleware.RequestIDHeader))

	header = http.Header{}
	header.Set(middleware.RequestIDHeader, "not-a-uuid")
	w = get(router, "/open", header)
	generated := w.Header().Get(middleware.RequestIDHeader)
	assert.NotEqual(t, "not-a-uuid", generated)
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)
}

func TestTokenGate(t *testing.T) {
	db := testdb.Open(t)
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	manager := tokens.NewManager(key, &key.PublicKey, time.Hour)
	gate := &middleware.TokenGate{Tokens: manager, DB: db}

	store := func(userID uint, role models.Role) string {
		testdb.User(t, db, userID, role)
		token, err := manager.GenerateToken(userID, role, time.Now().Add(time.Hour))
		require.NoError(t, err)
		require.NoError(t, db.Create(&models.LoginToken{Token: token, UserID: userID, Role: role}).Error)
		return token
	}
	authorize := func(header string) (middleware.Subject, bool) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		return gate.Authorize(req)
	}

	subject, ok := authorize("Bearer " + store(5, models.RoleStaff))
	require.True(t, ok)
	assert.Equal(t, middleware.Subject{UserID: 5, Role: models.RoleStaff}, subject)

	_, ok = authorize("Bearer " + store(6, models.Role("barista")))
	assert.False(t, ok, "unknown roles carry no capabilities")

	token := store(7, models.RoleManager)
	_, ok = authorize(token)
	assert.False(t, ok, "missing Bearer prefix")
	_, ok = authorize("")
	assert.False(t, ok)
	_, ok = authorize("Bearer garbage")
	assert.False(t, ok)

	w := get(newEngine(gate), "/ledger", http.Header{"Authorization": {"Bearer " + token}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"token":"`+token+`"}`, w.Body.String())
}

const (
	testIssuer   = "https://id.coffeeshop.test"
	testClientID = "pos-terminal"
)

func signIDToken(t *testing.T, key *rsa.PrivateKey, claims gojwt.MapClaims) string {
	t.Helper()
	base := gojwt.MapClaims{
		"iss": testIssuer,
		"aud": testClientID,
		"sub": "staff-42",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	for k, v := range claims {
		base[k] = v
	}
	signed, err := gojwt.NewWithClaims(gojwt.SigningMethodRS256, base).SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestOIDCGate(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	stranger, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keySet := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
	gate := &middleware.OIDCGate{
		Verifier: oidc.NewVerifier(testIssuer, keySet, &oidc.Config{ClientID: testClientID}),
	}
	authorize := func(token string) (middleware.Subject, bool) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		return gate.Authorize(req)
	}

	subject, ok := authorize(signIDToken(t, key, gojwt.MapClaims{"email": "ana@coffeeshop.test", "role": "Manager"}))
	require.True(t, ok)
	assert.Equal(t, middleware.Subject{Email: "ana@coffeeshop.test", Role: models.RoleManager}, subject)

	tests := []struct {
		name  string
		token string
	}{
		{"unknown role", signIDToken(t, key, gojwt.MapClaims{"email": "a@b.test", "role": "owner"})},
		{"missing role", signIDToken(t, key, gojwt.MapClaims{"email": "a@b.test"})},
		{"wrong audience", signIDToken(t, key, gojwt.MapClaims{"aud": "kiosk", "role": "staff"})},
		{"wrong issuer", signIDToken(t, key, gojwt.MapClaims{"iss": "https://elsewhere.test", "role": "staff"})},
		{"expired", signIDToken(t, key, gojwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix(), "role": "staff"})},
		{"foreign key", signIDToken(t, stranger, gojwt.MapClaims{"role": "staff"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := authorize(tt.token)
			assert.False(t, ok)
		})
	}
}

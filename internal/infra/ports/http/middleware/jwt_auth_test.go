package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/qrave1/confeet-agent/internal/infra/appctx"
)

const testSecret = "control-secret"

func signed(t *testing.T, method jwt.SigningMethod, key any, claims jwt.RegisteredClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	return token
}

func TestJWTAuthMiddleware(t *testing.T) {
	valid := jwt.RegisteredClaims{
		Subject:   "operator",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   string
	}{
		{"valid", "Bearer " + signed(t, jwt.SigningMethodHS256, []byte(testSecret), valid), http.StatusOK, "operator"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"not bearer", "Basic abc", http.StatusUnauthorized, ""},
		{"wrong secret", "Bearer " + signed(t, jwt.SigningMethodHS256, []byte("other"), valid), http.StatusUnauthorized, ""},
		{"wrong method", "Bearer " + signed(t, jwt.SigningMethodHS512, []byte(testSecret), valid), http.StatusUnauthorized, ""},
		{
			"expired",
			"Bearer " + signed(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
				Subject:   "operator",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			}),
			http.StatusUnauthorized,
			"",
		},
		{"no subject", "Bearer " + signed(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{}), http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()

			req := httptest.NewRequest(http.MethodGet, "/api/v1/connection", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}

			rec := httptest.NewRecorder()

			var gotUser string
			next := func(c echo.Context) error {
				gotUser, _ = appctx.UserID(c.Request().Context())
				return c.NoContent(http.StatusOK)
			}

			if err := JWTAuthMiddleware(testSecret)(next)(e.NewContext(req, rec)); err != nil {
				t.Fatalf("middleware returned error: %v", err)
			}

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			if gotUser != tt.wantUser {
				t.Fatalf("user = %q, want %q", gotUser, tt.wantUser)
			}
		})
	}
}

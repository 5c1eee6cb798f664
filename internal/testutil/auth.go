package testutil

import (
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/artisanbridge/artisanbridge/internal/app/system/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/sessions"
)

// SignToken returns an HS256 bearer token for userID, as the marketplace
// sign-in service would issue it. A negative ttl yields an expired token.
func SignToken(t interface{ Fatalf(string, ...any) }, secret, issuer, userID, role string, ttl time.Duration) string {
	now := time.Now()
	claims := auth.Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

// SessionCookie returns a signed-in session cookie for userID, encoded with
// the shared session key and name.
func SessionCookie(t interface{ Fatalf(string, ...any) }, key, name, userID string) *http.Cookie {
	store := sessions.NewCookieStore([]byte(key))
	req := httptest.NewRequest("GET", "/", nil)
	sess, err := store.New(req, name)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	sess.Values[auth.SessionAuthKey] = true
	sess.Values[auth.SessionUserIDKey] = userID

	rec := httptest.NewRecorder()
	if err := sess.Save(req, rec); err != nil {
		t.Fatalf("save session: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("no session cookie written")
	}
	return cookies[0]
}

package util

import (
	"net/http/httptest"
	"testing"
	"time"

	"rubrics_backend/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func TestJWTRoundTrip(t *testing.T) {
	u := &model.User{Email: "t@utb.edu.co", Role: model.Teacher, Language: "es"}
	u.ID = 42

	token, err := GenerateJWT(u, "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	claims, err := ParseJWT(token, "secret")
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != 42 || claims.Role != model.Teacher || claims.Email != u.Email || claims.Language != "es" || claims.Subject != "42" {
		t.Fatalf("claims %+v", claims)
	}

	if _, err := ParseJWT(token, "other"); err == nil {
		t.Fatal("token accepted with wrong secret")
	}
	expired, _ := GenerateJWT(u, "secret", -time.Minute)
	if _, err := ParseJWT(expired, "secret"); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestParseJWTRejectsForeignTokens(t *testing.T) {
	sign := func(c *Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("secret"))
		if err != nil {
			t.Fatal(err)
		}
		return s
	}
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	cases := map[string]*Claims{
		"other issuer": {UserID: 1, Role: model.Teacher, RegisteredClaims: jwt.RegisteredClaims{Issuer: "lms", ExpiresAt: exp}},
		"no expiry":    {UserID: 1, Role: model.Teacher, RegisteredClaims: jwt.RegisteredClaims{Issuer: tokenIssuer}},
		"no user":      {Role: model.Teacher, RegisteredClaims: jwt.RegisteredClaims{Issuer: tokenIssuer, ExpiresAt: exp}},
		"unknown role": {UserID: 1, Role: "guest", RegisteredClaims: jwt.RegisteredClaims{Issuer: tokenIssuer, ExpiresAt: exp}},
	}
	for name, c := range cases {
		if _, err := ParseJWT(sign(c), "secret"); err == nil {
			t.Errorf("%s: token accepted", name)
		}
	}
}

func TestRequestLang(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		url, tokenLang, want string
	}{
		{"/x?lang=es_CO", "en", "es_CO"},
		{"/x", "es", "es"},
		{"/x", "", ""},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", tc.url, nil)
		c.Set("user", &Claims{UserID: 1, Role: model.Student, Language: tc.tokenLang})
		if got := RequestLang(c); got != tc.want {
			t.Errorf("RequestLang(%s, %q) = %q, want %q", tc.url, tc.tokenLang, got, tc.want)
		}
	}
}

func TestParseUintList(t *testing.T) {
	got := ParseUintList("3, 5,x,,0,7")
	if len(got) != 3 || got[0] != 3 || got[1] != 5 || got[2] != 7 {
		t.Fatalf("got %v", got)
	}
}

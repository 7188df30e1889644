package apitest

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/todoclient/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// TokenExpiry is the lifetime of issued JWTs.
const TokenExpiry = 24 * time.Hour

var errRevoked = errors.New("token revoked")

// Claims are the claims of issued JWTs.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func (s *Server) addAccount(email, password string, u models.User) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("apitest: hash password: %v", err))
	}
	if u.Email == "" {
		u.Email = email
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now().UTC()
		u.UpdatedAt = u.CreatedAt
	}
	s.accounts[strings.ToLower(email)] = &account{user: u, hash: hash}
}

func (s *Server) login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, models.CodeInvalidRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, models.CodeInvalidRequest, "email and password are required")
	}

	s.mu.Lock()
	acc, found := s.accounts[strings.ToLower(req.Email)]
	s.mu.Unlock()
	if !found || bcrypt.CompareHashAndPassword(acc.hash, []byte(req.Password)) != nil {
		return fail(c, http.StatusUnauthorized, models.CodeInvalidCredentials, "Invalid email or password")
	}

	token, err := s.issue(acc.user)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, models.LoginResponse{Token: token, User: acc.user})
}

func (s *Server) issue(u models.User) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.static {
		s.issued++
		token := fmt.Sprintf("t%d", s.issued)
		s.tokens[token] = u.ID
		return token, nil
	}

	now := s.now()
	claims := &Claims{
		UserID: u.ID,
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// parseToken validates a bearer token and returns the caller's user id.
func (s *Server) parseToken(_ echo.Context, auth string) (interface{}, error) {
	s.mu.Lock()
	revoked := s.revoked[auth]
	userID, opaque := s.tokens[auth]
	s.mu.Unlock()

	if revoked {
		return nil, errRevoked
	}
	if opaque {
		return userID, nil
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(auth, claims, func(*jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	return claims.UserID, nil
}

func currentUser(c echo.Context) string {
	id, _ := c.Get("user").(string)
	return id
}

package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/notblessy/studio-core/model"
	"github.com/notblessy/studio-core/repository"
	"github.com/notblessy/studio-core/utils"
	"github.com/sirupsen/logrus"
)

const loginPath = "/login"

type jwtClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func signJWTToken(secret, sessionID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &jwtClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func validateToken(secret, tokenString string) (jwtClaims, error) {
	var claims jwtClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}

		return []byte(secret), nil
	})
	if err != nil {
		return jwtClaims{}, err
	}
	if !token.Valid {
		return jwtClaims{}, errors.New("invalid token")
	}
	if claims.SessionID == "" {
		return jwtClaims{}, errors.New("session id not found in claims")
	}

	return claims, nil
}

// authContext is what protected handlers get from the session middleware.
type authContext struct {
	Session      *model.Session
	BackendToken string
}

func authSession(c echo.Context) (*authContext, error) {
	a := c.Get("session")
	if a == nil {
		return nil, errors.New("missing session")
	}

	auth, ok := a.(*authContext)
	if !ok {
		return nil, errors.New("invalid session")
	}

	return auth, nil
}

type JWTMiddleware struct {
	secret   string
	sessions repository.SessionRepository
	sealer   *utils.Sealer
}

func NewJWTMiddleware(secret string, sessions repository.SessionRepository, sealer *utils.Sealer) *JWTMiddleware {
	return &JWTMiddleware{
		secret:   secret,
		sessions: sessions,
		sealer:   sealer,
	}
}

func unauthorized(c echo.Context, message string) error {
	return c.JSON(401, response{
		Success:  false,
		Message:  message,
		Redirect: loginPath,
	})
}

func (m *JWTMiddleware) ValidateJWT(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		logger := logrus.WithField("middleware", "session")

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "authorization token is required")
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			return unauthorized(c, "token is malformed")
		}

		claims, err := validateToken(m.secret, token)
		if err != nil {
			return unauthorized(c, "cannot validate token: "+err.Error())
		}

		session, err := m.sessions.FindByID(c.Request().Context(), claims.SessionID)
		if err != nil {
			logger.Errorf("Error finding session: %v", err)
			return c.JSON(500, response{
				Success: false,
				Message: "failed to load session",
			})
		}
		if session == nil {
			return unauthorized(c, "session expired")
		}

		backendToken, err := m.sealer.Open(session.SealedToken)
		if err != nil {
			logger.Warnf("Dropping session %s with unreadable token: %v", session.ID, err)
			if err := m.sessions.Delete(c.Request().Context(), session.ID); err != nil {
				logger.Errorf("Error deleting session: %v", err)
			}
			return unauthorized(c, "session expired")
		}

		c.Set("session", &authContext{Session: session, BackendToken: backendToken})

		return next(c)
	}
}

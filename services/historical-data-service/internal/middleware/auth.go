package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ValidateToken checks an HS256 access token issued by the user service and
// returns the user id from its subject
func ValidateToken(secret, tokenString string) (int, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, err
	}

	if !token.Valid {
		return 0, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid claims")
	}

	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != "access" {
		return 0, errors.New("invalid token type")
	}

	userIDFloat, ok := claims["sub"].(float64)
	if !ok {
		return 0, errors.New("invalid user ID in token")
	}

	return int(userIDFloat), nil
}

// bearerToken extracts the token from "Authorization: Bearer <token>"
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if authHeader == "" || token == authHeader {
		return "", false
	}
	return token, true
}

// AuthMiddleware creates middleware to authenticate users
func AuthMiddleware(secret string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format"})
			c.Abort()
			return
		}

		userID, err := ValidateToken(secret, token)
		if err != nil {
			logger.Debug("Invalid token", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

// OptionalAuth sets the user when a valid bearer token is sent and lets
// anonymous requests through
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if userID, err := ValidateToken(secret, token); err == nil {
				c.Set("userID", userID)
			}
		}
		c.Next()
	}
}

// ServiceAuthMiddleware authenticates service-to-service calls against a
// bcrypt hash of the shared service key
func ServiceAuthMiddleware(serviceKeyHash string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		headerKey := c.GetHeader("X-Service-Key")
		if headerKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Service key required"})
			c.Abort()
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(serviceKeyHash), []byte(headerKey)); err != nil {
			logger.Warn("Invalid service key", zap.String("client_ip", c.ClientIP()))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid service key"})
			c.Abort()
			return
		}

		c.Set("service", true)
		c.Next()
	}
}

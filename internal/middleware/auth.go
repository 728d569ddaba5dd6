package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/verimetr/verimetr-api/internal/config"
	"github.com/verimetr/verimetr-api/internal/domain"
	"github.com/verimetr/verimetr-api/internal/service/session"
	"github.com/verimetr/verimetr-api/internal/utils"
)

type AuthMiddleware struct {
	config   *config.Config
	sessions *session.Versioner
}

func NewAuthMiddleware(config *config.Config, sessions *session.Versioner) *AuthMiddleware {
	return &AuthMiddleware{
		config:   config,
		sessions: sessions,
	}
}

func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || strings.ToLower(bearerToken[0]) != "bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		token := bearerToken[1]
		claims := jwt.MapClaims{}

		_, err := jwt.ParseWithClaims(token, &claims, func(token *jwt.Token) (any, error) {
			return []byte(m.config.JWTSecretKey), nil
		})

		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		// A token minted before the employee's last version bump is stale.
		if employeeID, ok := claims[string(utils.EmployeeIDKey)].(string); ok {
			tokenVersion, _ := claims["token_version"].(float64)
			current, err := m.sessions.Current(c.Request.Context(), employeeID)
			if err == nil && int64(tokenVersion) != current {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Session has been revoked"})
				c.Abort()
				return
			}
		}

		c.Set(string(utils.CompanyIDKey), claims[string(utils.CompanyIDKey)])
		c.Set(string(utils.ClaimsKey), claims)

		// Later middleware reads the request context, not gin keys.
		ctx := context.WithValue(c.Request.Context(), utils.ClaimsKey, claims)
		ctx = context.WithValue(ctx, utils.CompanyIDKey, claims[string(utils.CompanyIDKey)])
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireStatus admits employees whose status ranks at least the given one.
func (m *AuthMiddleware) RequireStatus(status domain.Status) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, exists := c.Get(string(utils.ClaimsKey))
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No authentication found"})
			return
		}

		claimsMap, ok := claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Invalid claims type"})
			return
		}

		current, _ := claimsMap[string(utils.StatusKey)].(string)
		if !domain.StatusAtLeast(current, status) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}

		c.Next()
	}
}

func (m *AuthMiddleware) GenerateToken(employeeID, companyID string, status domain.Status, tokenVersion int64) (string, error) {
	claims := jwt.MapClaims{
		string(utils.EmployeeIDKey): employeeID,
		string(utils.CompanyIDKey):  companyID,
		string(utils.StatusKey):     string(status),
		"token_version":             tokenVersion,
		"exp":                       time.Now().Add(time.Duration(m.config.JWTExpirationHours) * time.Hour).Unix(),
		"iat":                       time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.config.JWTSecretKey))
}

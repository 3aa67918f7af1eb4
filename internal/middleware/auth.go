package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dilg-vantage/vantage-backend/internal/platform/envutil"
	"github.com/dilg-vantage/vantage-backend/internal/platform/logger"
	"github.com/dilg-vantage/vantage-backend/internal/requestdata"
)

// AuthMiddleware verifies bearer tokens minted by the DILG identity
// provider and exposes the caller through requestdata. No sessions are kept
// here; every request carries its own token.
type AuthMiddleware struct {
	log    *logger.Logger
	secret []byte
}

func NewAuthMiddleware(log *logger.Logger) (*AuthMiddleware, error) {
	secret := envutil.Str("JWT_SECRET", "")
	if secret == "" {
		return nil, fmt.Errorf("missing env var JWT_SECRET")
	}
	return &AuthMiddleware{
		log:    log.With("middleware", "AuthMiddleware"),
		secret: []byte(secret),
	}, nil
}

type tokenClaims struct {
	Role       string `json:"role"`
	BarangayID string `json:"barangay_id,omitempty"`
	Email      string `json:"email,omitempty"`
	FullName   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return am.authenticate(bearerToken)
}

// RequireAuthWithQueryToken also accepts a `?token=` parameter. Signed
// download links open in a new tab and cannot set headers; every other
// route stays header-only so tokens never land in access logs.
func (am *AuthMiddleware) RequireAuthWithQueryToken() gin.HandlerFunc {
	return am.authenticate(func(c *gin.Context) string {
		if t := bearerToken(c); t != "" {
			return t
		}
		return c.Query("token")
	})
}

func (am *AuthMiddleware) authenticate(extract func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extract(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		rd, err := am.verify(tokenString)
		if err != nil {
			am.log.Debug("token rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		ctx := requestdata.WithRequestData(c.Request.Context(), rd)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRole gates a route group to the given roles. It assumes
// RequireAuth already ran.
func (am *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := requestdata.GetRequestData(c.Request.Context())
		if rd == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		for _, role := range roles {
			if rd.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}

func (am *AuthMiddleware) verify(tokenString string) (*requestdata.RequestData, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return am.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid sub claim: %w", err)
	}
	rd := &requestdata.RequestData{
		UserID:      userID,
		Role:        claims.Role,
		Email:       claims.Email,
		FullName:    claims.FullName,
		TokenString: tokenString,
	}
	switch rd.Role {
	case requestdata.RoleBLGU, requestdata.RoleAssessor, requestdata.RoleMLGOO:
	default:
		return nil, fmt.Errorf("unknown role %q", claims.Role)
	}
	if claims.BarangayID != "" {
		bid, err := uuid.Parse(claims.BarangayID)
		if err != nil {
			return nil, fmt.Errorf("invalid barangay_id claim: %w", err)
		}
		rd.BarangayID = bid
	}
	if rd.Role == requestdata.RoleBLGU && rd.BarangayID == uuid.Nil {
		return nil, fmt.Errorf("blgu token missing barangay_id claim")
	}
	return rd, nil
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}

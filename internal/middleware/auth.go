package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"wabackend/internal/access"
	"wabackend/internal/model"
	"wabackend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// Account types carried in the JWT
const (
	AccountTypeUser = "user"
	AccountTypeCS   = "cs"
)

// SetTokenCookies sets access_token and refresh_token as HttpOnly cookies
func SetTokenCookies(c *gin.Context, accessToken, refreshToken string) {
	// Production (cross-origin): SameSiteNoneMode + Secure=true
	// Development (same-site):   SameSiteLaxMode  + Secure=false
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", accessToken, 3600*24, "/", "", secure, true)
	c.SetCookie("refresh_token", refreshToken, 3600*24*7, "/", "", secure, true)
}

// ClearTokenCookies removes access_token and refresh_token cookies
func ClearTokenCookies(c *gin.Context) {
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", "", -1, "/", "", secure, true)
	c.SetCookie("refresh_token", "", -1, "/", "", secure, true)
}

// extractToken reads the access token from cookie or Authorization header
func extractToken(c *gin.Context) (string, error) {
	tokenString, cookieErr := c.Cookie("access_token")
	if cookieErr == nil && tokenString != "" {
		return tokenString, nil
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", errors.New("Authorization is missing")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("Invalid authorization format. Expected 'Bearer <token>'")
	}
	return parts[1], nil
}

func parseClaims(tokenString string) (jwt.MapClaims, error) {
	if len(jwtSecret) == 0 {
		return nil, errors.New("auth middleware not initialized")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// RequireAuth validates the JWT and loads account identity into the context
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := extractToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
			return
		}

		claims, err := parseClaims(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			return
		}

		privilegeID, ok := claims["privilege_id"].(float64)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Privilege not found in token"))
			return
		}

		accountType, _ := claims["account_type"].(string)
		if accountType == "" {
			accountType = AccountTypeUser
		}

		c.Set("accountID", claims["sub"])
		c.Set("accountType", accountType)
		c.Set("privilegeID", uint(privilegeID))

		c.Next()
	}
}

// --- Privilege-matrix middleware ---

// matrixCacheEntry stores one cached capability row with TTL
type matrixCacheEntry struct {
	caps      access.Capabilities
	expiresAt time.Time
}

var (
	matrixCache    sync.Map // "privilegeID|moduleKey" -> matrixCacheEntry
	matrixCacheTTL = 5 * time.Minute
)

// accessDB and jwtSecret are set once via InitAccessMiddleware. The secret
// comes from config so there is a single source of truth for signing and
// verification.
var (
	accessDB  *gorm.DB
	jwtSecret []byte
)

// InitAccessMiddleware sets the DB reference and signing secret for the
// RequireAuth/RequireModule middleware
func InitAccessMiddleware(db *gorm.DB, secret []byte) {
	accessDB = db
	jwtSecret = secret
}

// RequireModule validates the JWT and checks the privilege matrix for the
// target module and action. A missing matrix row denies the request; it is
// never treated as an error bypass.
func RequireModule(moduleKey, action string) gin.HandlerFunc {
	requireAuth := RequireAuth()
	return func(c *gin.Context) {
		requireAuth(c)
		if c.IsAborted() {
			return
		}

		privilegeID := c.GetUint("privilegeID")

		caps, err := capabilitiesFor(privilegeID, moduleKey)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to verify permissions"))
			return
		}

		if !caps.Allows(action) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: module '"+moduleKey+"' does not allow '"+action+"'"))
			return
		}

		c.Next()
	}
}

// capabilitiesFor returns the cached or DB-fetched capability row for a
// (privilege, module) pair. A pair without a seeded row yields the zero
// Capabilities value, denying every action.
func capabilitiesFor(privilegeID uint, moduleKey string) (access.Capabilities, error) {
	cacheKey := fmt.Sprintf("%d|%s", privilegeID, moduleKey)
	if entry, ok := matrixCache.Load(cacheKey); ok {
		cached := entry.(matrixCacheEntry)
		if time.Now().Before(cached.expiresAt) {
			return cached.caps, nil
		}
	}

	if accessDB == nil {
		return access.Capabilities{}, fmt.Errorf("access middleware not initialized")
	}

	var role model.PrivilegeRole
	err := accessDB.
		Joins("JOIN modules ON modules.id = privilege_roles.module_id").
		Where("privilege_roles.privilege_id = ? AND modules.controller_key = ?", privilegeID, moduleKey).
		First(&role).Error

	caps := access.Capabilities{}
	if err == nil {
		caps = access.Capabilities{
			Visible: role.IsVisible,
			Create:  role.IsCreate,
			Read:    role.IsRead,
			Edit:    role.IsEdit,
			Delete:  role.IsDelete,
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return access.Capabilities{}, err
	}

	matrixCache.Store(cacheKey, matrixCacheEntry{
		caps:      caps,
		expiresAt: time.Now().Add(matrixCacheTTL),
	})

	return caps, nil
}

// ClearMatrixCache drops every cached capability row (used after re-seeding)
func ClearMatrixCache() {
	matrixCache.Range(func(key, _ interface{}) bool {
		matrixCache.Delete(key)
		return true
	})
}

package middleware

import (
	"net/http"
	"strings"
	"time"

	"vetlab/internal/auth"
	"vetlab/internal/model"
	"vetlab/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	cookieName = "access_token"
	claimsKey  = "claims"
)

// Auth validates session tokens and gates routes on the permission table.
type Auth struct {
	tokens  *auth.TokenManager
	table   *auth.Table
	release bool
}

func NewAuth(tokens *auth.TokenManager, table *auth.Table, release bool) *Auth {
	return &Auth{tokens: tokens, table: table, release: release}
}

func (a *Auth) cookieMode() (http.SameSite, bool) {
	// Production (cross-origin): SameSiteNoneMode + Secure=true
	// Development (same-site):   SameSiteLaxMode  + Secure=false
	if a.release {
		return http.SameSiteNoneMode, true
	}
	return http.SameSiteLaxMode, false
}

// SetTokenCookie stores the access token as an HttpOnly cookie.
func (a *Auth) SetTokenCookie(c *gin.Context, token string, expires time.Time) {
	sameSite, secure := a.cookieMode()
	c.SetSameSite(sameSite)
	maxAge := int(time.Until(expires).Seconds())
	if maxAge < 1 {
		maxAge = int(a.tokens.TTL().Seconds())
	}
	c.SetCookie(cookieName, token, maxAge, "/", "", secure, true)
}

// ClearTokenCookie removes the access token cookie.
func (a *Auth) ClearTokenCookie(c *gin.Context) {
	sameSite, secure := a.cookieMode()
	c.SetSameSite(sameSite)
	c.SetCookie(cookieName, "", -1, "/", "", secure, true)
}

func tokenFromRequest(c *gin.Context) (string, string) {
	// Try cookie first, fallback to Authorization header
	if token, err := c.Cookie(cookieName); err == nil && token != "" {
		return token, ""
	}
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", "Authorization is missing"
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "Invalid authorization format. Expected 'Bearer <token>'"
	}
	return parts[1], ""
}

// authenticate parses the token into the context. It aborts and returns
// false when the request carries no valid token.
func (a *Auth) authenticate(c *gin.Context) (*auth.Claims, bool) {
	if v, ok := c.Get(claimsKey); ok {
		return v.(*auth.Claims), true
	}
	token, problem := tokenFromRequest(c)
	if problem != "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, problem))
		return nil, false
	}
	claims, err := a.tokens.Parse(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
		return nil, false
	}
	c.Set(claimsKey, claims)
	c.Set("userID", claims.Subject)
	c.Set("userRole", claims.Role)
	return claims, true
}

// Authenticate only requires a valid token.
func (a *Auth) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := a.authenticate(c); ok {
			c.Next()
		}
	}
}

// RequirePermission requires every listed permission.
func (a *Auth) RequirePermission(perms ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := a.authenticate(c)
		if !ok {
			return
		}
		for _, p := range perms {
			if !a.table.Has(claims.Role, p) {
				c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: missing permission '"+p+"'"))
				return
			}
		}
		c.Next()
	}
}

// RequireAnyPermission requires at least one of the listed permissions.
func (a *Auth) RequireAnyPermission(perms ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := a.authenticate(c)
		if !ok {
			return
		}
		if !a.table.HasAny(claims.Role, perms...) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
			return
		}
		c.Next()
	}
}

// RequireDomain admits sessions of domain d. Global roles pass for both domains.
func (a *Auth) RequireDomain(d model.Domain) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := a.authenticate(c)
		if !ok {
			return
		}
		if claims.Domain != d && !model.IsGlobalRole(claims.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: wrong domain"))
			return
		}
		c.Next()
	}
}

// RequireDomainParam is RequireDomain for routes carrying a :domain segment.
func (a *Auth) RequireDomainParam(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := model.Domain(c.Param(param))
		if !d.Valid() {
			c.AbortWithStatusJSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Unknown domain"))
			return
		}
		a.RequireDomain(d)(c)
	}
}

// Allows reports whether the authenticated session holds perm.
func (a *Auth) Allows(c *gin.Context, perm string) bool {
	claims := ClaimsFrom(c)
	return claims != nil && a.table.Has(claims.Role, perm)
}

// ClaimsFrom returns the claims stored by the middleware, or nil.
func ClaimsFrom(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

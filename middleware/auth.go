package middleware

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/shopstream/user-service/models"
	"github.com/shopstream/user-service/utils"
)

const identityKey = "identity"

// Authenticate extracts the validated identity claim pair from the
// bearer token issued by the auth service. This service never verifies
// credentials itself; it only checks the token signature and pulls
// {user_id, role} out of the claims.
func Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.LogError("Missing Authorization header")
			utils.Unauthorized(c, "Please login for access")
			c.Abort()
			return
		}

		tokenString := strings.Replace(authHeader, "Bearer ", "", 1)
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(os.Getenv("JWT_SECRET")), nil
		})
		if err != nil || !token.Valid {
			utils.LogError("Invalid token: %v", err)
			utils.Unauthorized(c, "Please login for access")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			utils.LogError("Invalid token claims")
			utils.Unauthorized(c, "Invalid token claims")
			c.Abort()
			return
		}

		sub, ok := claims["user_id"].(float64)
		if !ok {
			utils.LogError("Token missing user_id claim")
			utils.Unauthorized(c, "Invalid token claims")
			c.Abort()
			return
		}
		role, _ := claims["role"].(string)

		c.Set(identityKey, models.Identity{UserID: uint(sub), Role: role})
		c.Next()
	}
}

// CallerIdentity returns the identity set by Authenticate.
func CallerIdentity(c *gin.Context) (models.Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return models.Identity{}, false
	}
	identity, ok := v.(models.Identity)
	return identity, ok
}

// SetIdentity attaches an identity to the context directly. Test helper.
func SetIdentity(c *gin.Context, identity models.Identity) {
	c.Set(identityKey, identity)
}

// TargetUserID resolves the :userId path parameter. The literal "me"
// aliases the caller's own id, since gin cannot register /users/me next
// to /users/:userId.
func TargetUserID(c *gin.Context) (uint, bool) {
	param := c.Param("userId")
	if param == "me" {
		identity, ok := CallerIdentity(c)
		if !ok {
			return 0, false
		}
		return identity.UserID, true
	}
	id, err := strconv.ParseUint(param, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// RequireSelf allows only the target user, with no admin override.
// Guards mutating operations on profile and addresses.
func RequireSelf() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CallerIdentity(c)
		if !ok {
			utils.Unauthorized(c, "Please login for access")
			c.Abort()
			return
		}
		target, ok := TargetUserID(c)
		if !ok {
			utils.BadRequest(c, "Invalid user ID", nil)
			c.Abort()
			return
		}
		if identity.UserID != target {
			utils.LogError("User %d denied access to user %d", identity.UserID, target)
			utils.Forbidden(c, "You can only manage your own account")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSelfOrAdmin allows the target user or any admin. Guards reads.
func RequireSelfOrAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CallerIdentity(c)
		if !ok {
			utils.Unauthorized(c, "Please login for access")
			c.Abort()
			return
		}
		target, ok := TargetUserID(c)
		if !ok {
			utils.BadRequest(c, "Invalid user ID", nil)
			c.Abort()
			return
		}
		if identity.UserID != target && !identity.IsAdmin() {
			utils.LogError("User %d denied access to user %d", identity.UserID, target)
			utils.Forbidden(c, "You can only access your own account")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin allows only administrators regardless of target.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CallerIdentity(c)
		if !ok {
			utils.Unauthorized(c, "Please login for access")
			c.Abort()
			return
		}
		if !identity.IsAdmin() {
			utils.LogError("Non-admin user %d attempted admin access", identity.UserID)
			utils.Forbidden(c, "Admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

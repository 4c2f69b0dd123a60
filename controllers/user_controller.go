package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopstream/user-service/middleware"
	"github.com/shopstream/user-service/services"
	"github.com/shopstream/user-service/utils"
)

// UserController serves the customer-facing profile endpoints.
type UserController struct {
	svc *services.UserService
}

// NewUserController creates a UserController.
func NewUserController(svc *services.UserService) *UserController {
	return &UserController{svc: svc}
}

func parseUserID(c *gin.Context) (uint, bool) {
	id, ok := middleware.TargetUserID(c)
	if !ok {
		utils.BadRequest(c, "Invalid user ID", nil)
		return 0, false
	}
	return id, true
}

// GetUser returns a user's profile. Gate: self or admin. "me" aliases
// the caller's own id.
func (ctrl *UserController) GetUser(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	profile, err := ctrl.svc.GetProfile(userID)
	if err != nil {
		utils.LogError("Failed to fetch user ID: %d: %v", userID, err)
		utils.FromError(c, err)
		return
	}
	utils.Success(c, "User fetched successfully", gin.H{"user": profile})
}

// UpdateProfile applies a self-service profile patch. Gate: self only.
// Role and credential fields are not part of the patch shape, so they
// can never change through this endpoint.
func (ctrl *UserController) UpdateProfile(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	var patch services.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.LogError("Invalid profile patch for user ID: %d: %v", userID, err)
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	profile, err := ctrl.svc.UpdateProfile(userID, patch)
	if err != nil {
		utils.LogError("Failed to update profile for user ID: %d: %v", userID, err)
		utils.FromError(c, err)
		return
	}
	utils.Success(c, "Profile updated successfully", gin.H{"user": profile})
}

// CloseAccount hard-deletes a user account and all its addresses. Gate:
// self only, so the target is always the caller. Administrative removal
// is the soft delete on the admin surface.
func (ctrl *UserController) CloseAccount(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	if err := ctrl.svc.RemoveUser(userID); err != nil {
		utils.LogError("Failed to close account for user ID: %d: %v", userID, err)
		utils.FromError(c, err)
		return
	}
	utils.Success(c, "Account closed successfully", nil)
}

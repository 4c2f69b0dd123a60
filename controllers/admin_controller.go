package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopstream/user-service/services"
	"github.com/shopstream/user-service/utils"
)

// AdminController serves the admin-only user management endpoints.
type AdminController struct {
	svc *services.UserService
}

// NewAdminController creates an AdminController.
func NewAdminController(svc *services.UserService) *AdminController {
	return &AdminController{svc: svc}
}

func parseAdminTargetID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid user ID", nil)
		return 0, false
	}
	return uint(id), true
}

// ListUsers returns a paginated user listing, optionally filtered by role.
func (ctrl *AdminController) ListUsers(c *gin.Context) {
	pagination := utils.NewPagination(c, 20)
	role := c.Query("role")

	users, total, err := ctrl.svc.ListUsers(pagination.Page, pagination.Limit, role)
	if err != nil {
		utils.LogError("Failed to list users: %v", err)
		utils.FromError(c, err)
		return
	}
	utils.SuccessWithPagination(c, "Users fetched successfully", gin.H{"users": users},
		total, pagination.Page, pagination.Limit)
}

// CreateUser registers an account on behalf of an administrator, role
// included.
func (ctrl *AdminController) CreateUser(c *gin.Context) {
	var input services.CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.LogError("Invalid user input: %v", err)
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	user, err := ctrl.svc.CreateUser(input)
	if err != nil {
		utils.LogError("Failed to create user %s: %v", input.Email, err)
		utils.FromError(c, err)
		return
	}
	utils.Created(c, "User created successfully", gin.H{"user": user.Public()})
}

// GetStatistics returns the aggregate account counts.
func (ctrl *AdminController) GetStatistics(c *gin.Context) {
	stats, err := ctrl.svc.GetStatistics()
	if err != nil {
		utils.LogError("Failed to fetch user statistics: %v", err)
		utils.FromError(c, err)
		return
	}
	utils.Success(c, "Statistics fetched successfully", gin.H{"statistics": stats})
}

// GetUser returns any user by id, active or not.
func (ctrl *AdminController) GetUser(c *gin.Context) {
	id, ok := parseAdminTargetID(c)
	if !ok {
		return
	}

	user, err := ctrl.svc.FindByID(id)
	if err != nil {
		utils.LogError("Failed to fetch user ID: %d: %v", id, err)
		utils.FromError(c, err)
		return
	}
	utils.Success(c, "User fetched successfully", gin.H{"user": user.Public()})
}

// UpdateUser applies an administrative patch, including role and active
// status.
func (ctrl *AdminController) UpdateUser(c *gin.Context) {
	id, ok := parseAdminTargetID(c)
	if !ok {
		return
	}

	var patch services.AdminPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.LogError("Invalid admin patch for user ID: %d: %v", id, err)
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	user, err := ctrl.svc.AdminUpdateUser(id, patch)
	if err != nil {
		utils.LogError("Failed to update user ID: %d: %v", id, err)
		utils.FromError(c, err)
		return
	}
	utils.Success(c, "User updated successfully", gin.H{"user": user})
}

// DeleteUser soft-deletes a user. The record stays in storage with
// is_active=false; hard deletion is reserved for account closure.
func (ctrl *AdminController) DeleteUser(c *gin.Context) {
	id, ok := parseAdminTargetID(c)
	if !ok {
		return
	}

	if err := ctrl.svc.SoftDeleteUser(id); err != nil {
		utils.LogError("Failed to delete user ID: %d: %v", id, err)
		utils.FromError(c, err)
		return
	}
	utils.Success(c, "User deactivated successfully", nil)
}

// UpdateRoleRequest is the payload for role changes.
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateRole changes a user's role.
func (ctrl *AdminController) UpdateRole(c *gin.Context) {
	id, ok := parseAdminTargetID(c)
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid role request for user ID: %d: %v", id, err)
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	user, err := ctrl.svc.UpdateRole(id, req.Role)
	if err != nil {
		utils.LogError("Failed to update role for user ID: %d: %v", id, err)
		utils.FromError(c, err)
		return
	}
	utils.Success(c, "Role updated successfully", gin.H{"user": user})
}

// ToggleStatus flips a user's active flag.
func (ctrl *AdminController) ToggleStatus(c *gin.Context) {
	id, ok := parseAdminTargetID(c)
	if !ok {
		return
	}

	user, err := ctrl.svc.ToggleActiveStatus(id)
	if err != nil {
		utils.LogError("Failed to toggle status for user ID: %d: %v", id, err)
		utils.FromError(c, err)
		return
	}
	utils.Success(c, "User status updated successfully", gin.H{"user": user})
}

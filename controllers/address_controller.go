package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopstream/user-service/services"
	"github.com/shopstream/user-service/utils"
)

// AddressController serves the per-user address endpoints.
type AddressController struct {
	svc *services.UserService
}

// NewAddressController creates an AddressController.
func NewAddressController(svc *services.UserService) *AddressController {
	return &AddressController{svc: svc}
}

func parseAddressID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("addressId"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid address ID", nil)
		return 0, false
	}
	return uint(id), true
}

// ListAddresses returns the user's addresses, default first.
func (ctrl *AddressController) ListAddresses(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	addresses, err := ctrl.svc.GetUserAddresses(userID)
	if err != nil {
		utils.LogError("Failed to fetch addresses for user ID: %d: %v", userID, err)
		utils.FromError(c, err)
		return
	}
	utils.Success(c, "Addresses fetched successfully", gin.H{"addresses": addresses})
}

// GetAddress returns one address scoped to its owner.
func (ctrl *AddressController) GetAddress(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	addressID, ok := parseAddressID(c)
	if !ok {
		return
	}

	address, err := ctrl.svc.GetAddress(userID, addressID)
	if err != nil {
		utils.LogError("Failed to fetch address ID: %d for user ID: %d: %v", addressID, userID, err)
		utils.FromError(c, err)
		return
	}
	utils.Success(c, "Address fetched successfully", gin.H{"address": address})
}

// AddAddress creates an address. The first address for a user becomes
// the default regardless of the requested flag.
func (ctrl *AddressController) AddAddress(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	var input services.AddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.LogError("Invalid address input for user ID: %d: %v", userID, err)
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	address, err := ctrl.svc.AddAddress(userID, input)
	if err != nil {
		utils.LogError("Failed to add address for user ID: %d: %v", userID, err)
		utils.FromError(c, err)
		return
	}
	utils.Created(c, "Address added successfully", gin.H{"address": address})
}

// UpdateAddress applies a patch to an address.
func (ctrl *AddressController) UpdateAddress(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	addressID, ok := parseAddressID(c)
	if !ok {
		return
	}

	var patch services.AddressPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.LogError("Invalid address patch for user ID: %d: %v", userID, err)
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	address, err := ctrl.svc.UpdateAddress(userID, addressID, patch)
	if err != nil {
		utils.LogError("Failed to update address ID: %d for user ID: %d: %v", addressID, userID, err)
		utils.FromError(c, err)
		return
	}
	utils.Success(c, "Address updated successfully", gin.H{"address": address})
}

// DeleteAddress removes an address, subject to the sole-address rule.
func (ctrl *AddressController) DeleteAddress(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	addressID, ok := parseAddressID(c)
	if !ok {
		return
	}

	if err := ctrl.svc.DeleteAddress(userID, addressID); err != nil {
		utils.LogError("Failed to delete address ID: %d for user ID: %d: %v", addressID, userID, err)
		utils.FromError(c, err)
		return
	}
	utils.Success(c, "Address deleted successfully", nil)
}

// SetDefaultAddress marks an address as the user's default.
func (ctrl *AddressController) SetDefaultAddress(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	addressID, ok := parseAddressID(c)
	if !ok {
		return
	}

	address, err := ctrl.svc.SetDefaultAddress(userID, addressID)
	if err != nil {
		utils.LogError("Failed to set default address ID: %d for user ID: %d: %v", addressID, userID, err)
		utils.FromError(c, err)
		return
	}
	utils.Success(c, "Default address set successfully", gin.H{"address": address})
}

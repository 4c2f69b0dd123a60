package services

import (
	"github.com/shopstream/user-service/models"
	"github.com/shopstream/user-service/repository"
	"github.com/shopstream/user-service/utils"
)

// AddressInput carries the fields accepted when adding an address.
type AddressInput struct {
	Street    string `json:"street" binding:"required"`
	City      string `json:"city" binding:"required"`
	State     string `json:"state" binding:"required"`
	ZipCode   string `json:"zip_code" binding:"required"`
	IsDefault bool   `json:"is_default"`
}

// AddressPatch carries the fields accepted when updating an address.
type AddressPatch struct {
	Street    *string `json:"street"`
	City      *string `json:"city"`
	State     *string `json:"state"`
	ZipCode   *string `json:"zip_code"`
	IsDefault *bool   `json:"is_default"`
}

// Default-address invariant: a user with any addresses has exactly one
// default. Every mutation below that touches the flag runs inside a
// repository transaction and sequences clear-before-set, so no committed
// state ever holds zero or two defaults.

// AddAddress creates an address for the user. The first address is forced
// default regardless of the requested value.
func (s *UserService) AddAddress(userID uint, input AddressInput) (*models.Address, error) {
	exists, err := s.users.ExistsByID(userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, utils.NotFoundError("User not found", nil)
	}

	addr := &models.Address{
		UserID:    userID,
		Street:    input.Street,
		City:      input.City,
		State:     input.State,
		ZipCode:   input.ZipCode,
		IsDefault: input.IsDefault,
	}

	err = s.addresses.Transaction(func(tx repository.AddressRepository) error {
		count, err := tx.CountByUser(userID)
		if err != nil {
			return err
		}
		if count == 0 {
			addr.IsDefault = true
		}
		if addr.IsDefault {
			if err := tx.ClearDefault(userID); err != nil {
				return err
			}
		}
		return tx.Create(addr)
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Address added for user ID: %d, address ID: %d", userID, addr.ID)
	return addr, nil
}

// GetUserAddresses returns the user's addresses, default first, then by
// id ascending.
func (s *UserService) GetUserAddresses(userID uint) ([]models.Address, error) {
	exists, err := s.users.ExistsByID(userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, utils.NotFoundError("User not found", nil)
	}
	return s.addresses.ListByUser(userID)
}

// GetAddress returns a single address scoped to its owner. An address id
// that exists under a different owner reads as absent.
func (s *UserService) GetAddress(userID, addressID uint) (*models.Address, error) {
	addr, err := s.addresses.FindByUserAndID(userID, addressID)
	if err != nil {
		return nil, err
	}
	if addr == nil {
		return nil, utils.NotFoundError("Address not found", nil)
	}
	return addr, nil
}

// UpdateAddress applies a patch to an address. Promoting to default
// clears the previous default first; demoting the current default
// directly is rejected, since that would leave the user with no default.
func (s *UserService) UpdateAddress(userID, addressID uint, patch AddressPatch) (*models.Address, error) {
	var updated *models.Address

	err := s.addresses.Transaction(func(tx repository.AddressRepository) error {
		addr, err := tx.FindByUserAndID(userID, addressID)
		if err != nil {
			return err
		}
		if addr == nil {
			return utils.NotFoundError("Address not found", nil)
		}

		if patch.IsDefault != nil {
			if *patch.IsDefault && !addr.IsDefault {
				if err := tx.ClearDefault(userID); err != nil {
					return err
				}
				addr.IsDefault = true
			} else if !*patch.IsDefault && addr.IsDefault {
				return utils.BadRequestError("Cannot unset the default address. Set another address as default instead.", nil)
			}
		}
		if patch.Street != nil {
			addr.Street = *patch.Street
		}
		if patch.City != nil {
			addr.City = *patch.City
		}
		if patch.State != nil {
			addr.State = *patch.State
		}
		if patch.ZipCode != nil {
			addr.ZipCode = *patch.ZipCode
		}

		if err := tx.Save(addr); err != nil {
			return err
		}
		updated = addr
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Address updated for user ID: %d, address ID: %d", userID, addressID)
	return updated, nil
}

// DeleteAddress removes an address. The sole remaining address cannot be
// deleted; deleting the default with others remaining promotes the
// lowest-id survivor.
func (s *UserService) DeleteAddress(userID, addressID uint) error {
	err := s.addresses.Transaction(func(tx repository.AddressRepository) error {
		addr, err := tx.FindByUserAndID(userID, addressID)
		if err != nil {
			return err
		}
		if addr == nil {
			return utils.NotFoundError("Address not found", nil)
		}

		count, err := tx.CountByUser(userID)
		if err != nil {
			return err
		}
		if count == 1 && addr.IsDefault {
			return utils.BadRequestError("Cannot delete the only address. Add another address first.", nil)
		}

		if err := tx.Delete(addr); err != nil {
			return err
		}

		if addr.IsDefault {
			next, err := tx.FirstByUser(userID)
			if err != nil {
				return err
			}
			if next != nil {
				next.IsDefault = true
				if err := tx.Save(next); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	utils.LogInfo("Address deleted for user ID: %d, address ID: %d", userID, addressID)
	return nil
}

// SetDefaultAddress marks the given address as the user's default.
func (s *UserService) SetDefaultAddress(userID, addressID uint) (*models.Address, error) {
	var updated *models.Address

	err := s.addresses.Transaction(func(tx repository.AddressRepository) error {
		addr, err := tx.FindByUserAndID(userID, addressID)
		if err != nil {
			return err
		}
		if addr == nil {
			return utils.NotFoundError("Address not found", nil)
		}

		if err := tx.ClearDefault(userID); err != nil {
			return err
		}
		addr.IsDefault = true
		if err := tx.Save(addr); err != nil {
			return err
		}
		updated = addr
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Default address set for user ID: %d, address ID: %d", userID, addressID)
	return updated, nil
}

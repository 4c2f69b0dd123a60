package services

import (
	"sort"
	"time"

	"github.com/shopstream/user-service/models"
	"github.com/shopstream/user-service/repository"
	"github.com/shopstream/user-service/utils"
)

// In-memory repositories backing the service tests. They mirror the
// contracts of the GORM implementations: lookups return (nil, nil) on
// absence, Create rejects duplicate emails with a conflict, and deleting
// a user cascades to its addresses.

var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type memStore struct {
	users map[uint]models.User
	addrs map[uint]models.Address
	nextU uint
	nextA uint
}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[uint]models.User),
		addrs: make(map[uint]models.Address),
	}
}

func newTestService() (*UserService, *memStore) {
	store := newMemStore()
	return NewUserService(&fakeUserRepo{s: store}, &fakeAddressRepo{s: store}), store
}

func (s *memStore) addressesOf(userID uint) []models.Address {
	var out []models.Address
	for _, a := range s.addrs {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakeUserRepo struct {
	s *memStore
}

func (r *fakeUserRepo) Create(user *models.User) error {
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return utils.ConflictError("A user with this email address already exists", nil)
		}
	}
	r.s.nextU++
	user.ID = r.s.nextU
	user.CreatedAt = testEpoch.Add(time.Duration(user.ID) * time.Second)
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) FindByID(id uint) (*models.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	u.Addresses = r.s.addressesOf(id)
	return &u, nil
}

func (r *fakeUserRepo) ExistsByID(id uint) (bool, error) {
	_, ok := r.s.users[id]
	return ok, nil
}

func (r *fakeUserRepo) ExistsByEmail(email string) (bool, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) FindTokenByEmail(email string) (*models.TokenUser, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			return &models.TokenUser{
				ID:           u.ID,
				Email:        u.Email,
				FirstName:    u.FirstName,
				LastName:     u.LastName,
				RefreshToken: u.RefreshToken,
				GoogleID:     u.GoogleID,
				Role:         u.Role,
				IsGoogleUser: u.IsGoogleUser,
			}, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindCredentialByEmail(email string) (*models.CredentialUser, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			return &models.CredentialUser{
				ID:           u.ID,
				Email:        u.Email,
				Password:     u.Password,
				FirstName:    u.FirstName,
				LastName:     u.LastName,
				RefreshToken: u.RefreshToken,
				Role:         u.Role,
				IsGoogleUser: u.IsGoogleUser,
			}, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindTokenByID(id uint) (*models.TokenUser, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &models.TokenUser{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		RefreshToken: u.RefreshToken,
		GoogleID:     u.GoogleID,
		Role:         u.Role,
		IsGoogleUser: u.IsGoogleUser,
	}, nil
}

func (r *fakeUserRepo) UpdateRefreshToken(id uint, token *string) error {
	u, ok := r.s.users[id]
	if !ok {
		return nil
	}
	if token == nil {
		u.RefreshToken = ""
	} else {
		u.RefreshToken = *token
	}
	r.s.users[id] = u
	return nil
}

func (r *fakeUserRepo) Save(user *models.User) error {
	for _, u := range r.s.users {
		if u.Email == user.Email && u.ID != user.ID {
			return utils.ConflictError("Email already in use by another account", nil)
		}
	}
	saved := *user
	saved.Addresses = nil
	r.s.users[user.ID] = saved
	return nil
}

func (r *fakeUserRepo) Delete(id uint) error {
	delete(r.s.users, id)
	for aid, a := range r.s.addrs {
		if a.UserID == id {
			delete(r.s.addrs, aid)
		}
	}
	return nil
}

func (r *fakeUserRepo) List(offset, limit int, role string) ([]models.User, int64, error) {
	var all []models.User
	for _, u := range r.s.users {
		if role != "" && u.Role != role {
			continue
		}
		u.Addresses = r.s.addressesOf(u.ID)
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeUserRepo) Count() (int64, error) {
	return int64(len(r.s.users)), nil
}

func (r *fakeUserRepo) CountByRole(role string) (int64, error) {
	var count int64
	for _, u := range r.s.users {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}

func (r *fakeUserRepo) CountGoogleUsers() (int64, error) {
	var count int64
	for _, u := range r.s.users {
		if u.IsGoogleUser {
			count++
		}
	}
	return count, nil
}

type fakeAddressRepo struct {
	s *memStore
}

func (r *fakeAddressRepo) Transaction(fn func(repository.AddressRepository) error) error {
	return fn(r)
}

// checkSingleDefault mirrors the partial unique index on
// (user_id) WHERE is_default: a write that would leave two defaults is
// rejected at commit.
func (r *fakeAddressRepo) checkSingleDefault(addr *models.Address) error {
	if !addr.IsDefault {
		return nil
	}
	for id, a := range r.s.addrs {
		if a.UserID == addr.UserID && a.IsDefault && id != addr.ID {
			return utils.ConflictError("Another address became the default concurrently", nil)
		}
	}
	return nil
}

func (r *fakeAddressRepo) Create(addr *models.Address) error {
	if _, ok := r.s.users[addr.UserID]; !ok {
		return utils.NotFoundError("User not found", nil)
	}
	if err := r.checkSingleDefault(addr); err != nil {
		return err
	}
	r.s.nextA++
	addr.ID = r.s.nextA
	r.s.addrs[addr.ID] = *addr
	return nil
}

func (r *fakeAddressRepo) FindByUserAndID(userID, addressID uint) (*models.Address, error) {
	a, ok := r.s.addrs[addressID]
	if !ok || a.UserID != userID {
		return nil, nil
	}
	return &a, nil
}

func (r *fakeAddressRepo) ListByUser(userID uint) ([]models.Address, error) {
	out := r.s.addressesOf(userID)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeAddressRepo) CountByUser(userID uint) (int64, error) {
	return int64(len(r.s.addressesOf(userID))), nil
}

func (r *fakeAddressRepo) ClearDefault(userID uint) error {
	for id, a := range r.s.addrs {
		if a.UserID == userID && a.IsDefault {
			a.IsDefault = false
			r.s.addrs[id] = a
		}
	}
	return nil
}

func (r *fakeAddressRepo) FirstByUser(userID uint) (*models.Address, error) {
	addrs := r.s.addressesOf(userID)
	if len(addrs) == 0 {
		return nil, nil
	}
	return &addrs[0], nil
}

func (r *fakeAddressRepo) Save(addr *models.Address) error {
	if err := r.checkSingleDefault(addr); err != nil {
		return err
	}
	r.s.addrs[addr.ID] = *addr
	return nil
}

func (r *fakeAddressRepo) Delete(addr *models.Address) error {
	delete(r.s.addrs, addr.ID)
	return nil
}

package services

import (
	"strings"

	"github.com/shopstream/user-service/models"
	"github.com/shopstream/user-service/repository"
	"github.com/shopstream/user-service/utils"
	"golang.org/x/crypto/bcrypt"
)

// UserService implements the account business rules on top of the
// repositories: user CRUD with email uniqueness, typed projections for
// the auth service, role and status management, and the default-address
// invariant (address_service.go).
type UserService struct {
	users     repository.UserRepository
	addresses repository.AddressRepository
}

// NewUserService creates a UserService.
func NewUserService(users repository.UserRepository, addresses repository.AddressRepository) *UserService {
	return &UserService{users: users, addresses: addresses}
}

// NormalizeEmail fixes the email case policy: addresses are stored and
// compared lower-case, so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUserInput carries the fields accepted on user creation. Password
// and refresh token arrive pre-hashed/pre-issued from the auth service.
type CreateUserInput struct {
	Email        string `json:"email" binding:"required"`
	FirstName    string `json:"first_name" binding:"required"`
	LastName     string `json:"last_name" binding:"required"`
	Password     string `json:"password"`
	RefreshToken string `json:"refresh_token"`
	GoogleID     string `json:"google_id"`
	IsGoogleUser bool   `json:"is_google_user"`
	Role         string `json:"role"`
}

// ProfilePatch is the self-service update shape. Role and credential
// fields are not representable here, so a profile update can never
// escalate privileges.
type ProfilePatch struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
}

// AdminPatch is the administrative update shape. Credentials stay
// unrepresentable; role and active status are allowed.
type AdminPatch struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Role      *string `json:"role"`
	IsActive  *bool   `json:"is_active"`
}

// CreateUser registers a new account, rejecting duplicate emails.
func (s *UserService) CreateUser(input CreateUserInput) (*models.User, error) {
	email := NormalizeEmail(input.Email)

	role := input.Role
	if role == "" {
		role = models.RoleCustomer
	}
	if !models.ValidRole(role) {
		return nil, utils.BadRequestError("Invalid role provided", nil)
	}

	taken, err := s.users.ExistsByEmail(email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, utils.ConflictError("A user with this email address already exists", nil)
	}

	user := &models.User{
		Email:        email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Password:     input.Password,
		RefreshToken: input.RefreshToken,
		GoogleID:     input.GoogleID,
		IsGoogleUser: input.IsGoogleUser,
		Role:         role,
		IsActive:     true,
	}

	// The unique index on email is the authoritative guard; the
	// existence check above only gives a friendlier fast path.
	if err := s.users.Create(user); err != nil {
		return nil, err
	}

	utils.LogInfo("User created - ID: %d, email: %s", user.ID, user.Email)
	return user, nil
}

// FindByID returns the user with its address collection. Peer services
// depend on the addresses always being present.
func (s *UserService) FindByID(id uint) (*models.User, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, utils.NotFoundError("User not found", nil)
	}
	if user.Addresses == nil {
		user.Addresses = []models.Address{}
	}
	return user, nil
}

// GetProfile is the customer-facing read: inactive accounts are reported
// as absent.
func (s *UserService) GetProfile(id uint) (*models.PublicUser, error) {
	user, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, utils.NotFoundError("User not found", nil)
	}
	return user.Public(), nil
}

// FindTokenByEmail returns the token projection, or nil when no account
// matches. Used by the auth service for existence checks.
func (s *UserService) FindTokenByEmail(email string) (*models.TokenUser, error) {
	return s.users.FindTokenByEmail(NormalizeEmail(email))
}

// FindCredentialByEmail returns the credential projection for login
// verification. Trusted peer surface only.
func (s *UserService) FindCredentialByEmail(email string) (*models.CredentialUser, error) {
	return s.users.FindCredentialByEmail(NormalizeEmail(email))
}

// FindTokenByID returns the token projection for session-refresh checks.
func (s *UserService) FindTokenByID(id uint) (*models.TokenUser, error) {
	return s.users.FindTokenByID(id)
}

// UpdateRefreshToken writes the refresh token; nil invalidates the
// session. An unknown id is a silent no-op so that repeated session
// invalidation stays idempotent.
func (s *UserService) UpdateRefreshToken(id uint, token *string) error {
	return s.users.UpdateRefreshToken(id, token)
}

// UpdateProfile applies a self-service patch. Email changes re-check
// uniqueness.
func (s *UserService) UpdateProfile(id uint, patch ProfilePatch) (*models.PublicUser, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, utils.NotFoundError("User not found", nil)
	}

	if patch.Email != nil {
		email := NormalizeEmail(*patch.Email)
		if email != user.Email {
			taken, err := s.users.ExistsByEmail(email)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, utils.ConflictError("Email already in use by another account", nil)
			}
			user.Email = email
		}
	}
	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}

	if err := s.users.Save(user); err != nil {
		return nil, err
	}
	utils.LogInfo("Profile updated for user ID: %d", user.ID)
	return user.Public(), nil
}

// AdminUpdateUser applies an administrative patch, permitting role and
// active-status changes.
func (s *UserService) AdminUpdateUser(id uint, patch AdminPatch) (*models.PublicUser, error) {
	if patch.Role != nil && !models.ValidRole(*patch.Role) {
		return nil, utils.BadRequestError("Invalid role provided", nil)
	}

	user, err := s.users.FindByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, utils.NotFoundError("User not found", nil)
	}

	if patch.Email != nil {
		email := NormalizeEmail(*patch.Email)
		if email != user.Email {
			taken, err := s.users.ExistsByEmail(email)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, utils.ConflictError("Email already in use by another account", nil)
			}
			user.Email = email
		}
	}
	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}
	if patch.IsActive != nil {
		user.IsActive = *patch.IsActive
	}

	if err := s.users.Save(user); err != nil {
		return nil, err
	}
	utils.LogInfo("Admin update applied to user ID: %d", user.ID)
	return user.Public(), nil
}

// UpdateRole changes a user's role.
func (s *UserService) UpdateRole(id uint, role string) (*models.PublicUser, error) {
	if !models.ValidRole(role) {
		return nil, utils.BadRequestError("Invalid role provided", nil)
	}

	user, err := s.users.FindByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, utils.NotFoundError("User not found", nil)
	}

	user.Role = role
	if err := s.users.Save(user); err != nil {
		return nil, err
	}
	utils.LogInfo("Role changed to %s for user ID: %d", role, user.ID)
	return user.Public(), nil
}

// ToggleActiveStatus flips the active flag.
func (s *UserService) ToggleActiveStatus(id uint) (*models.PublicUser, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, utils.NotFoundError("User not found", nil)
	}

	user.IsActive = !user.IsActive
	if err := s.users.Save(user); err != nil {
		return nil, err
	}
	utils.LogInfo("Active status toggled to %t for user ID: %d", user.IsActive, user.ID)
	return user.Public(), nil
}

// SoftDeleteUser marks the account inactive. This is the only
// administrative delete; the record and its addresses stay in storage.
func (s *UserService) SoftDeleteUser(id uint) error {
	user, err := s.users.FindByID(id)
	if err != nil {
		return err
	}
	if user == nil {
		return utils.NotFoundError("User not found", nil)
	}

	user.IsActive = false
	if err := s.users.Save(user); err != nil {
		return err
	}
	utils.LogInfo("User soft-deleted - ID: %d", id)
	return nil
}

// RemoveUser hard-deletes the account and cascades to its addresses.
// Reserved for self-service account closure.
func (s *UserService) RemoveUser(id uint) error {
	user, err := s.users.FindByID(id)
	if err != nil {
		return err
	}
	if user == nil {
		return utils.NotFoundError("User not found", nil)
	}

	if err := s.users.Delete(id); err != nil {
		return err
	}
	utils.LogInfo("User removed - ID: %d", id)
	return nil
}

// ListUsers returns a page of users ordered by creation time descending,
// optionally filtered by role, plus the total count.
func (s *UserService) ListUsers(page, limit int, role string) ([]*models.PublicUser, int64, error) {
	if role != "" && !models.ValidRole(role) {
		return nil, 0, utils.BadRequestError("Invalid role provided", nil)
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	users, total, err := s.users.List((page-1)*limit, limit, role)
	if err != nil {
		return nil, 0, err
	}

	public := make([]*models.PublicUser, 0, len(users))
	for i := range users {
		public = append(public, users[i].Public())
	}
	return public, total, nil
}

// GetStatistics returns the aggregate account counts. The counts are
// read-committed consistent; slight staleness under concurrent writes is
// acceptable.
func (s *UserService) GetStatistics() (*models.Statistics, error) {
	total, err := s.users.Count()
	if err != nil {
		return nil, err
	}
	admins, err := s.users.CountByRole(models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	customers, err := s.users.CountByRole(models.RoleCustomer)
	if err != nil {
		return nil, err
	}
	google, err := s.users.CountGoogleUsers()
	if err != nil {
		return nil, err
	}

	return &models.Statistics{
		TotalUsers:    total,
		AdminCount:    admins,
		CustomerCount: customers,
		GoogleUsers:   google,
	}, nil
}

// EnsureBootstrapAdmin creates the initial admin account if it does not
// exist yet. The password is bcrypt-hashed here since no auth service has
// issued this account.
func (s *UserService) EnsureBootstrapAdmin(email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	email = NormalizeEmail(email)
	exists, err := s.users.ExistsByEmail(email)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalError("Failed to hash bootstrap admin password", err)
	}

	admin := &models.User{
		Email:     email,
		FirstName: "Admin",
		LastName:  "User",
		Password:  string(hashed),
		Role:      models.RoleAdmin,
		IsActive:  true,
	}
	if err := s.users.Create(admin); err != nil {
		// Lost a race against another instance seeding the same admin.
		if utils.IsConflictError(err) {
			return nil
		}
		return err
	}
	utils.LogInfo("Bootstrap admin created - email: %s", email)
	return nil
}

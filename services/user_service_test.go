package services

import (
	"testing"

	"github.com/shopstream/user-service/models"
	"github.com/shopstream/user-service/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCustomer(t *testing.T, svc *UserService, email string) *models.User {
	t.Helper()
	user, err := svc.CreateUser(CreateUserInput{
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
	})
	require.NoError(t, err)
	return user
}

func strPtr(s string) *string { return &s }

func TestCreateUser_Defaults(t *testing.T) {
	svc, _ := newTestService()

	user, err := svc.CreateUser(CreateUserInput{
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.True(t, user.IsActive)
	assert.NotZero(t, user.ID)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateUser(CreateUserInput{Email: "jane@example.com", FirstName: "Jane", LastName: "Doe"})
	require.NoError(t, err)

	_, err = svc.CreateUser(CreateUserInput{Email: "jane@example.com", FirstName: "Janet", LastName: "Doe"})
	require.Error(t, err)
	assert.True(t, utils.IsConflictError(err))
}

func TestCreateUser_EmailCaseInsensitive(t *testing.T) {
	svc, _ := newTestService()

	user, err := svc.CreateUser(CreateUserInput{Email: "Jane@Example.COM", FirstName: "Jane", LastName: "Doe"})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)

	_, err = svc.CreateUser(CreateUserInput{Email: "jane@example.com", FirstName: "Janet", LastName: "Doe"})
	require.Error(t, err)
	assert.True(t, utils.IsConflictError(err))
}

func TestCreateUser_InvalidRole(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateUser(CreateUserInput{
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
		Role:      "superuser",
	})
	require.Error(t, err)
	appErr := utils.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 400, appErr.Code)
}

func TestFindByID_IncludesAddresses(t *testing.T) {
	svc, _ := newTestService()
	user := newCustomer(t, svc, "jane@example.com")

	found, err := svc.FindByID(user.ID)
	require.NoError(t, err)
	assert.NotNil(t, found.Addresses, "peer contract requires the address collection")

	_, err = svc.AddAddress(user.ID, AddressInput{Street: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62701"})
	require.NoError(t, err)

	found, err = svc.FindByID(user.ID)
	require.NoError(t, err)
	assert.Len(t, found.Addresses, 1)
}

func TestFindByID_NotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.FindByID(42)
	require.Error(t, err)
	assert.True(t, utils.IsNotFoundError(err))
}

func TestGetProfile_InactiveReadsAsAbsent(t *testing.T) {
	svc, _ := newTestService()
	user := newCustomer(t, svc, "jane@example.com")

	require.NoError(t, svc.SoftDeleteUser(user.ID))

	_, err := svc.GetProfile(user.ID)
	require.Error(t, err)
	assert.True(t, utils.IsNotFoundError(err))

	// The record itself stays in storage.
	found, err := svc.FindByID(user.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)
}

func TestUpdateProfile_AppliesAllowedFieldsOnly(t *testing.T) {
	svc, store := newTestService()
	user, err := svc.CreateUser(CreateUserInput{
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
		Password:  "hashed-secret",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(user.ID, ProfilePatch{
		FirstName: strPtr("Janet"),
		Email:     strPtr("janet@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Janet", updated.FirstName)
	assert.Equal(t, "janet@example.com", updated.Email)

	// Role and credentials survive untouched regardless of what the
	// patch carried on the wire; the patch type cannot express them.
	stored := store.users[user.ID]
	assert.Equal(t, models.RoleCustomer, stored.Role)
	assert.Equal(t, "hashed-secret", stored.Password)
}

func TestUpdateProfile_EmailConflict(t *testing.T) {
	svc, _ := newTestService()
	newCustomer(t, svc, "jane@example.com")
	user := newCustomer(t, svc, "john@example.com")

	_, err := svc.UpdateProfile(user.ID, ProfilePatch{Email: strPtr("jane@example.com")})
	require.Error(t, err)
	assert.True(t, utils.IsConflictError(err))
}

func TestUpdateProfile_SameEmailNoConflict(t *testing.T) {
	svc, _ := newTestService()
	user := newCustomer(t, svc, "jane@example.com")

	_, err := svc.UpdateProfile(user.ID, ProfilePatch{Email: strPtr("Jane@Example.com")})
	require.NoError(t, err)
}

func TestUpdateProfile_NotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.UpdateProfile(42, ProfilePatch{FirstName: strPtr("Jane")})
	require.Error(t, err)
	assert.True(t, utils.IsNotFoundError(err))
}

func TestAdminUpdateUser_RoleChange(t *testing.T) {
	svc, _ := newTestService()
	user := newCustomer(t, svc, "jane@example.com")

	updated, err := svc.AdminUpdateUser(user.ID, AdminPatch{Role: strPtr(models.RoleAdmin)})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)
}

func TestAdminUpdateUser_InvalidRole(t *testing.T) {
	svc, _ := newTestService()
	user := newCustomer(t, svc, "jane@example.com")

	_, err := svc.AdminUpdateUser(user.ID, AdminPatch{Role: strPtr("root")})
	require.Error(t, err)
	appErr := utils.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 400, appErr.Code)
}

func TestUpdateRole(t *testing.T) {
	svc, _ := newTestService()
	user := newCustomer(t, svc, "jane@example.com")

	updated, err := svc.UpdateRole(user.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)

	_, err = svc.UpdateRole(42, models.RoleAdmin)
	assert.True(t, utils.IsNotFoundError(err))

	_, err = svc.UpdateRole(user.ID, "root")
	appErr := utils.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 400, appErr.Code)
}

func TestToggleActiveStatus(t *testing.T) {
	svc, _ := newTestService()
	user := newCustomer(t, svc, "jane@example.com")

	updated, err := svc.ToggleActiveStatus(user.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	updated, err = svc.ToggleActiveStatus(user.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
}

func TestUpdateRefreshToken(t *testing.T) {
	svc, store := newTestService()
	user := newCustomer(t, svc, "jane@example.com")

	require.NoError(t, svc.UpdateRefreshToken(user.ID, strPtr("token-1")))
	assert.Equal(t, "token-1", store.users[user.ID].RefreshToken)

	// nil invalidates the session.
	require.NoError(t, svc.UpdateRefreshToken(user.ID, nil))
	assert.Equal(t, "", store.users[user.ID].RefreshToken)
}

func TestUpdateRefreshToken_AbsentIDIsSilentNoop(t *testing.T) {
	svc, _ := newTestService()

	assert.NoError(t, svc.UpdateRefreshToken(42, strPtr("token-1")))
}

func TestFindTokenByEmail_AbsentIsNil(t *testing.T) {
	svc, _ := newTestService()

	user, err := svc.FindTokenByEmail("nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestFindCredentialByEmail_IncludesPassword(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.CreateUser(CreateUserInput{
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
		Password:  "hashed-secret",
	})
	require.NoError(t, err)

	cred, err := svc.FindCredentialByEmail("jane@example.com")
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, "hashed-secret", cred.Password)

	token, err := svc.FindTokenByEmail("jane@example.com")
	require.NoError(t, err)
	require.NotNil(t, token)
}

func TestRemoveUser_CascadesAddresses(t *testing.T) {
	svc, store := newTestService()
	user := newCustomer(t, svc, "jane@example.com")

	_, err := svc.AddAddress(user.ID, AddressInput{Street: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62701"})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveUser(user.ID))
	assert.Empty(t, store.users)
	assert.Empty(t, store.addrs)

	err = svc.RemoveUser(user.ID)
	assert.True(t, utils.IsNotFoundError(err))
}

func TestListUsers_Pagination(t *testing.T) {
	svc, _ := newTestService()
	for i := 0; i < 25; i++ {
		newCustomer(t, svc, string(rune('a'+i))+"@example.com")
	}

	users, total, err := svc.ListUsers(2, 20, "")
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	assert.Len(t, users, 5)
}

func TestListUsers_OrderedByCreationDescending(t *testing.T) {
	svc, _ := newTestService()
	newCustomer(t, svc, "first@example.com")
	newCustomer(t, svc, "second@example.com")
	newCustomer(t, svc, "third@example.com")

	users, _, err := svc.ListUsers(1, 10, "")
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "third@example.com", users[0].Email)
	assert.Equal(t, "first@example.com", users[2].Email)
}

func TestListUsers_RoleFilter(t *testing.T) {
	svc, _ := newTestService()
	user := newCustomer(t, svc, "jane@example.com")
	newCustomer(t, svc, "john@example.com")
	_, err := svc.UpdateRole(user.ID, models.RoleAdmin)
	require.NoError(t, err)

	admins, total, err := svc.ListUsers(1, 10, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, admins, 1)
	assert.Equal(t, "jane@example.com", admins[0].Email)

	_, _, err = svc.ListUsers(1, 10, "root")
	require.Error(t, err)
}

func TestGetStatistics(t *testing.T) {
	svc, _ := newTestService()
	admin := newCustomer(t, svc, "admin@example.com")
	_, err := svc.UpdateRole(admin.ID, models.RoleAdmin)
	require.NoError(t, err)
	newCustomer(t, svc, "jane@example.com")
	_, err = svc.CreateUser(CreateUserInput{
		Email:        "google@example.com",
		FirstName:    "Gee",
		LastName:     "User",
		GoogleID:     "g-123",
		IsGoogleUser: true,
	})
	require.NoError(t, err)

	stats, err := svc.GetStatistics()
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.AdminCount)
	assert.Equal(t, int64(2), stats.CustomerCount)
	assert.Equal(t, int64(1), stats.GoogleUsers)
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	svc, store := newTestService()

	require.NoError(t, svc.EnsureBootstrapAdmin("admin@example.com", "s3cret"))
	require.Len(t, store.users, 1)
	for _, u := range store.users {
		assert.Equal(t, models.RoleAdmin, u.Role)
		assert.NotEqual(t, "s3cret", u.Password, "password must be stored hashed")
	}

	// Idempotent on restart.
	require.NoError(t, svc.EnsureBootstrapAdmin("admin@example.com", "s3cret"))
	assert.Len(t, store.users, 1)
}

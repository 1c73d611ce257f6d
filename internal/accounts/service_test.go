package accounts

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/csemotors/pkg/auth"
	"github.com/angelmondragon/csemotors/pkg/config"
	"github.com/angelmondragon/csemotors/pkg/db/dbtest"
	"github.com/angelmondragon/csemotors/pkg/db/models"
	"github.com/angelmondragon/csemotors/pkg/enums"
	pkgerrors "github.com/angelmondragon/csemotors/pkg/errors"
	"github.com/angelmondragon/csemotors/pkg/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "cse-motors", ExpirationMinutes: 30, CookieName: "jwt"}

func testHasher() security.Hasher {
	return security.NewHasher(config.PasswordConfig{ArgonMemoryKB: 64, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32})
}

type fakeSessions struct {
	mu      sync.Mutex
	open    map[string]int
	revoked []string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{open: map[string]int{}}
}

func (f *fakeSessions) Open(ctx context.Context, tokenID string, accountID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open[tokenID] = accountID
	return nil
}

func (f *fakeSessions) Revoke(ctx context.Context, tokenID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.open, tokenID)
	f.revoked = append(f.revoked, tokenID)
	return nil
}

func buildService(t *testing.T) (Service, *gorm.DB, *fakeSessions) {
	t.Helper()
	conn := dbtest.Open(t)
	sessions := newFakeSessions()
	svc, err := NewService(ServiceParams{
		Repo:      NewRepository(conn),
		Hasher:    testHasher(),
		Sessions:  sessions,
		JWTConfig: testJWT,
		Now:       func() time.Time { return time.Now() },
	})
	require.NoError(t, err)
	return svc, conn, sessions
}

func register(t *testing.T, svc Service, email string) *models.Account {
	t.Helper()
	account, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Basic",
		LastName:  "Client",
		Email:     email,
		Password:  "I@mABas1cCl!ent",
	})
	require.NoError(t, err)
	return account
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{Hasher: testHasher()})
	assert.Error(t, err)
	_, err = NewService(ServiceParams{Repo: &Repository{}})
	assert.Error(t, err)
}

func TestRegisterCreatesClientWithHashedPassword(t *testing.T) {
	svc, conn, _ := buildService(t)

	account := register(t, svc, " Basic@340.edu ")

	var stored models.Account
	require.NoError(t, conn.First(&stored, account.ID).Error)
	assert.Equal(t, "basic@340.edu", stored.Email)
	assert.Equal(t, enums.AccountTypeClient, stored.Type)
	assert.NotEqual(t, "I@mABas1cCl!ent", stored.PasswordHash)
	ok, err := security.VerifyPassword("I@mABas1cCl!ent", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegisterDuplicateEmailIsConflict(t *testing.T) {
	svc, conn, _ := buildService(t)
	register(t, svc, "dup@340.edu")

	_, err := svc.Register(context.Background(), RegisterInput{FirstName: "Other", LastName: "Person", Email: "DUP@340.edu", Password: "An0ther$ecretPw"})

	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeConflict))
	var count int64
	conn.Model(&models.Account{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestLoginIssuesTokenMatchingStoredAccount(t *testing.T) {
	svc, _, sessions := buildService(t)
	account := register(t, svc, "login@340.edu")

	change, err := svc.Login(context.Background(), "login@340.edu", "I@mABas1cCl!ent")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	change.Apply(rec)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)

	claims, err := auth.ParseIdentityToken(testJWT, cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.AccountID)
	assert.Equal(t, "login@340.edu", claims.Email)
	assert.Equal(t, enums.AccountTypeClient, claims.Role)
	assert.Equal(t, account.ID, sessions.open[claims.ID])
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _, _ := buildService(t)
	register(t, svc, "known@340.edu")

	_, unknownErr := svc.Login(context.Background(), "unknown@340.edu", "whatever")
	_, wrongErr := svc.Login(context.Background(), "known@340.edu", "wrong-password")

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.Equal(t, pkgerrors.CodeOf(unknownErr), pkgerrors.CodeOf(wrongErr))
	assert.Equal(t, pkgerrors.PublicMessage(unknownErr), pkgerrors.PublicMessage(wrongErr))
	assert.Equal(t, InvalidCredentialsMessage, pkgerrors.PublicMessage(wrongErr))
}

func TestUpdateProfileReissuesTokenAndKeepsRole(t *testing.T) {
	svc, conn, sessions := buildService(t)
	account := register(t, svc, "before@340.edu")
	require.NoError(t, conn.Model(&models.Account{}).Where("account_id = ?", account.ID).UpdateColumn("account_type", enums.AccountTypeEmployee).Error)

	ctx := auth.WithTokenID(context.Background(), "old-token")
	sessions.open["old-token"] = account.ID

	change, err := svc.UpdateProfile(ctx, account.ID, ProfileInput{FirstName: "Happy", LastName: "Employee", Email: "after@340.edu"})
	require.NoError(t, err)

	identity := change.Identity()
	assert.Equal(t, "Happy", identity.FirstName)
	assert.Equal(t, "after@340.edu", identity.Email)
	assert.Equal(t, enums.AccountTypeEmployee, identity.Role, "profile updates never change the role")
	assert.Contains(t, sessions.revoked, "old-token")
	assert.Contains(t, sessions.open, change.TokenID())
}

func TestUpdateProfileEmailConflict(t *testing.T) {
	svc, _, _ := buildService(t)
	first := register(t, svc, "first@340.edu")
	register(t, svc, "second@340.edu")

	_, err := svc.UpdateProfile(context.Background(), first.ID, ProfileInput{FirstName: "A", LastName: "B", Email: "second@340.edu"})

	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeConflict))
}

func TestChangePasswordReplacesHash(t *testing.T) {
	svc, _, _ := buildService(t)
	account := register(t, svc, "pw@340.edu")

	require.NoError(t, svc.ChangePassword(context.Background(), account.ID, "N3w&ImprovedPass"))

	_, err := svc.Login(context.Background(), "pw@340.edu", "I@mABas1cCl!ent")
	assert.Error(t, err)
	_, err = svc.Login(context.Background(), "pw@340.edu", "N3w&ImprovedPass")
	assert.NoError(t, err)

	err = svc.ChangePassword(context.Background(), 9999, "N3w&ImprovedPass")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}

func TestEmailLookups(t *testing.T) {
	svc, _, _ := buildService(t)
	account := register(t, svc, "lookup@340.edu")
	ctx := context.Background()

	exists, err := svc.EmailExists(ctx, "LOOKUP@340.edu")
	require.NoError(t, err)
	assert.True(t, exists)

	taken, err := svc.EmailTakenByOther(ctx, "lookup@340.edu", account.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = svc.EmailTakenByOther(ctx, "lookup@340.edu", account.ID+1)
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _, sessions := buildService(t)
	require.NoError(t, svc.Logout(context.Background(), "tok"))
	assert.Equal(t, []string{"tok"}, sessions.revoked)
	require.NoError(t, svc.Logout(context.Background(), ""))
	assert.Len(t, sessions.revoked, 1)
}

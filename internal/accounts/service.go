package accounts

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/csemotors/pkg/auth"
	"github.com/angelmondragon/csemotors/pkg/config"
	"github.com/angelmondragon/csemotors/pkg/db"
	"github.com/angelmondragon/csemotors/pkg/db/models"
	"github.com/angelmondragon/csemotors/pkg/enums"
	pkgerrors "github.com/angelmondragon/csemotors/pkg/errors"
)

// InvalidCredentialsMessage is returned for both an unknown email and a wrong password.
const InvalidCredentialsMessage = "Please check your credentials and try again."

// Service defines the account behavior needed by the account controller and form rules.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.Account, error)
	Login(ctx context.Context, email, password string) (*IdentityChange, error)
	Logout(ctx context.Context, tokenID string) error
	UpdateProfile(ctx context.Context, accountID int, input ProfileInput) (*IdentityChange, error)
	ChangePassword(ctx context.Context, accountID int, password string) error
	Get(ctx context.Context, accountID int) (*models.Account, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	EmailTakenByOther(ctx context.Context, email string, accountID int) (bool, error)
}

type accountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id int) (*models.Account, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	EmailTakenByOther(ctx context.Context, email string, accountID int) (bool, error)
	UpdateProfile(ctx context.Context, id int, first, last, email string) error
	UpdatePassword(ctx context.Context, id int, hash string) error
}

type passwordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

type sessionManager interface {
	Open(ctx context.Context, tokenID string, accountID int) error
	Revoke(ctx context.Context, tokenID string) error
}

// ServiceParams bundles the dependencies required to build an account service.
// Sessions is optional; without it tokens stay valid until they expire.
type ServiceParams struct {
	Repo      accountRepository
	Hasher    passwordHasher
	Sessions  sessionManager
	JWTConfig config.JWTConfig
	Now       func() time.Time
}

type service struct {
	repo     accountRepository
	hasher   passwordHasher
	sessions sessionManager
	jwtCfg   config.JWTConfig
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewService constructs an account service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("account repository is required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		hasher:   params.Hasher,
		sessions: params.Sessions,
		jwtCfg:   params.JWTConfig,
		now:      now,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.Account, error) {
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	account := &models.Account{
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        normalizeEmail(input.Email),
		PasswordHash: hash,
		Type:         enums.AccountTypeClient,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "Email exists. Please log in or use a different email.")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create account")
	}
	return account, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*IdentityChange, error) {
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if db.IsNotFound(err) {
			s.burnVerify(password)
			return nil, pkgerrors.New(pkgerrors.CodeValidation, InvalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find account")
	}

	ok, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, InvalidCredentialsMessage)
	}
	return s.issue(ctx, account)
}

// burnVerify spends roughly the time of a real verification so unknown emails are not
// distinguishable from wrong passwords by latency.
func (s *service) burnVerify(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("not-a-real-password")
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}

func (s *service) Logout(ctx context.Context, tokenID string) error {
	if s.sessions == nil || tokenID == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, tokenID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

// UpdateProfile changes names and email and re-issues the identity token. The token that
// authenticated ctx, if any, is revoked.
func (s *service) UpdateProfile(ctx context.Context, accountID int, input ProfileInput) (*IdentityChange, error) {
	err := s.repo.UpdateProfile(ctx, accountID,
		strings.TrimSpace(input.FirstName),
		strings.TrimSpace(input.LastName),
		normalizeEmail(input.Email),
	)
	if err != nil {
		switch {
		case db.IsNotFound(err):
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "account not found")
		case db.IsUniqueViolation(err, ""):
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "Email already exists. Please use a different email.")
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update account")
		}
	}

	account, err := s.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	change, err := s.issue(ctx, account)
	if err != nil {
		return nil, err
	}
	if old := auth.TokenIDFromContext(ctx); old != "" {
		if err := s.Logout(ctx, old); err != nil {
			return nil, err
		}
	}
	return change, nil
}

func (s *service) ChangePassword(ctx context.Context, accountID int, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.repo.UpdatePassword(ctx, accountID, hash); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "account not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update password")
	}
	return nil
}

func (s *service) Get(ctx context.Context, accountID int) (*models.Account, error) {
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find account")
	}
	return account, nil
}

func (s *service) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.repo.EmailExists(ctx, email)
}

func (s *service) EmailTakenByOther(ctx context.Context, email string, accountID int) (bool, error) {
	return s.repo.EmailTakenByOther(ctx, email, accountID)
}

func (s *service) issue(ctx context.Context, account *models.Account) (*IdentityChange, error) {
	issued, err := auth.IssueIdentityToken(s.jwtCfg, s.now(), identityOf(account))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint identity token")
	}
	if s.sessions != nil {
		if err := s.sessions.Open(ctx, issued.ID, account.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open session")
		}
	}
	return &IdentityChange{issued: issued, cfg: s.jwtCfg}, nil
}

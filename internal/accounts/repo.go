package accounts

import (
	"context"
	"strings"

	"github.com/angelmondragon/csemotors/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes account persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an accounts repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts account and fills its id.
func (r *Repository) Create(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// FindByEmail retrieves the account registered under email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("account_email = ?", normalizeEmail(email)).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByID loads an account by id.
func (r *Repository) FindByID(ctx context.Context, id int) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, "account_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// EmailExists reports whether any account uses email.
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("account_email = ?", normalizeEmail(email)).
		Count(&count).Error
	return count > 0, err
}

// EmailTakenByOther reports whether an account other than accountID uses email.
func (r *Repository) EmailTakenByOther(ctx context.Context, email string, accountID int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("account_email = ? AND account_id <> ?", normalizeEmail(email), accountID).
		Count(&count).Error
	return count > 0, err
}

// UpdateProfile overwrites names and email. The account type column is never touched.
func (r *Repository) UpdateProfile(ctx context.Context, id int, first, last, email string) error {
	res := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("account_id = ?", id).
		Updates(map[string]any{
			"account_firstname": first,
			"account_lastname":  last,
			"account_email":     normalizeEmail(email),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdatePassword replaces the stored hash.
func (r *Repository) UpdatePassword(ctx context.Context, id int, hash string) error {
	res := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("account_id = ?", id).
		UpdateColumn("account_password", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package reviews

import (
	"context"

	"github.com/angelmondragon/csemotors/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes review persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a reviews repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type ratingSummary struct {
	AvgRating   float64
	ReviewCount int
}

// VehicleExists reports whether the inventory row exists.
func (r *Repository) VehicleExists(ctx context.Context, invID int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Vehicle{}).Where("inv_id = ?", invID).Count(&count).Error
	return count > 0, err
}

// Exists reports whether accountID already reviewed invID.
func (r *Repository) Exists(ctx context.Context, accountID, invID int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("inv_id = ? AND account_id = ?", invID, accountID).
		Count(&count).Error
	return count > 0, err
}

// Create inserts review without touching its associations.
func (r *Repository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(review).Error
}

// ForVehicle lists a vehicle's reviews with their authors, newest first.
func (r *Repository) ForVehicle(ctx context.Context, invID int) ([]VehicleReview, error) {
	var out []VehicleReview
	err := r.db.WithContext(ctx).
		Table("reviews AS r").
		Select(`r.review_id AS id, r.rating AS rating, r.review_text AS text, r.review_date AS date,
			a.account_firstname AS author_first, a.account_lastname AS author_last`).
		Joins("INNER JOIN account a ON a.account_id = r.account_id").
		Where("r.inv_id = ?", invID).
		Order("r.review_date DESC, r.review_id DESC").
		Scan(&out).Error
	return out, err
}

// Summary returns the average rating (0 without reviews) and the review count.
func (r *Repository) Summary(ctx context.Context, invID int) (float64, int, error) {
	var row ratingSummary
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg_rating, COUNT(*) AS review_count").
		Where("inv_id = ?", invID).
		Scan(&row).Error
	return row.AvgRating, row.ReviewCount, err
}

// ForAccount lists an account's reviews with the reviewed vehicle, newest first.
func (r *Repository) ForAccount(ctx context.Context, accountID int) ([]AccountReview, error) {
	var out []AccountReview
	err := r.accountReviews(ctx).
		Where("r.account_id = ?", accountID).
		Order("r.review_date DESC, r.review_id DESC").
		Scan(&out).Error
	return out, err
}

// FindOwned loads one of accountID's reviews. Reviews of other accounts are not found.
func (r *Repository) FindOwned(ctx context.Context, accountID, reviewID int) (*AccountReview, error) {
	var out []AccountReview
	err := r.accountReviews(ctx).
		Where("r.account_id = ? AND r.review_id = ?", accountID, reviewID).
		Limit(1).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &out[0], nil
}

func (r *Repository) accountReviews(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("reviews AS r").
		Select(`r.review_id AS id, r.inv_id AS vehicle_id, r.rating AS rating, r.review_text AS text,
			r.review_date AS date, i.inv_year AS vehicle_year, i.inv_make AS vehicle_make, i.inv_model AS vehicle_model`).
		Joins("INNER JOIN inventory i ON i.inv_id = r.inv_id")
}

// UpdateOwned changes rating and text of one of accountID's reviews.
func (r *Repository) UpdateOwned(ctx context.Context, accountID, reviewID, rating int, text string) error {
	res := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("review_id = ? AND account_id = ?", reviewID, accountID).
		Updates(map[string]any{"rating": rating, "review_text": text})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteOwned removes one of accountID's reviews.
func (r *Repository) DeleteOwned(ctx context.Context, accountID, reviewID int) error {
	res := r.db.WithContext(ctx).
		Where("review_id = ? AND account_id = ?", reviewID, accountID).
		Delete(&models.Review{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

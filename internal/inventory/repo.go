package inventory

import (
	"context"

	"github.com/angelmondragon/csemotors/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes classification and inventory persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an inventory repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListClassifications returns every classification ordered by name.
func (r *Repository) ListClassifications(ctx context.Context) ([]models.Classification, error) {
	var out []models.Classification
	err := r.db.WithContext(ctx).Order("classification_name ASC").Find(&out).Error
	return out, err
}

// FindClassification loads one classification.
func (r *Repository) FindClassification(ctx context.Context, id int) (*models.Classification, error) {
	var c models.Classification
	if err := r.db.WithContext(ctx).First(&c, "classification_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateClassification inserts c and fills its id.
func (r *Repository) CreateClassification(ctx context.Context, c *models.Classification) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// ListVehicles returns the vehicles of one classification in insertion order.
func (r *Repository) ListVehicles(ctx context.Context, classificationID int) ([]models.Vehicle, error) {
	var out []models.Vehicle
	err := r.db.WithContext(ctx).
		Preload("Classification").
		Where("classification_id = ?", classificationID).
		Order("inv_id ASC").
		Find(&out).Error
	return out, err
}

// FindVehicle loads one vehicle with its classification.
func (r *Repository) FindVehicle(ctx context.Context, id int) (*models.Vehicle, error) {
	var v models.Vehicle
	if err := r.db.WithContext(ctx).Preload("Classification").First(&v, "inv_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// CreateVehicle inserts v without touching its associations.
func (r *Repository) CreateVehicle(ctx context.Context, v *models.Vehicle) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(v).Error
}

// UpdateVehicle overwrites every editable column of v.
func (r *Repository) UpdateVehicle(ctx context.Context, v *models.Vehicle) error {
	res := r.db.WithContext(ctx).Model(&models.Vehicle{}).
		Where("inv_id = ?", v.ID).
		Updates(map[string]any{
			"classification_id": v.ClassificationID,
			"inv_make":          v.Make,
			"inv_model":         v.Model,
			"inv_year":          v.Year,
			"inv_description":   v.Description,
			"inv_image":         v.Image,
			"inv_thumbnail":     v.Thumbnail,
			"inv_price":         v.Price,
			"inv_miles":         v.Miles,
			"inv_color":         v.Color,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteVehicle hard deletes one vehicle. Its reviews cascade.
func (r *Repository) DeleteVehicle(ctx context.Context, id int) error {
	res := r.db.WithContext(ctx).Delete(&models.Vehicle{}, "inv_id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/csemotors/pkg/db"
	"github.com/angelmondragon/csemotors/pkg/db/models"
	pkgerrors "github.com/angelmondragon/csemotors/pkg/errors"
	"github.com/shopspring/decimal"
)

// VehicleInput is a validated add or edit inventory form.
type VehicleInput struct {
	ClassificationID int
	Make             string
	Model            string
	Year             int
	Description      string
	Image            string
	Thumbnail        string
	Price            decimal.Decimal
	Miles            int
	Color            string
}

// Listing is one classification with its vehicles.
type Listing struct {
	Classification models.Classification
	Vehicles       []models.Vehicle
}

// Service defines the inventory behavior needed by the controllers and the view layer.
type Service interface {
	ListClassifications(ctx context.Context) ([]models.Classification, error)
	AddClassification(ctx context.Context, name string) (*models.Classification, error)
	ListByClassification(ctx context.Context, classificationID int) (*Listing, error)
	Get(ctx context.Context, invID int) (*models.Vehicle, error)
	Add(ctx context.Context, input VehicleInput) (*models.Vehicle, error)
	Update(ctx context.Context, invID int, input VehicleInput) (*models.Vehicle, error)
	Delete(ctx context.Context, invID int) error
}

type inventoryRepository interface {
	ListClassifications(ctx context.Context) ([]models.Classification, error)
	FindClassification(ctx context.Context, id int) (*models.Classification, error)
	CreateClassification(ctx context.Context, c *models.Classification) error
	ListVehicles(ctx context.Context, classificationID int) ([]models.Vehicle, error)
	FindVehicle(ctx context.Context, id int) (*models.Vehicle, error)
	CreateVehicle(ctx context.Context, v *models.Vehicle) error
	UpdateVehicle(ctx context.Context, v *models.Vehicle) error
	DeleteVehicle(ctx context.Context, id int) error
}

type service struct {
	repo inventoryRepository
}

// NewService constructs the inventory service.
func NewService(repo inventoryRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListClassifications(ctx context.Context) ([]models.Classification, error) {
	out, err := s.repo.ListClassifications(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list classifications")
	}
	return out, nil
}

func (s *service) AddClassification(ctx context.Context, name string) (*models.Classification, error) {
	c := &models.Classification{Name: strings.TrimSpace(name)}
	if err := s.repo.CreateClassification(ctx, c); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "That classification already exists.")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create classification")
	}
	return c, nil
}

func (s *service) ListByClassification(ctx context.Context, classificationID int) (*Listing, error) {
	c, err := s.repo.FindClassification(ctx, classificationID)
	if err != nil {
		return nil, notFoundOr(err, "classification not found", "find classification")
	}
	vehicles, err := s.repo.ListVehicles(ctx, classificationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicles")
	}
	return &Listing{Classification: *c, Vehicles: vehicles}, nil
}

func (s *service) Get(ctx context.Context, invID int) (*models.Vehicle, error) {
	v, err := s.repo.FindVehicle(ctx, invID)
	if err != nil {
		return nil, notFoundOr(err, "vehicle not found", "find vehicle")
	}
	return v, nil
}

func (s *service) Add(ctx context.Context, input VehicleInput) (*models.Vehicle, error) {
	v := input.toModel()
	if err := s.repo.CreateVehicle(ctx, v); err != nil {
		return nil, writeError(err, "create vehicle")
	}
	return v, nil
}

func (s *service) Update(ctx context.Context, invID int, input VehicleInput) (*models.Vehicle, error) {
	v := input.toModel()
	v.ID = invID
	if err := s.repo.UpdateVehicle(ctx, v); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "vehicle not found")
		}
		return nil, writeError(err, "update vehicle")
	}
	return v, nil
}

func (s *service) Delete(ctx context.Context, invID int) error {
	if err := s.repo.DeleteVehicle(ctx, invID); err != nil {
		return notFoundOr(err, "vehicle not found", "delete vehicle")
	}
	return nil
}

func (in VehicleInput) toModel() *models.Vehicle {
	return &models.Vehicle{
		ClassificationID: in.ClassificationID,
		Make:             strings.TrimSpace(in.Make),
		Model:            strings.TrimSpace(in.Model),
		Year:             in.Year,
		Description:      strings.TrimSpace(in.Description),
		Image:            strings.TrimSpace(in.Image),
		Thumbnail:        strings.TrimSpace(in.Thumbnail),
		Price:            in.Price,
		Miles:            in.Miles,
		Color:            strings.TrimSpace(in.Color),
	}
}

func writeError(err error, op string) error {
	if db.IsForeignKeyViolation(err) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Please select a valid classification.")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

func notFoundOr(err error, notFound, op string) error {
	if db.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, notFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

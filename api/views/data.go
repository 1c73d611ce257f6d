package views

import (
	"github.com/angelmondragon/csemotors/internal/reviews"
	"github.com/angelmondragon/csemotors/pkg/db/models"
)

// VehicleDetail is the data of the vehicle detail page.
type VehicleDetail struct {
	Vehicle *models.Vehicle
	Reviews *reviews.VehicleReviews
}

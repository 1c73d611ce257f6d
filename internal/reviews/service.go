package reviews

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/csemotors/pkg/db"
	"github.com/angelmondragon/csemotors/pkg/db/models"
	pkgerrors "github.com/angelmondragon/csemotors/pkg/errors"
)

// User-facing outcomes of Submit.
const (
	VehicleNotFoundMessage = "Vehicle not found."
	AlreadyReviewedMessage = "You have already reviewed this vehicle."
	ReviewNotFoundMessage  = "Review not found."
)

// Service defines the review behavior needed by the review controller and detail page.
type Service interface {
	Submit(ctx context.Context, accountID, invID, rating int, text string) (*models.Review, error)
	ForVehicle(ctx context.Context, invID int) (*VehicleReviews, error)
	ForAccount(ctx context.Context, accountID int) ([]AccountReview, error)
	FindOwned(ctx context.Context, accountID, reviewID int) (*AccountReview, error)
	Update(ctx context.Context, accountID, reviewID, rating int, text string) error
	Delete(ctx context.Context, accountID, reviewID int) error
}

type reviewRepository interface {
	VehicleExists(ctx context.Context, invID int) (bool, error)
	Exists(ctx context.Context, accountID, invID int) (bool, error)
	Create(ctx context.Context, review *models.Review) error
	ForVehicle(ctx context.Context, invID int) ([]VehicleReview, error)
	Summary(ctx context.Context, invID int) (float64, int, error)
	ForAccount(ctx context.Context, accountID int) ([]AccountReview, error)
	FindOwned(ctx context.Context, accountID, reviewID int) (*AccountReview, error)
	UpdateOwned(ctx context.Context, accountID, reviewID, rating int, text string) error
	DeleteOwned(ctx context.Context, accountID, reviewID int) error
}

type service struct {
	repo reviewRepository
	now  func() time.Time
}

// NewService constructs the review service. now defaults to time.Now.
func NewService(repo reviewRepository, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("review repository is required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, now: now}, nil
}

// Submit stores a new review. The pre-check gives the usual duplicate its friendly notice;
// the unique index settles concurrent submissions the same way.
func (s *service) Submit(ctx context.Context, accountID, invID, rating int, text string) (*models.Review, error) {
	exists, err := s.repo.VehicleExists(ctx, invID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find vehicle")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, VehicleNotFoundMessage)
	}

	reviewed, err := s.repo.Exists(ctx, accountID, invID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing review")
	}
	if reviewed {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, AlreadyReviewedMessage)
	}

	review := &models.Review{
		VehicleID: invID,
		AccountID: accountID,
		Rating:    rating,
		Text:      strings.TrimSpace(text),
		Date:      s.now().UTC(),
	}
	if err := s.repo.Create(ctx, review); err != nil {
		switch {
		case db.IsUniqueViolation(err, ""):
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, AlreadyReviewedMessage)
		case db.IsForeignKeyViolation(err):
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, VehicleNotFoundMessage)
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
		}
	}
	return review, nil
}

func (s *service) ForVehicle(ctx context.Context, invID int) (*VehicleReviews, error) {
	list, err := s.repo.ForVehicle(ctx, invID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicle reviews")
	}
	avg, count, err := s.repo.Summary(ctx, invID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summarize vehicle reviews")
	}
	return &VehicleReviews{Reviews: list, Average: avg, Count: count}, nil
}

func (s *service) ForAccount(ctx context.Context, accountID int) ([]AccountReview, error) {
	list, err := s.repo.ForAccount(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list account reviews")
	}
	return list, nil
}

func (s *service) FindOwned(ctx context.Context, accountID, reviewID int) (*AccountReview, error) {
	review, err := s.repo.FindOwned(ctx, accountID, reviewID)
	if err != nil {
		return nil, ownedError(err, "find review")
	}
	return review, nil
}

func (s *service) Update(ctx context.Context, accountID, reviewID, rating int, text string) error {
	if err := s.repo.UpdateOwned(ctx, accountID, reviewID, rating, strings.TrimSpace(text)); err != nil {
		return ownedError(err, "update review")
	}
	return nil
}

func (s *service) Delete(ctx context.Context, accountID, reviewID int) error {
	if err := s.repo.DeleteOwned(ctx, accountID, reviewID); err != nil {
		return ownedError(err, "delete review")
	}
	return nil
}

func ownedError(err error, op string) error {
	if db.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, ReviewNotFoundMessage)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

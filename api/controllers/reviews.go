package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/angelmondragon/csemotors/api/validators"
	"github.com/angelmondragon/csemotors/api/views"
	"github.com/angelmondragon/csemotors/internal/reviews"
	"github.com/angelmondragon/csemotors/pkg/auth"
	pkgerrors "github.com/angelmondragon/csemotors/pkg/errors"
	"github.com/angelmondragon/csemotors/pkg/logger"
)

// Review flash texts.
const (
	ReviewThanksNotice  = "Thank you for your review!"
	ReviewSubmitFailed  = "Sorry, there was an error submitting your review."
	ReviewUpdatedNotice = "Review updated successfully!"
	ReviewUpdateFailed  = "Sorry, there was an error updating your review."
	ReviewDeletedNotice = "Review deleted successfully."
	ReviewDeleteFailed  = "Sorry, there was an error deleting your review."
	ReviewsLoadFailed   = "Sorry, there was an error loading your reviews."
)

const (
	myReviewsTarget      = "/review/"
	editReviewTitle      = "Edit Review"
	reviewFieldInvID     = "inv_id"
	reviewFieldReviewID  = "review_id"
	reviewPathParam      = "reviewId"
	vehicleDetailPattern = "/inv/detail/%d"
)

// SubmitReviewInvalid flashes each field message and returns to the vehicle page.
func SubmitReviewInvalid() validators.InvalidFunc {
	return func(w http.ResponseWriter, r *http.Request, result *validators.Result) {
		ctx := r.Context()
		for _, msg := range result.Messages() {
			flashError(ctx, msg)
		}
		invID, ok := formID(r, reviewFieldInvID)
		if !ok {
			seeOther(w, r, "/")
			return
		}
		seeOther(w, r, fmt.Sprintf(vehicleDetailPattern, invID))
	}
}

// SubmitReview stores the caller's review of the vehicle named by inv_id.
func SubmitReview(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		form := validators.FormFromContext(ctx)
		identity := auth.IdentityFromContext(ctx)

		invID, ok := formID(r, reviewFieldInvID)
		if !ok {
			notice(ctx, reviews.VehicleNotFoundMessage)
			seeOther(w, r, "/")
			return
		}
		detail := fmt.Sprintf(vehicleDetailPattern, invID)

		_, err := svc.Submit(ctx, identity.AccountID, invID, form.Int("rating"), form.Value("review_text"))
		switch {
		case err == nil:
			notice(ctx, ReviewThanksNotice)
			seeOther(w, r, detail)
		case pkgerrors.Is(err, pkgerrors.CodeNotFound):
			notice(ctx, reviews.VehicleNotFoundMessage)
			seeOther(w, r, "/")
		case pkgerrors.Is(err, pkgerrors.CodeConflict):
			notice(ctx, reviews.AlreadyReviewedMessage)
			seeOther(w, r, detail)
		default:
			logFailure(ctx, logg, "review.submit_failed", err)
			flashError(ctx, ReviewSubmitFailed)
			seeOther(w, r, detail)
		}
	}
}

// MyReviews lists the caller's reviews.
func MyReviews(svc reviews.Service, view pageRenderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		list, err := svc.ForAccount(ctx, auth.IdentityFromContext(ctx).AccountID)
		if err != nil {
			logFailure(ctx, logg, "review.list_failed", err)
			flashError(ctx, ReviewsLoadFailed)
			seeOther(w, r, accountManagementTarget)
			return
		}
		view.Render(w, r, http.StatusOK, views.PageMyReviews, views.Page{Title: "My Reviews", Data: list})
	}
}

// EditReviewView renders the edit form of one of the caller's reviews.
func EditReviewView(svc reviews.Service, view pageRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := validators.PathID(r, reviewPathParam)
		if err != nil {
			reviewMissing(w, r)
			return
		}
		review, err := svc.FindOwned(ctx, auth.IdentityFromContext(ctx).AccountID, id)
		if err != nil {
			if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
				reviewMissing(w, r)
				return
			}
			view.RenderError(w, r, err)
			return
		}
		view.Render(w, r, http.StatusOK, views.PageEditReview, views.Page{
			Title: editReviewTitle,
			Values: map[string]string{
				"rating":      strconv.Itoa(review.Rating),
				"review_text": review.Text,
			},
			Data: review,
		})
	}
}

// EditReviewInvalid re-renders the edit form with the submitted values.
func EditReviewInvalid(svc reviews.Service, view pageRenderer) validators.InvalidFunc {
	return func(w http.ResponseWriter, r *http.Request, result *validators.Result) {
		ctx := r.Context()
		id, ok := formID(r, reviewFieldReviewID)
		if !ok {
			reviewMissing(w, r)
			return
		}
		review, err := svc.FindOwned(ctx, auth.IdentityFromContext(ctx).AccountID, id)
		if err != nil {
			if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
				reviewMissing(w, r)
				return
			}
			view.RenderError(w, r, err)
			return
		}
		view.Render(w, r, http.StatusBadRequest, views.PageEditReview, views.FormPage(editReviewTitle, result, review))
	}
}

// UpdateReview saves the rating and text of one of the caller's reviews.
func UpdateReview(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		form := validators.FormFromContext(ctx)

		id, ok := formID(r, reviewFieldReviewID)
		if !ok {
			reviewMissing(w, r)
			return
		}
		err := svc.Update(ctx, auth.IdentityFromContext(ctx).AccountID, id, form.Int("rating"), form.Value("review_text"))
		switch {
		case err == nil:
			notice(ctx, ReviewUpdatedNotice)
			seeOther(w, r, myReviewsTarget)
		case pkgerrors.Is(err, pkgerrors.CodeNotFound):
			reviewMissing(w, r)
		default:
			logFailure(ctx, logg, "review.update_failed", err)
			flashError(ctx, ReviewUpdateFailed)
			seeOther(w, r, fmt.Sprintf("/review/edit/%d", id))
		}
	}
}

// DeleteReview removes one of the caller's reviews.
func DeleteReview(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := validators.PathID(r, reviewPathParam)
		if err != nil {
			reviewMissing(w, r)
			return
		}
		err = svc.Delete(ctx, auth.IdentityFromContext(ctx).AccountID, id)
		switch {
		case err == nil:
			notice(ctx, ReviewDeletedNotice)
		case pkgerrors.Is(err, pkgerrors.CodeNotFound):
			notice(ctx, reviews.ReviewNotFoundMessage)
		default:
			logFailure(ctx, logg, "review.delete_failed", err)
			flashError(ctx, ReviewDeleteFailed)
		}
		seeOther(w, r, myReviewsTarget)
	}
}

func reviewMissing(w http.ResponseWriter, r *http.Request) {
	notice(r.Context(), reviews.ReviewNotFoundMessage)
	seeOther(w, r, myReviewsTarget)
}

// formID reads a positive integer from an already parsed form.
func formID(r *http.Request, field string) (int, bool) {
	id, err := strconv.Atoi(r.PostForm.Get(field))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

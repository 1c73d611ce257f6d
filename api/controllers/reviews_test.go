package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/csemotors/api/validators"
	"github.com/angelmondragon/csemotors/api/views"
	"github.com/angelmondragon/csemotors/internal/reviews"
	"github.com/angelmondragon/csemotors/pkg/db/models"
	pkgerrors "github.com/angelmondragon/csemotors/pkg/errors"
)

type stubReviews struct {
	reviews.Service
	submitErr error
	deleteErr error
	owned     map[int]*reviews.AccountReview
	submitted []int
}

func (s *stubReviews) Submit(_ context.Context, _, invID, _ int, _ string) (*models.Review, error) {
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	s.submitted = append(s.submitted, invID)
	return &models.Review{}, nil
}

func (s *stubReviews) FindOwned(_ context.Context, _, reviewID int) (*reviews.AccountReview, error) {
	if r, ok := s.owned[reviewID]; ok {
		return r, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, reviews.ReviewNotFoundMessage)
}

func (s *stubReviews) Delete(context.Context, int, int) error {
	return s.deleteErr
}

func reviewForm(invID string) url.Values {
	return url.Values{"inv_id": {invID}, "rating": {"4"}, "review_text": {"Comfortable and quiet."}}
}

func TestSubmitReviewOutcomes(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		location string
		flash    string
	}{
		{"accepted", nil, "/inv/detail/12", ReviewThanksNotice},
		{"duplicate", pkgerrors.New(pkgerrors.CodeConflict, reviews.AlreadyReviewedMessage), "/inv/detail/12", reviews.AlreadyReviewedMessage},
		{"unknown vehicle", pkgerrors.New(pkgerrors.CodeNotFound, reviews.VehicleNotFoundMessage), "/", reviews.VehicleNotFoundMessage},
		{"store failure", errors.New("db down"), "/inv/detail/12", ReviewSubmitFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubReviews{submitErr: tc.err}
			rules := validators.ReviewRules()
			store := &memoryFlash{}
			req := formRequest(t, "/review/add", reviewForm("12"), clientIdentity, store, &rules)
			rec := httptest.NewRecorder()

			SubmitReview(svc, nil).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tc.location, rec.Header().Get("Location"))
			assert.Equal(t, []string{tc.flash}, store.texts())
		})
	}
}

func TestSubmitReviewInvalidFlashesFieldErrors(t *testing.T) {
	rules := validators.ReviewRules()
	store := &memoryFlash{}
	form := url.Values{"inv_id": {"12"}, "rating": {"9"}, "review_text": {"short"}}
	req := formRequest(t, "/review/add", form, clientIdentity, store, nil)
	result, err := rules.Validate(req.Context(), req.PostForm)
	require.NoError(t, err)
	rec := httptest.NewRecorder()

	SubmitReviewInvalid()(rec, req, result)

	assert.Equal(t, "/inv/detail/12", rec.Header().Get("Location"))
	assert.Equal(t, []string{
		"Rating must be between 1 and 5 stars.",
		"Review must be at least 10 characters long.",
	}, store.texts())
}

func TestSubmitReviewInvalidWithoutVehicleGoesHome(t *testing.T) {
	rules := validators.ReviewRules()
	req := formRequest(t, "/review/add", url.Values{"inv_id": {"x"}}, clientIdentity, &memoryFlash{}, nil)
	result, err := rules.Validate(req.Context(), req.PostForm)
	require.NoError(t, err)
	rec := httptest.NewRecorder()

	SubmitReviewInvalid()(rec, req, result)

	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestEditReviewViewOwnership(t *testing.T) {
	svc := &stubReviews{owned: map[int]*reviews.AccountReview{
		5: {ID: 5, Rating: 3, Text: "Fine for the price."},
	}}

	t.Run("own review", func(t *testing.T) {
		view := &recordingView{}
		req := withParam(formRequest(t, "/review/edit/5", url.Values{}, clientIdentity, &memoryFlash{}, nil), "reviewId", "5")

		EditReviewView(svc, view).ServeHTTP(httptest.NewRecorder(), req)

		call := view.last(t)
		assert.Equal(t, views.PageEditReview, call.name)
		assert.Equal(t, "3", call.page.Values["rating"])
		assert.Equal(t, "Fine for the price.", call.page.Values["review_text"])
	})

	t.Run("someone else's review", func(t *testing.T) {
		store := &memoryFlash{}
		req := withParam(formRequest(t, "/review/edit/6", url.Values{}, clientIdentity, store, nil), "reviewId", "6")
		rec := httptest.NewRecorder()

		EditReviewView(svc, &recordingView{}).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/review/", rec.Header().Get("Location"))
		assert.Equal(t, []string{reviews.ReviewNotFoundMessage}, store.texts())
	})
}

func TestDeleteReviewFlashes(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		flash string
	}{
		{"deleted", nil, ReviewDeletedNotice},
		{"not owned", pkgerrors.New(pkgerrors.CodeNotFound, reviews.ReviewNotFoundMessage), reviews.ReviewNotFoundMessage},
		{"store failure", errors.New("db down"), ReviewDeleteFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &memoryFlash{}
			req := withParam(formRequest(t, "/review/delete/5", url.Values{}, clientIdentity, store, nil), "reviewId", "5")
			rec := httptest.NewRecorder()

			DeleteReview(&stubReviews{deleteErr: tc.err}, nil).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "/review/", rec.Header().Get("Location"))
			assert.Equal(t, []string{tc.flash}, store.texts())
		})
	}
}

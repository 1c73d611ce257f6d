package reviews

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// VehicleReview is a review as shown on a vehicle's detail page.
type VehicleReview struct {
	ID          int
	Rating      int
	Text        string
	Date        time.Time
	AuthorFirst string
	AuthorLast  string
}

// Author renders the reviewer as first name and last initial, e.g. "Basic C.".
func (r VehicleReview) Author() string {
	last := strings.TrimSpace(r.AuthorLast)
	if last == "" {
		return r.AuthorFirst
	}
	initial, _ := firstRune(last)
	return fmt.Sprintf("%s %s.", r.AuthorFirst, initial)
}

// VehicleReviews is the review section of one vehicle.
type VehicleReviews struct {
	Reviews []VehicleReview
	Average float64
	Count   int
}

// AverageText formats the average with one decimal.
func (v VehicleReviews) AverageText() string {
	return fmt.Sprintf("%.1f", v.Average)
}

// RoundedAverage is the star count shown next to the average.
func (v VehicleReviews) RoundedAverage() int {
	return int(math.Round(v.Average))
}

// AccountReview is a review as listed on the author's "My Reviews" page.
type AccountReview struct {
	ID           int
	VehicleID    int
	Rating       int
	Text         string
	Date         time.Time
	VehicleYear  int
	VehicleMake  string
	VehicleModel string
}

// VehicleName is "<year> <make> <model>".
func (r AccountReview) VehicleName() string {
	return fmt.Sprintf("%d %s %s", r.VehicleYear, r.VehicleMake, r.VehicleModel)
}

func firstRune(s string) (string, bool) {
	for _, r := range s {
		return string(r), true
	}
	return "", false
}

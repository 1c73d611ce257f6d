package controllers

import (
	"net/http"

	"github.com/angelmondragon/csemotors/api/views"
)

// Home renders the landing page.
func Home(view pageRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view.Render(w, r, http.StatusOK, views.PageHome, views.Page{Title: "Home"})
	}
}

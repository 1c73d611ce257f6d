package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/csemotors/api/views"
	"github.com/angelmondragon/csemotors/pkg/flash"
	"github.com/angelmondragon/csemotors/pkg/logger"
)

// pageRenderer is the slice of views.Renderer the handlers use.
type pageRenderer interface {
	Render(w http.ResponseWriter, r *http.Request, status int, name string, page views.Page)
	RenderError(w http.ResponseWriter, r *http.Request, err error)
}

// seeOther redirects with 303 so a POST is followed by a GET.
func seeOther(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func notice(ctx context.Context, text string) {
	flash.FromContext(ctx).Notice(ctx, text)
}

func flashError(ctx context.Context, text string) {
	flash.FromContext(ctx).Error(ctx, text)
}

func logFailure(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg != nil {
		logg.Error(ctx, msg, err)
	}
}

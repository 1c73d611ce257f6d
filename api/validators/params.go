package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/csemotors/pkg/errors"
	"github.com/go-chi/chi/v5"
)

// PathID parses a positive integer route parameter. Anything else is reported as not found
// since no record can match it.
func PathID(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "no record matches the route parameter").WithDetails(map[string]any{"param": key})
	}
	return value, nil
}

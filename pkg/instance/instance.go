package instance

import "github.com/angelmondragon/csemotors/pkg/env"

// GetID returns the identifier logged with server lifecycle events: the dyno name on
// Heroku, the container hostname elsewhere.
func GetID() string {
	return env.Get("DYNO", env.Get("HOSTNAME", "local"))
}

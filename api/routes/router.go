package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/csemotors/api/controllers"
	"github.com/angelmondragon/csemotors/api/middleware"
	"github.com/angelmondragon/csemotors/api/validators"
	"github.com/angelmondragon/csemotors/api/views"
	"github.com/angelmondragon/csemotors/internal/accounts"
	"github.com/angelmondragon/csemotors/internal/inventory"
	"github.com/angelmondragon/csemotors/internal/reviews"
	"github.com/angelmondragon/csemotors/pkg/auth/session"
	"github.com/angelmondragon/csemotors/pkg/config"
	"github.com/angelmondragon/csemotors/pkg/db"
	"github.com/angelmondragon/csemotors/pkg/flash"
	"github.com/angelmondragon/csemotors/pkg/logger"
	"github.com/angelmondragon/csemotors/pkg/metrics"
	"github.com/angelmondragon/csemotors/pkg/redis"
	"github.com/angelmondragon/csemotors/pkg/security"
)

// NewRouter wires every page, gate and form check. sessions may be nil, in which case
// identity tokens are trusted until they expire.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	flashStore flash.Store,
	sessions session.AccessSessionChecker,
	registry *prometheus.Registry,
	view *views.Renderer,
	accountService accounts.Service,
	inventoryService inventory.Service,
	reviewService reviews.Service,
) http.Handler {
	r := chi.NewRouter()

	var reg prometheus.Registerer
	if registry != nil {
		reg = registry
	}
	httpMetrics := metrics.NewHTTPMetrics(reg)
	authMetrics := metrics.NewAuthMetrics(reg)
	checker := validators.NewChecker(view, logg, authMetrics)

	r.Use(
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.FlashSession(flashStore, cfg.Flash, cfg.JWT.SecureCookie, logg),
		middleware.Session(cfg.JWT, sessions, authMetrics, logg),
		middleware.Recoverer(view, logg),
	)
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		view.RenderError(w, req, errNotFound)
	})

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	passwordPolicy := security.PasswordPolicy{MinLength: cfg.Password.MinLength}
	requireLogin := middleware.RequireLogin(authMetrics, logg)
	requireStaff := middleware.RequireRole(middleware.InventoryGate(), authMetrics, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})
	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Get("/", controllers.Home(view))

	r.Route("/account", func(r chi.Router) {
		r.With(requireLogin).Get("/", controllers.AccountManagement(view))

		r.Get("/login", controllers.AccountLoginView(view))
		r.With(
			middleware.AuthRateLimit(loginPolicy, redisClient, view, logg),
			checker.Check(validators.LoginRules(), controllers.AccountLoginInvalid(view)),
		).Post("/login", controllers.AccountLogin(accountService, view, authMetrics, logg))

		r.Get("/register", controllers.AccountRegisterView(view))
		r.With(
			middleware.AuthRateLimit(registerPolicy, redisClient, view, logg),
			checker.Check(validators.RegistrationRules(accountService, passwordPolicy), controllers.AccountRegisterInvalid(view)),
		).Post("/register", controllers.AccountRegister(accountService, view, logg))

		r.Get("/logout", controllers.AccountLogout(accountService, cfg.JWT, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireLogin)
			r.Get("/update/{accountId}", controllers.AccountUpdateView(accountService, view))
			r.With(checker.Check(validators.AccountUpdateRules(accountService), controllers.AccountUpdateInvalid(view))).
				Post("/update", controllers.AccountUpdate(accountService, view, logg))
			r.With(checker.Check(validators.PasswordRules(passwordPolicy), controllers.AccountPasswordInvalid(view))).
				Post("/update-password", controllers.AccountChangePassword(accountService, view, logg))
		})
	})

	r.Route("/inv", func(r chi.Router) {
		r.Get("/type/{classificationId}", controllers.InventoryByClassification(inventoryService, view))
		r.Get("/detail/{invId}", controllers.InventoryDetail(inventoryService, reviewService, view))
		r.Get("/cause-error", controllers.CauseError())

		r.Group(func(r chi.Router) {
			r.Use(requireStaff)
			r.Get("/", controllers.InventoryManagement(inventoryService, view))
			r.Get("/getInventory/{classificationId}", controllers.InventoryJSON(inventoryService, logg))

			r.Get("/add-classification", controllers.AddClassificationView(view))
			r.With(checker.Check(validators.ClassificationRules(), controllers.AddClassificationInvalid(view))).
				Post("/add-classification", controllers.AddClassification(inventoryService, view, logg))

			r.Get("/add-inventory", controllers.AddInventoryView(inventoryService, view))
			r.With(checker.Check(validators.InventoryRules(), controllers.AddInventoryInvalid(inventoryService, view))).
				Post("/add-inventory", controllers.AddInventory(inventoryService, view, logg))

			r.Get("/edit/{invId}", controllers.EditInventoryView(inventoryService, view))
			r.With(checker.Check(validators.InventoryUpdateRules(), controllers.EditInventoryInvalid(inventoryService, view))).
				Post("/update", controllers.UpdateInventory(inventoryService, view, logg))

			r.Get("/delete/{invId}", controllers.DeleteConfirmView(inventoryService, view))
			r.Post("/delete", controllers.DeleteInventory(inventoryService, view, logg))
		})
	})

	r.Route("/review", func(r chi.Router) {
		r.Use(requireLogin)
		r.Get("/", controllers.MyReviews(reviewService, view, logg))
		r.With(checker.Check(validators.ReviewRules(), controllers.SubmitReviewInvalid())).
			Post("/add", controllers.SubmitReview(reviewService, logg))
		r.Get("/edit/{reviewId}", controllers.EditReviewView(reviewService, view))
		r.With(checker.Check(validators.ReviewUpdateRules(), controllers.EditReviewInvalid(reviewService, view))).
			Post("/update", controllers.UpdateReview(reviewService, logg))
		r.Get("/delete/{reviewId}", controllers.DeleteReview(reviewService, logg))
		r.Post("/delete/{reviewId}", controllers.DeleteReview(reviewService, logg))
	})

	return r
}

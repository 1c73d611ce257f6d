package controllers

import (
	"fmt"
	"net/http"

	"github.com/angelmondragon/csemotors/api/validators"
	"github.com/angelmondragon/csemotors/api/views"
	"github.com/angelmondragon/csemotors/internal/accounts"
	"github.com/angelmondragon/csemotors/pkg/auth"
	"github.com/angelmondragon/csemotors/pkg/config"
	pkgerrors "github.com/angelmondragon/csemotors/pkg/errors"
	"github.com/angelmondragon/csemotors/pkg/logger"
	"github.com/angelmondragon/csemotors/pkg/metrics"
)

// Account flash texts.
const (
	RegisteredNotice      = "Congratulations, you're registered %s. Please log in."
	RegistrationFailed    = "Sorry, the registration failed."
	RegistrationError     = "Sorry, there was an error processing the registration."
	ProfileUpdatedNotice  = "Account information updated successfully."
	ProfileUpdateFailed   = "Sorry, the account update failed."
	PasswordUpdatedNotice = "Password updated successfully."
	PasswordUpdateFailed  = "Sorry, the password update failed."
	LoggedOutNotice       = "You have been logged out."
	OwnAccountOnlyNotice  = "You can only update your own account."
)

const (
	accountManagementTitle  = "Account Management"
	accountUpdateTitle      = "Edit Account"
	registrationTitle       = "Registration"
	accountManagementTarget = "/account/"
)

// AccountManagement renders the logged-in landing page.
func AccountManagement(view pageRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view.Render(w, r, http.StatusOK, views.PageAccountManagement, views.Page{Title: accountManagementTitle})
	}
}

func AccountLoginView(view pageRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view.Render(w, r, http.StatusOK, views.PageLogin, views.Page{Title: "Login"})
	}
}

// AccountLoginInvalid re-renders the login form after a failed rule check.
func AccountLoginInvalid(view pageRenderer) validators.InvalidFunc {
	return func(w http.ResponseWriter, r *http.Request, result *validators.Result) {
		view.Render(w, r, http.StatusBadRequest, views.PageLogin, views.FormPage("Login", result, nil))
	}
}

// AccountLogin verifies the credentials, sets the identity cookie and sends the visitor to
// account management. Unknown email and wrong password answer identically.
func AccountLogin(svc accounts.Service, view pageRenderer, m *metrics.AuthMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		form := validators.FormFromContext(ctx)
		email := form.Value("account_email")

		change, err := svc.Login(ctx, email, form.Value("account_password"))
		if err != nil {
			if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
				m.Login("error")
				view.RenderError(w, r, err)
				return
			}
			m.Login("invalid_credentials")
			if logg != nil {
				logg.Info(ctx, "account.login_failed")
			}
			flashError(ctx, accounts.InvalidCredentialsMessage)
			view.Render(w, r, http.StatusBadRequest, views.PageLogin, views.Page{
				Title:  "Login",
				Values: map[string]string{"account_email": email},
			})
			return
		}

		change.Apply(w)
		m.Login("success")
		if logg != nil {
			logg.Info(logg.WithAccountID(ctx, change.Identity().AccountID), "account.login")
		}
		seeOther(w, r, accountManagementTarget)
	}
}

func AccountRegisterView(view pageRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view.Render(w, r, http.StatusOK, views.PageRegister, views.Page{Title: "Register"})
	}
}

func AccountRegisterInvalid(view pageRenderer) validators.InvalidFunc {
	return func(w http.ResponseWriter, r *http.Request, result *validators.Result) {
		view.Render(w, r, http.StatusBadRequest, views.PageRegister, views.FormPage(registrationTitle, result, nil))
	}
}

// AccountRegister stores a new Client account and shows the login form.
func AccountRegister(svc accounts.Service, view pageRenderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		form := validators.FormFromContext(ctx)

		account, err := svc.Register(ctx, accounts.RegisterInput{
			FirstName: form.Value("account_firstname"),
			LastName:  form.Value("account_lastname"),
			Email:     form.Value("account_email"),
			Password:  form.Value("account_password"),
		})
		if err != nil {
			status, text := http.StatusNotImplemented, RegistrationFailed
			if pkgerrors.Is(err, pkgerrors.CodeInternal) {
				status, text = http.StatusInternalServerError, RegistrationError
			}
			logFailure(ctx, logg, "account.register_failed", err)
			flashError(ctx, text)
			view.Render(w, r, status, views.PageRegister, views.FormPage(registrationTitle, form, nil))
			return
		}

		notice(ctx, fmt.Sprintf(RegisteredNotice, account.FirstName))
		view.Render(w, r, http.StatusCreated, views.PageLogin, views.Page{Title: "Login"})
	}
}

// AccountUpdateView renders the profile form of the caller's own account.
func AccountUpdateView(svc accounts.Service, view pageRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity := auth.IdentityFromContext(ctx)

		id, err := validators.PathID(r, "accountId")
		if err != nil || id != identity.AccountID {
			notice(ctx, OwnAccountOnlyNotice)
			seeOther(w, r, accountManagementTarget)
			return
		}

		account, err := svc.Get(ctx, id)
		if err != nil {
			view.RenderError(w, r, err)
			return
		}
		view.Render(w, r, http.StatusOK, views.PageAccountUpdate, views.Page{
			Title: accountUpdateTitle,
			Values: map[string]string{
				"account_firstname": account.FirstName,
				"account_lastname":  account.LastName,
				"account_email":     account.Email,
			},
		})
	}
}

func AccountUpdateInvalid(view pageRenderer) validators.InvalidFunc {
	return func(w http.ResponseWriter, r *http.Request, result *validators.Result) {
		view.Render(w, r, http.StatusBadRequest, views.PageAccountUpdate, views.FormPage(accountUpdateTitle, result, nil))
	}
}

// AccountUpdate saves the caller's names and email and re-issues the identity cookie.
func AccountUpdate(svc accounts.Service, view pageRenderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		form := validators.FormFromContext(ctx)
		identity := auth.IdentityFromContext(ctx)

		change, err := svc.UpdateProfile(ctx, identity.AccountID, accounts.ProfileInput{
			FirstName: form.Value("account_firstname"),
			LastName:  form.Value("account_lastname"),
			Email:     form.Value("account_email"),
		})
		if err != nil {
			page := views.FormPage(accountUpdateTitle, form, nil)
			switch {
			case pkgerrors.Is(err, pkgerrors.CodeConflict):
				page.Errors = append(page.Errors, pkgerrors.PublicMessage(err))
				view.Render(w, r, http.StatusBadRequest, views.PageAccountUpdate, page)
			case pkgerrors.Is(err, pkgerrors.CodeNotFound):
				view.RenderError(w, r, err)
			default:
				logFailure(ctx, logg, "account.update_failed", err)
				flashError(ctx, ProfileUpdateFailed)
				view.Render(w, r, http.StatusNotImplemented, views.PageAccountUpdate, page)
			}
			return
		}

		change.Apply(w)
		notice(ctx, ProfileUpdatedNotice)
		seeOther(w, r, accountManagementTarget)
	}
}

// AccountPasswordInvalid re-renders the update page with the caller's stored profile.
func AccountPasswordInvalid(view pageRenderer) validators.InvalidFunc {
	return func(w http.ResponseWriter, r *http.Request, result *validators.Result) {
		page := views.FormPage(accountUpdateTitle, result, nil)
		page.Values = profileValues(auth.IdentityFromContext(r.Context()))
		view.Render(w, r, http.StatusBadRequest, views.PageAccountUpdate, page)
	}
}

// AccountChangePassword replaces the caller's password.
func AccountChangePassword(svc accounts.Service, view pageRenderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		form := validators.FormFromContext(ctx)
		identity := auth.IdentityFromContext(ctx)

		if err := svc.ChangePassword(ctx, identity.AccountID, form.Value("account_password")); err != nil {
			logFailure(ctx, logg, "account.password_failed", err)
			flashError(ctx, PasswordUpdateFailed)
			view.Render(w, r, http.StatusNotImplemented, views.PageAccountUpdate, views.Page{
				Title:  accountUpdateTitle,
				Values: profileValues(identity),
			})
			return
		}

		notice(ctx, PasswordUpdatedNotice)
		seeOther(w, r, accountManagementTarget)
	}
}

// AccountLogout revokes the access session, clears the cookie and returns home.
func AccountLogout(svc accounts.Service, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if tokenID := auth.TokenIDFromContext(ctx); tokenID != "" {
			if err := svc.Logout(ctx, tokenID); err != nil {
				logFailure(ctx, logg, "account.logout_revoke_failed", err)
			}
		}
		auth.ClearIdentityCookie(w, cfg)
		notice(ctx, LoggedOutNotice)
		seeOther(w, r, "/")
	}
}

func profileValues(identity auth.Identity) map[string]string {
	return map[string]string{
		"account_firstname": identity.FirstName,
		"account_lastname":  identity.LastName,
		"account_email":     identity.Email,
	}
}

package validators

import (
	"context"
	"net/url"

	"github.com/angelmondragon/csemotors/pkg/auth"
	"github.com/angelmondragon/csemotors/pkg/security"
)

// Form names, also used as metric labels.
const (
	FormClassification = "classification"
	FormInventory      = "inventory"
	FormInventoryEdit  = "inventory_update"
	FormRegistration   = "registration"
	FormLogin          = "login"
	FormAccountUpdate  = "account_update"
	FormPassword       = "password_update"
	FormReview         = "review"
	FormReviewEdit     = "review_update"
)

// EmailLookup answers the uniqueness questions the account forms ask.
type EmailLookup interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	EmailTakenByOther(ctx context.Context, email string, accountID int) (bool, error)
}

const msgValidEmail = "A valid email is required."

// ClassificationRules validates the add-classification form.
func ClassificationRules() Rules {
	return Rules{Name: FormClassification, Fields: []*FieldRule{
		Field("classification_name").Trim().
			Required("Classification name is required.").
			Alphanumeric("No spaces or special characters allowed."),
	}}
}

// InventoryRules validates the add-inventory form.
func InventoryRules() Rules {
	return Rules{Name: FormInventory, Fields: inventoryFields()}
}

// InventoryUpdateRules validates the edit-inventory form, which also carries inv_id.
func InventoryUpdateRules() Rules {
	fields := append([]*FieldRule{
		Field("inv_id").Trim().Int(1, maxInt, "Vehicle id is required."),
	}, inventoryFields()...)
	return Rules{Name: FormInventoryEdit, Fields: fields}
}

const maxInt = int(^uint(0) >> 1)

func inventoryFields() []*FieldRule {
	return []*FieldRule{
		Field("classification_id").Trim().Int(1, maxInt, "Please select a valid classification."),
		Field("inv_make").Trim().Required("Make is required."),
		Field("inv_model").Trim().Required("Model is required."),
		Field("inv_year").Trim().Int(1900, 2099, "Year must be a valid 4-digit year."),
		Field("inv_description").Trim().Required("Description is required."),
		Field("inv_image").Trim().Required("Image path is required."),
		Field("inv_thumbnail").Trim().Required("Thumbnail path is required."),
		Field("inv_price").Trim().Float(0, "Price must be a positive number."),
		Field("inv_miles").Trim().Int(0, maxInt, "Miles must be a positive number."),
		Field("inv_color").Trim().Required("Color is required."),
	}
}

// RegistrationRules validates the register form, including email uniqueness.
func RegistrationRules(emails EmailLookup, policy security.PasswordPolicy) Rules {
	return Rules{Name: FormRegistration, Fields: []*FieldRule{
		Field("account_firstname").Trim().Required("Please provide a first name."),
		Field("account_lastname").Trim().Length(2, 0, "Please provide a last name."),
		Field("account_email").NormalizeEmail().Email(msgValidEmail).Bail().
			Custom(func(ctx context.Context, value string, _ url.Values) error {
				exists, err := emails.EmailExists(ctx, value)
				if err != nil {
					return err
				}
				if exists {
					return Invalid("Email exists. Please log in or use a different email.")
				}
				return nil
			}),
		Field("account_password").Secret().StrongPassword(policy, "Password does not meet requirements."),
	}}
}

// LoginRules validates the login form.
func LoginRules() Rules {
	return Rules{Name: FormLogin, Fields: []*FieldRule{
		Field("account_email").NormalizeEmail().Email(msgValidEmail),
		Field("account_password").Secret().Required("Password is required."),
	}}
}

// AccountUpdateRules validates the profile form. Email uniqueness ignores the caller's own account.
func AccountUpdateRules(emails EmailLookup) Rules {
	return Rules{Name: FormAccountUpdate, Fields: []*FieldRule{
		Field("account_firstname").Trim().Required("First name is required."),
		Field("account_lastname").Trim().Required("Last name is required."),
		Field("account_email").NormalizeEmail().Email(msgValidEmail).Bail().
			Custom(func(ctx context.Context, value string, _ url.Values) error {
				taken, err := emails.EmailTakenByOther(ctx, value, auth.IdentityFromContext(ctx).AccountID)
				if err != nil {
					return err
				}
				if taken {
					return Invalid("Email already exists. Please use a different email.")
				}
				return nil
			}),
	}}
}

// PasswordRules validates the change-password form.
func PasswordRules(policy security.PasswordPolicy) Rules {
	return Rules{Name: FormPassword, Fields: []*FieldRule{
		Field("account_password").Secret().StrongPassword(policy,
			"Password must be at least 12 characters, include an uppercase letter, a number, and a special character."),
	}}
}

// ReviewRules validates a new review.
func ReviewRules() Rules {
	return Rules{Name: FormReview, Fields: reviewFields()}
}

// ReviewUpdateRules validates an edited review.
func ReviewUpdateRules() Rules {
	return Rules{Name: FormReviewEdit, Fields: reviewFields()}
}

func reviewFields() []*FieldRule {
	return []*FieldRule{
		Field("rating").Trim().Required("Please select a rating.").Bail().
			Int(1, 5, "Rating must be between 1 and 5 stars."),
		Field("review_text").Trim().
			Length(10, 0, "Review must be at least 10 characters long.").
			Length(0, 500, "Review must not exceed 500 characters."),
	}
}

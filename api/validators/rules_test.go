package validators

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/angelmondragon/csemotors/pkg/auth"
	"github.com/angelmondragon/csemotors/pkg/enums"
	"github.com/angelmondragon/csemotors/pkg/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmails struct {
	existing map[string]int
	err      error
}

func (s stubEmails) EmailExists(ctx context.Context, email string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.existing[email]
	return ok, nil
}

func (s stubEmails) EmailTakenByOther(ctx context.Context, email string, accountID int) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	id, ok := s.existing[email]
	return ok && id != accountID, nil
}

func TestRegistrationRulesRejectDuplicateEmail(t *testing.T) {
	rules := RegistrationRules(stubEmails{existing: map[string]int{"taken@example.com": 1}}, security.PasswordPolicy{MinLength: 12})
	form := url.Values{
		"account_firstname": {" Ada "},
		"account_lastname":  {"Lovelace"},
		"account_email":     {" Taken@Example.com "},
		"account_password":  {"Sup3r$ecretPass"},
	}

	res, err := rules.Validate(context.Background(), form)
	require.NoError(t, err)
	assert.False(t, res.Valid())
	assert.Equal(t, []string{"Email exists. Please log in or use a different email."}, res.FieldMessages("account_email"))

	values := res.PublicValues()
	assert.Equal(t, "Ada", values["account_firstname"])
	assert.Equal(t, "taken@example.com", values["account_email"])
	_, hasPassword := values["account_password"]
	assert.False(t, hasPassword, "passwords are never echoed back")
}

func TestRegistrationRulesEvaluateEveryField(t *testing.T) {
	rules := RegistrationRules(stubEmails{}, security.PasswordPolicy{})
	res, err := rules.Validate(context.Background(), url.Values{"account_email": {"not-an-email"}, "account_password": {"short"}})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Please provide a first name.",
		"Please provide a last name.",
		"A valid email is required.",
		"Password does not meet requirements.",
	}, res.Messages())
}

func TestRegistrationRulesSkipLookupForInvalidEmail(t *testing.T) {
	rules := RegistrationRules(stubEmails{err: errors.New("db down")}, security.PasswordPolicy{})
	res, err := rules.Validate(context.Background(), url.Values{"account_email": {"nope"}})
	require.NoError(t, err, "bail must stop before the lookup runs")
	assert.Equal(t, []string{"A valid email is required."}, res.FieldMessages("account_email"))
}

func TestCustomRuleInfrastructureErrorAborts(t *testing.T) {
	rules := RegistrationRules(stubEmails{err: errors.New("db down")}, security.PasswordPolicy{})
	_, err := rules.Validate(context.Background(), url.Values{"account_email": {"ok@example.com"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registration.account_email")
}

func TestAccountUpdateRulesAllowOwnEmail(t *testing.T) {
	emails := stubEmails{existing: map[string]int{"me@example.com": 5, "other@example.com": 9}}
	ctx := auth.WithIdentity(context.Background(), auth.Identity{AccountID: 5, Role: enums.AccountTypeClient})
	rules := AccountUpdateRules(emails)

	res, err := rules.Validate(ctx, url.Values{"account_firstname": {"Me"}, "account_lastname": {"Self"}, "account_email": {"me@example.com"}})
	require.NoError(t, err)
	assert.True(t, res.Valid())

	res, err = rules.Validate(ctx, url.Values{"account_firstname": {"Me"}, "account_lastname": {"Self"}, "account_email": {"other@example.com"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Email already exists. Please use a different email."}, res.Messages())
}

func TestReviewRulesBounds(t *testing.T) {
	cases := []struct {
		name   string
		rating string
		text   string
		want   []string
	}{
		{"valid", "4", "Great car, smooth ride.", nil},
		{"missing rating", "", "Great car, smooth ride.", []string{"Please select a rating."}},
		{"rating too high", "6", "Great car, smooth ride.", []string{"Rating must be between 1 and 5 stars."}},
		{"rating zero", "0", "Great car, smooth ride.", []string{"Rating must be between 1 and 5 stars."}},
		{"text too short", "3", "  short  ", []string{"Review must be at least 10 characters long."}},
		{"text too long", "3", strings.Repeat("a", 501), []string{"Review must not exceed 500 characters."}},
		{"text at max", "5", strings.Repeat("a", 500), nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := ReviewRules().Validate(context.Background(), url.Values{"rating": {tc.rating}, "review_text": {tc.text}})
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.Messages())
		})
	}
}

func TestInventoryRulesNormalizeMultiValuedClassification(t *testing.T) {
	form := url.Values{
		"classification_id": {"3", "5"},
		"inv_make":          {"DMC"},
		"inv_model":         {"Delorean"},
		"inv_year":          {"1982"},
		"inv_description":   {"Time machine"},
		"inv_image":         {"/images/vehicles/delorean.jpg"},
		"inv_thumbnail":     {"/images/vehicles/delorean-tn.jpg"},
		"inv_price":         {"65000.50"},
		"inv_miles":         {"88"},
		"inv_color":         {"Silver"},
	}
	res, err := InventoryRules().Validate(context.Background(), form)
	require.NoError(t, err)
	require.True(t, res.Valid(), res.Messages())
	assert.Equal(t, 3, res.Int("classification_id"))
	assert.Equal(t, "65000.5", res.Decimal("inv_price").String())
}

func TestInventoryRulesMessages(t *testing.T) {
	form := url.Values{"inv_year": {"99"}, "inv_price": {"-1"}, "inv_miles": {"abc"}}
	res, err := InventoryUpdateRules().Validate(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Vehicle id is required.",
		"Please select a valid classification.",
		"Make is required.",
		"Model is required.",
		"Year must be a valid 4-digit year.",
		"Description is required.",
		"Image path is required.",
		"Thumbnail path is required.",
		"Price must be a positive number.",
		"Miles must be a positive number.",
		"Color is required.",
	}, res.Messages())
}

func TestClassificationRules(t *testing.T) {
	res, err := ClassificationRules().Validate(context.Background(), url.Values{"classification_name": {" SUV "}})
	require.NoError(t, err)
	assert.True(t, res.Valid())
	assert.Equal(t, "SUV", res.Value("classification_name"))

	res, err = ClassificationRules().Validate(context.Background(), url.Values{"classification_name": {"Mini Van"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"No spaces or special characters allowed."}, res.Messages())
}

func TestPasswordRules(t *testing.T) {
	rules := PasswordRules(security.PasswordPolicy{MinLength: 12})
	res, err := rules.Validate(context.Background(), url.Values{"account_password": {"alllowercase123!"}})
	require.NoError(t, err)
	assert.Len(t, res.Errors, 1)

	res, err = rules.Validate(context.Background(), url.Values{"account_password": {"Str0ng&Secure!"}})
	require.NoError(t, err)
	assert.True(t, res.Valid())
}

package accounts

// RegisterInput is a validated registration form.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// ProfileInput is a validated account update form. It has no role field.
type ProfileInput struct {
	FirstName string
	LastName  string
	Email     string
}

package models

import "github.com/angelmondragon/csemotors/pkg/enums"

// Account is a registered visitor. Email is unique; the password hash is never exposed
// outside the accounts service.
type Account struct {
	ID           int               `gorm:"column:account_id;primaryKey;autoIncrement"`
	FirstName    string            `gorm:"column:account_firstname;not null"`
	LastName     string            `gorm:"column:account_lastname;not null"`
	Email        string            `gorm:"column:account_email;not null;uniqueIndex:account_account_email_key"`
	PasswordHash string            `gorm:"column:account_password;not null"`
	Type         enums.AccountType `gorm:"column:account_type;type:varchar(16);not null"`
}

func (Account) TableName() string { return "account" }

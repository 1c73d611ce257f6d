package models

import "time"

// Review is one account's rating of one vehicle. The (inv_id, account_id) pair is unique.
type Review struct {
	ID        int       `gorm:"column:review_id;primaryKey;autoIncrement"`
	VehicleID int       `gorm:"column:inv_id;not null;uniqueIndex:reviews_inv_account_key,priority:1"`
	AccountID int       `gorm:"column:account_id;not null;uniqueIndex:reviews_inv_account_key,priority:2;index"`
	Text      string    `gorm:"column:review_text;not null"`
	Rating    int       `gorm:"column:rating;not null"`
	Date      time.Time `gorm:"column:review_date;not null"`
	Vehicle   Vehicle   `gorm:"constraint:OnDelete:CASCADE"`
	Account   Account   `gorm:"constraint:OnDelete:CASCADE"`
}

func (Review) TableName() string { return "reviews" }

// All lists every model in dependency order for AutoMigrate.
func All() []any {
	return []any{&Account{}, &Classification{}, &Vehicle{}, &Review{}}
}

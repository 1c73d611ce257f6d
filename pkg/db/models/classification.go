package models

// Classification groups inventory in the navigation bar.
type Classification struct {
	ID   int    `gorm:"column:classification_id;primaryKey;autoIncrement"`
	Name string `gorm:"column:classification_name;not null;uniqueIndex:classification_classification_name_key"`
}

func (Classification) TableName() string { return "classification" }

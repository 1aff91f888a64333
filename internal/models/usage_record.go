package models

import "time"

// UsageDayLayout formats the UTC calendar day a usage record belongs to.
const UsageDayLayout = "2006-01-02"

// UsageRecord counts free-tier partner accesses for one user on one UTC day.
// Records are only ever incremented; old days simply stop being read.
type UsageRecord struct {
	UserID    string    `gorm:"primaryKey;type:varchar(64)" json:"user_id"`
	Day       string    `gorm:"primaryKey;type:varchar(10)" json:"day"`
	Count     int64     `gorm:"column:access_count;not null;default:0" json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (UsageRecord) TableName() string {
	return "usage_records"
}

// UsageDay returns the usage key for t.
func UsageDay(t time.Time) string {
	return t.UTC().Format(UsageDayLayout)
}

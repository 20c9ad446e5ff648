package models

import (
	"time"

	"gorm.io/datatypes"
)

// Config is a simple key/value store used by the background daemons to
// remember when a job ran last.
type Config struct {
	Key       string         `json:"key" gorm:"primaryKey;column:config_key"`
	Val       datatypes.JSON `json:"val" gorm:"column:val;type:jsonb"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (c Config) TableName() string {
	return "configs"
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AdvisoryRecord struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestId      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	UserId         string         `gorm:"type:varchar(64);not null;index"`
	Crop           string         `gorm:"type:varchar(100);index"`
	District       string         `gorm:"type:varchar(100)"`
	Category       string         `gorm:"type:varchar(50)"`
	Path           string         `gorm:"type:varchar(20)"`
	Outcome        string         `gorm:"type:varchar(20);index"`
	Questions      datatypes.JSON `gorm:"type:jsonb"`
	Missing        datatypes.JSON `gorm:"type:jsonb"`
	SafetyWarnings datatypes.JSON `gorm:"type:jsonb"`
	Removed        datatypes.JSON `gorm:"type:jsonb"`
	FinalResponse  string         `gorm:"type:text"`
	SessionVersion int64
	Delivered      bool      `gorm:"default:false"`
	DurationMs     int64
	CreatedAt      time.Time `gorm:"autoCreateTime;index"`
}

func (AdvisoryRecord) TableName() string {
	return "advisory_records"
}

package models

import "time"

// SequenceModel backs the per-code document counters. One row per code,
// bumped atomically inside the generator's transaction.
type SequenceModel struct {
	Code      string    `gorm:"type:varchar(50);primary_key"`
	Value     int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SequenceModel) TableName() string {
	return "sequences"
}

// ParameterModel stores one deployment parameter as a key/value row.
// Typed access goes through the parameter provider.
type ParameterModel struct {
	Key       string    `gorm:"type:varchar(100);primary_key"`
	Value     string    `gorm:"type:varchar(500);not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ParameterModel) TableName() string {
	return "parameters"
}

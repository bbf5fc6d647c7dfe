package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Training status values.
const (
	TrainingActive   = 1
	TrainingInactive = 0
)

// Training stores the module tree as JSON; it is always read and written
// as a whole.
type Training struct {
	gorm.Model
	Title       string         `gorm:"not null"`
	Description string         `gorm:"type:text"`
	Type        string         `gorm:"index"`
	Image       string         `gorm:"default:''"`
	StartDate   time.Time      `gorm:"not null"`
	EndDate     time.Time      `gorm:"not null"`
	Modules     datatypes.JSON `gorm:"not null"`
	Status      int            `gorm:"default:1"`
	CreatedBy   uint
	IsDeleted   bool `gorm:"default:false"`

	Collaborators []Collaborator `gorm:"many2many:training_collaborators;"`
}

// Collaborator is a person that can be enrolled in trainings.
type Collaborator struct {
	gorm.Model
	Cedula    string `gorm:"uniqueIndex;not null"`
	FirstName string
	LastName  string
	Email     string
	Cargo     string
}

// Upload records a stored attachment so unreferenced files can be swept.
type Upload struct {
	gorm.Model
	Filename         string `gorm:"uniqueIndex;not null"`
	OriginalFilename string
	Extension        string
	MIME             string
	Size             int64
	Tipo             string
	Subtipo          string
	URL              string `gorm:"index"`
}

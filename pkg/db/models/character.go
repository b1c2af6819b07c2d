package models

import (
	"time"

	"github.com/google/uuid"
)

type Character struct {
	ID        uint       `gorm:"column:id;primaryKey"`
	Name      string     `gorm:"column:name;not null"`
	Age       *int       `gorm:"column:age"`
	Weight    *float64   `gorm:"column:weight"`
	Story     *string    `gorm:"column:story"`
	ImageID   *uuid.UUID `gorm:"column:image_id;type:uuid;uniqueIndex"`
	Image     *Image     `gorm:"foreignKey:ImageID"`
	Movies    []Movie    `gorm:"many2many:character_movies;joinForeignKey:CharacterID;joinReferences:MovieID"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Character) TableName() string { return "characters" }

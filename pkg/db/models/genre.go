package models

import (
	"time"

	"github.com/google/uuid"
)

type Genre struct {
	ID        uint       `gorm:"column:id;primaryKey"`
	Name      string     `gorm:"column:name;not null"`
	ImageID   *uuid.UUID `gorm:"column:image_id;type:uuid;uniqueIndex"`
	Image     *Image     `gorm:"foreignKey:ImageID"`
	Movies    []Movie    `gorm:"many2many:genre_movies;joinForeignKey:GenreID;joinReferences:MovieID"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Genre) TableName() string { return "genres" }

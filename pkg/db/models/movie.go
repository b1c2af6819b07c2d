package models

import (
	"time"

	"github.com/google/uuid"
)

type Movie struct {
	ID          uint        `gorm:"column:id;primaryKey"`
	Title       string      `gorm:"column:title;not null"`
	ReleaseDate *string     `gorm:"column:release_date"`
	Rating      *float64    `gorm:"column:rating"`
	ImageID     *uuid.UUID  `gorm:"column:image_id;type:uuid;uniqueIndex"`
	Image       *Image      `gorm:"foreignKey:ImageID"`
	Characters  []Character `gorm:"many2many:character_movies;joinForeignKey:MovieID;joinReferences:CharacterID"`
	Genres      []Genre     `gorm:"many2many:genre_movies;joinForeignKey:MovieID;joinReferences:GenreID"`
	CreatedAt   time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

func (Movie) TableName() string { return "movies" }

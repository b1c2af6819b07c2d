package models

// CharacterMovie and GenreMovie are pure link rows. Both foreign keys
// cascade on delete so links never outlive either side.
type CharacterMovie struct {
	CharacterID uint `gorm:"column:character_id;primaryKey"`
	MovieID     uint `gorm:"column:movie_id;primaryKey"`
}

func (CharacterMovie) TableName() string { return "character_movies" }

type GenreMovie struct {
	GenreID uint `gorm:"column:genre_id;primaryKey"`
	MovieID uint `gorm:"column:movie_id;primaryKey"`
}

func (GenreMovie) TableName() string { return "genre_movies" }

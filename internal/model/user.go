package model

import (
	"time"

	"github.com/evacgrid/backend/internal/geo"
)

type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"not null" json:"email"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

func (u User) Position() geo.Point {
	return geo.Point{Latitude: u.Latitude, Longitude: u.Longitude}
}

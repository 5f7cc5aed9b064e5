package model

import "github.com/evacgrid/backend/internal/geo"

// IoTDevice is a fixed sensor identified by MAC address. Devices do not get
// evacuated; they hold a position and can trigger zone creation.
type IoTDevice struct {
	ID                uint     `gorm:"primarykey" json:"id"`
	MACAddr           string   `gorm:"column:macaddr;uniqueIndex;not null" json:"MACADDR"`
	DefaultZoneRadius *float64 `json:"defaultZoneRadius"`
	GasLimit          *float64 `json:"gasLimit"`
	Latitude          float64  `json:"latitude"`
	Longitude         float64  `json:"longitude"`
}

func (d IoTDevice) Position() geo.Point {
	return geo.Point{Latitude: d.Latitude, Longitude: d.Longitude}
}

package model

import "time"

// Profile holds the user attributes consumed by diet generation.
type Profile struct {
	UserID       string  `json:"userId"`
	WeightKg     float64 `json:"weightKg"`
	HeightCm     float64 `json:"heightCm"`
	Region       string  `json:"region"`
	EatingHabits string  `json:"eatingHabits"`
	Goal         string  `json:"goal"`
	UpdatedAt    time.Time
}

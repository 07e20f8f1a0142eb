package entity

import (
	"fmt"
	"time"
)

const (
	BreedTypePurebred = "Purebred"
	BreedTypeWild     = "Wild"
)

// Dog is a catalogue entry. Description is derived, never stored.
type Dog struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Owner        string    `json:"owner"`
	Breed        string    `json:"breed"`
	BreedType    string    `json:"breedType"`
	Popularity   float64   `json:"popularity"`
	Intelligence float64   `json:"intelligence"`
	Photo        string    `json:"photo"`
	CreatedAt    time.Time `json:"createdAt"`
	Description  string    `json:"description,omitempty"`
}

// Describe composes the human-readable description attribute.
func (d *Dog) Describe() string {
	return fmt.Sprintf("%s is a %s %s, photo: %s", d.Name, d.BreedType, d.Breed, d.Photo)
}

// BreedStats is one aggregate row of the dogs-stats report, grouped by breed type.
type BreedStats struct {
	BreedType       string  `json:"breedType"`
	AvgPopularity   float64 `json:"avgPopularity"`
	Popularity      float64 `json:"popularity"`
	Intelligence    float64 `json:"intelligence"`
	AvgIntelligence float64 `json:"avgIntelligence"`
}

package graph

import (
	"github.com/matijazezelj/degrees/internal/search"
	"github.com/matijazezelj/degrees/pkg/models"
)

// Store defines the read-only co-starring graph used by engines and the API.
type Store interface {
	search.Graph

	// Person returns the person with the given id.
	Person(id string) (models.Person, bool)

	// Movie returns the movie with the given id.
	Movie(id string) (models.Movie, bool)

	// ResolveName returns the ids of everyone with the given display name.
	ResolveName(name string) []string

	// People returns all people ordered by id.
	People() []models.Person

	// Movies returns all movies ordered by id.
	Movies() []models.Movie

	// Credits returns all loaded (person, movie) pairs ordered by person then movie.
	Credits() []models.Credit

	// Stats returns record counts.
	Stats() Stats
}

// Stats summarizes a loaded graph.
type Stats struct {
	People         int `json:"people"`
	Movies         int `json:"movies"`
	Credits        int `json:"credits"`
	SkippedCredits int `json:"skipped_credits"`
}

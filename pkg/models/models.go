package models

// Person is a credited performer.
type Person struct {
	ID     string   `json:"id" yaml:"id"`
	Name   string   `json:"name" yaml:"name"`
	Birth  int      `json:"birth,omitempty" yaml:"birth,omitempty"`
	Movies []string `json:"movies,omitempty" yaml:"movies,omitempty"`
}

// Movie is a film and the people who starred in it.
type Movie struct {
	ID    string   `json:"id" yaml:"id"`
	Title string   `json:"title" yaml:"title"`
	Year  int      `json:"year,omitempty" yaml:"year,omitempty"`
	Stars []string `json:"stars,omitempty" yaml:"stars,omitempty"`
}

// Credit links a person to a movie they starred in.
type Credit struct {
	PersonID string `json:"person_id" yaml:"person_id"`
	MovieID  string `json:"movie_id" yaml:"movie_id"`
}

// Neighbor is a co-star reachable through a shared movie.
type Neighbor struct {
	MovieID  string `json:"movie_id"`
	PersonID string `json:"person_id"`
}

// Step is one hop of a path: the movie shared with the previous person
// and the person reached through it.
type Step struct {
	MovieID  string `json:"movie_id" yaml:"movie_id"`
	PersonID string `json:"person_id" yaml:"person_id"`
}

// Path is an ordered chain of steps from Source (exclusive) to Target
// (inclusive). It is empty only when Source == Target.
type Path struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Steps  []Step `json:"steps" yaml:"steps"`
}

// Degrees returns the number of shared-movie links in the path.
func (p Path) Degrees() int {
	return len(p.Steps)
}

// Link is a Step resolved to display names for rendering.
type Link struct {
	FromID     string `json:"from_id" yaml:"from_id"`
	FromName   string `json:"from_name" yaml:"from_name"`
	ToID       string `json:"to_id" yaml:"to_id"`
	ToName     string `json:"to_name" yaml:"to_name"`
	MovieID    string `json:"movie_id" yaml:"movie_id"`
	MovieTitle string `json:"movie_title" yaml:"movie_title"`
	MovieYear  int    `json:"movie_year,omitempty" yaml:"movie_year,omitempty"`
}

package graph

import (
	"fmt"
	"slices"
	"sort"

	"github.com/matijazezelj/degrees/pkg/models"
)

type personEntry struct {
	rec    models.Person
	movies []string
}

type movieEntry struct {
	rec   models.Movie
	stars []string
}

// MemoryStore implements Store with in-memory indexes built once by Build.
// It is never mutated afterwards and is safe for concurrent readers.
type MemoryStore struct {
	people  map[string]*personEntry
	movies  map[string]*movieEntry
	names   NameIndex
	credits int
	skipped int
}

// Build indexes people, movies and the credits linking them. Credits that
// reference an unknown person or movie are skipped and counted; duplicate
// credits collapse. When ids repeat, the last record wins. Movies and Stars
// fields on the input records are ignored; membership comes from credits.
func Build(people []models.Person, movies []models.Movie, credits []models.Credit) *MemoryStore {
	s := &MemoryStore{
		people: make(map[string]*personEntry, len(people)),
		movies: make(map[string]*movieEntry, len(movies)),
		names:  make(NameIndex),
	}

	for _, p := range people {
		if old, ok := s.people[p.ID]; ok {
			s.names.remove(old.rec.Name, p.ID)
		}
		rec := p
		rec.Movies = nil
		s.people[p.ID] = &personEntry{rec: rec}
		s.names.Add(p.Name, p.ID)
	}

	for _, m := range movies {
		rec := m
		rec.Stars = nil
		s.movies[m.ID] = &movieEntry{rec: rec}
	}

	seen := make(map[models.Credit]struct{}, len(credits))
	for _, c := range credits {
		p, okp := s.people[c.PersonID]
		m, okm := s.movies[c.MovieID]
		if !okp || !okm {
			s.skipped++
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		p.movies = append(p.movies, c.MovieID)
		m.stars = append(m.stars, c.PersonID)
		s.credits++
	}

	for _, p := range s.people {
		sort.Strings(p.movies)
	}
	for _, m := range s.movies {
		sort.Strings(m.stars)
	}

	return s
}

// HasPerson reports whether id is a known person.
func (s *MemoryStore) HasPerson(id string) bool {
	_, ok := s.people[id]
	return ok
}

// Neighbors returns one pair per (movie, co-star) of id, ordered by movie
// then person. The person is listed among their own co-stars. Unknown ids
// yield an empty result.
func (s *MemoryStore) Neighbors(id string) []models.Neighbor {
	p, ok := s.people[id]
	if !ok {
		return nil
	}
	var n int
	for _, mid := range p.movies {
		n += len(s.movies[mid].stars)
	}
	out := make([]models.Neighbor, 0, n)
	for _, mid := range p.movies {
		for _, pid := range s.movies[mid].stars {
			out = append(out, models.Neighbor{MovieID: mid, PersonID: pid})
		}
	}
	return out
}

// Person returns the person with the given id, including their movies.
func (s *MemoryStore) Person(id string) (models.Person, bool) {
	p, ok := s.people[id]
	if !ok {
		return models.Person{}, false
	}
	out := p.rec
	out.Movies = slices.Clone(p.movies)
	return out, true
}

// Movie returns the movie with the given id, including its stars.
func (s *MemoryStore) Movie(id string) (models.Movie, bool) {
	m, ok := s.movies[id]
	if !ok {
		return models.Movie{}, false
	}
	out := m.rec
	out.Stars = slices.Clone(m.stars)
	return out, true
}

// ResolveName returns the sorted ids of everyone named name.
func (s *MemoryStore) ResolveName(name string) []string {
	return s.names.Resolve(name)
}

// People returns all people ordered by id.
func (s *MemoryStore) People() []models.Person {
	ids := make([]string, 0, len(s.people))
	for id := range s.people {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]models.Person, 0, len(ids))
	for _, id := range ids {
		p, _ := s.Person(id)
		out = append(out, p)
	}
	return out
}

// Movies returns all movies ordered by id.
func (s *MemoryStore) Movies() []models.Movie {
	ids := make([]string, 0, len(s.movies))
	for id := range s.movies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]models.Movie, 0, len(ids))
	for _, id := range ids {
		m, _ := s.Movie(id)
		out = append(out, m)
	}
	return out
}

// Credits returns every loaded credit ordered by person then movie.
func (s *MemoryStore) Credits() []models.Credit {
	out := make([]models.Credit, 0, s.credits)
	for _, p := range s.People() {
		for _, mid := range p.Movies {
			out = append(out, models.Credit{PersonID: p.ID, MovieID: mid})
		}
	}
	return out
}

// Stats returns record counts.
func (s *MemoryStore) Stats() Stats {
	return Stats{
		People:         len(s.people),
		Movies:         len(s.movies),
		Credits:        s.credits,
		SkippedCredits: s.skipped,
	}
}

// Describe resolves each step of p to display names.
func Describe(s Store, p models.Path) ([]models.Link, error) {
	from, ok := s.Person(p.Source)
	if !ok {
		return nil, fmt.Errorf("unknown person %q", p.Source)
	}
	links := make([]models.Link, 0, len(p.Steps))
	for _, step := range p.Steps {
		to, ok := s.Person(step.PersonID)
		if !ok {
			return nil, fmt.Errorf("unknown person %q", step.PersonID)
		}
		movie, ok := s.Movie(step.MovieID)
		if !ok {
			return nil, fmt.Errorf("unknown movie %q", step.MovieID)
		}
		links = append(links, models.Link{
			FromID:     from.ID,
			FromName:   from.Name,
			ToID:       to.ID,
			ToName:     to.Name,
			MovieID:    movie.ID,
			MovieTitle: movie.Title,
			MovieYear:  movie.Year,
		})
		from = to
	}
	return links, nil
}

// CoStars resolves the neighbors of id to display links, leaving out id
// itself. It returns nil for an unknown person.
func CoStars(s Store, id string) []models.Link {
	from, ok := s.Person(id)
	if !ok {
		return nil
	}
	var links []models.Link
	for _, nb := range s.Neighbors(id) {
		if nb.PersonID == id {
			continue
		}
		to, ok := s.Person(nb.PersonID)
		if !ok {
			continue
		}
		movie, _ := s.Movie(nb.MovieID)
		links = append(links, models.Link{
			FromID:     from.ID,
			FromName:   from.Name,
			ToID:       to.ID,
			ToName:     to.Name,
			MovieID:    nb.MovieID,
			MovieTitle: movie.Title,
			MovieYear:  movie.Year,
		})
	}
	return links
}

package graph

import (
	"testing"

	"github.com/matijazezelj/degrees/pkg/models"
)

func makePerson(id, name string, birth int) models.Person {
	return models.Person{ID: id, Name: name, Birth: birth}
}

func makeMovie(id, title string, year int) models.Movie {
	return models.Movie{ID: id, Title: title, Year: year}
}

func makeCredit(personID, movieID string) models.Credit {
	return models.Credit{PersonID: personID, MovieID: movieID}
}

// buildCostarStore creates A-B via M1, B-C via M2, and an isolated D.
func buildCostarStore(t *testing.T) *MemoryStore {
	t.Helper()
	return Build(
		[]models.Person{
			makePerson("A", "Alice", 1960),
			makePerson("B", "Bob", 1970),
			makePerson("C", "Carol", 0),
			makePerson("D", "Dan", 1980),
		},
		[]models.Movie{
			makeMovie("M1", "First Movie", 1999),
			makeMovie("M2", "Second Movie", 2004),
		},
		[]models.Credit{
			makeCredit("A", "M1"),
			makeCredit("B", "M1"),
			makeCredit("B", "M2"),
			makeCredit("C", "M2"),
		},
	)
}

func TestBuild_Stats(t *testing.T) {
	store := buildCostarStore(t)
	st := store.Stats()
	if st.People != 4 || st.Movies != 2 || st.Credits != 4 || st.SkippedCredits != 0 {
		t.Errorf("Stats = %+v", st)
	}
}

func TestBuild_SkipsMalformedCredits(t *testing.T) {
	store := Build(
		[]models.Person{makePerson("A", "Alice", 0)},
		[]models.Movie{makeMovie("M1", "Movie", 0)},
		[]models.Credit{
			makeCredit("A", "M1"),
			makeCredit("A", "M1"),     // duplicate
			makeCredit("ghost", "M1"), // unknown person
			makeCredit("A", "M404"),   // unknown movie
		},
	)

	st := store.Stats()
	if st.Credits != 1 {
		t.Errorf("Credits = %d, want 1", st.Credits)
	}
	if st.SkippedCredits != 2 {
		t.Errorf("SkippedCredits = %d, want 2", st.SkippedCredits)
	}
	m, _ := store.Movie("M1")
	if len(m.Stars) != 1 || m.Stars[0] != "A" {
		t.Errorf("M1 stars = %v, want [A]", m.Stars)
	}
}

func TestNeighbors_IncludesSelfAndIsOrdered(t *testing.T) {
	store := buildCostarStore(t)

	got := store.Neighbors("B")
	want := []models.Neighbor{
		{MovieID: "M1", PersonID: "A"},
		{MovieID: "M1", PersonID: "B"},
		{MovieID: "M2", PersonID: "B"},
		{MovieID: "M2", PersonID: "C"},
	}
	if len(got) != len(want) {
		t.Fatalf("Neighbors(B) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Neighbors(B)[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNeighbors_Unknown(t *testing.T) {
	store := buildCostarStore(t)
	if got := store.Neighbors("nobody"); len(got) != 0 {
		t.Errorf("Neighbors(nobody) = %v, want empty", got)
	}
	if got := store.Neighbors("D"); len(got) != 0 {
		t.Errorf("Neighbors(D) = %v, want empty", got)
	}
}

func TestPersonAndMovie(t *testing.T) {
	store := buildCostarStore(t)

	p, ok := store.Person("B")
	if !ok {
		t.Fatal("expected B")
	}
	if p.Name != "Bob" || p.Birth != 1970 {
		t.Errorf("Person(B) = %+v", p)
	}
	if len(p.Movies) != 2 || p.Movies[0] != "M1" || p.Movies[1] != "M2" {
		t.Errorf("B movies = %v", p.Movies)
	}

	// Returned slices are copies.
	p.Movies[0] = "changed"
	again, _ := store.Person("B")
	if again.Movies[0] != "M1" {
		t.Error("Person should return a copy of the movie list")
	}

	if _, ok := store.Movie("M404"); ok {
		t.Error("unexpected movie M404")
	}
	if _, ok := store.Person("nobody"); ok {
		t.Error("unexpected person")
	}
}

func TestPeopleMoviesCredits(t *testing.T) {
	store := buildCostarStore(t)

	people := store.People()
	if len(people) != 4 || people[0].ID != "A" || people[3].ID != "D" {
		t.Errorf("People = %v", people)
	}
	movies := store.Movies()
	if len(movies) != 2 || movies[0].ID != "M1" {
		t.Errorf("Movies = %v", movies)
	}
	credits := store.Credits()
	want := []models.Credit{
		makeCredit("A", "M1"), makeCredit("B", "M1"), makeCredit("B", "M2"), makeCredit("C", "M2"),
	}
	if len(credits) != len(want) {
		t.Fatalf("Credits = %v", credits)
	}
	for i := range want {
		if credits[i] != want[i] {
			t.Errorf("Credits[%d] = %v, want %v", i, credits[i], want[i])
		}
	}
}

func TestResolveName(t *testing.T) {
	store := Build(
		[]models.Person{
			makePerson("1", "Chris Evans", 1981),
			makePerson("2", "Chris Evans", 1966),
			makePerson("3", "Emma Stone", 1988),
		},
		nil, nil,
	)

	tests := []struct {
		name string
		want []string
	}{
		{"Chris Evans", []string{"1", "2"}},
		{"  chris EVANS ", []string{"1", "2"}},
		{"Emma Stone", []string{"3"}},
		{"Nobody", nil},
		{"", nil},
	}
	for _, tt := range tests {
		got := store.ResolveName(tt.name)
		if len(got) != len(tt.want) {
			t.Errorf("ResolveName(%q) = %v, want %v", tt.name, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("ResolveName(%q)[%d] = %s, want %s", tt.name, i, got[i], tt.want[i])
			}
		}
	}
}

func TestBuild_DuplicatePersonLastWins(t *testing.T) {
	store := Build(
		[]models.Person{
			makePerson("1", "Old Name", 0),
			makePerson("1", "New Name", 0),
		},
		nil, nil,
	)

	if got := store.ResolveName("Old Name"); got != nil {
		t.Errorf("old name still resolves to %v", got)
	}
	if got := store.ResolveName("New Name"); len(got) != 1 || got[0] != "1" {
		t.Errorf("ResolveName(New Name) = %v", got)
	}
	if store.Stats().People != 1 {
		t.Errorf("People = %d, want 1", store.Stats().People)
	}
}

func TestNameIndex_AddIsIdempotent(t *testing.T) {
	idx := make(NameIndex)
	idx.Add("Kevin Bacon", "102")
	idx.Add("kevin bacon", "102")
	idx.Add("Kevin Bacon", "101")

	got := idx.Resolve("KEVIN BACON")
	if len(got) != 2 || got[0] != "101" || got[1] != "102" {
		t.Errorf("Resolve = %v, want [101 102]", got)
	}
}

func TestDescribe(t *testing.T) {
	store := buildCostarStore(t)
	links, err := Describe(store, models.Path{
		Source: "A", Target: "C",
		Steps: []models.Step{{MovieID: "M1", PersonID: "B"}, {MovieID: "M2", PersonID: "C"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 2 {
		t.Fatalf("links = %v", links)
	}
	if links[0].FromName != "Alice" || links[0].ToName != "Bob" || links[0].MovieTitle != "First Movie" {
		t.Errorf("links[0] = %+v", links[0])
	}
	if links[1].FromName != "Bob" || links[1].ToName != "Carol" || links[1].MovieYear != 2004 {
		t.Errorf("links[1] = %+v", links[1])
	}

	_, err = Describe(store, models.Path{Source: "A", Target: "B", Steps: []models.Step{{MovieID: "M404", PersonID: "B"}}})
	if err == nil {
		t.Error("expected error for unknown movie")
	}
}

func TestCoStars(t *testing.T) {
	store := buildCostarStore(t)

	links := CoStars(store, "B")
	if len(links) != 2 {
		t.Fatalf("co-stars of B = %+v", links)
	}
	if links[0].ToName != "Alice" || links[0].MovieTitle != "First Movie" {
		t.Errorf("links[0] = %+v", links[0])
	}
	if links[1].ToName != "Carol" || links[1].MovieID != "M2" {
		t.Errorf("links[1] = %+v", links[1])
	}

	if got := CoStars(store, "D"); len(got) != 0 {
		t.Errorf("isolated person should have no co-stars, got %v", got)
	}
	if got := CoStars(store, "Z"); got != nil {
		t.Errorf("unknown person should return nil, got %v", got)
	}
}

package graph

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matijazezelj/degrees/internal/search"
	"github.com/matijazezelj/degrees/pkg/models"
)

func TestShortestPath_TwoHops(t *testing.T) {
	engine := NewLocalEngine(buildCostarStore(t), nil)

	res, err := engine.ShortestPath(context.Background(), "A", "C")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Found {
		t.Fatal("expected a path")
	}
	want := []models.Step{{MovieID: "M1", PersonID: "B"}, {MovieID: "M2", PersonID: "C"}}
	if len(res.Path.Steps) != 2 {
		t.Fatalf("steps = %v, want %v", res.Path.Steps, want)
	}
	for i := range want {
		if res.Path.Steps[i] != want[i] {
			t.Errorf("step %d = %v, want %v", i, res.Path.Steps[i], want[i])
		}
	}
}

func TestShortestPath_Direct(t *testing.T) {
	engine := NewLocalEngine(buildCostarStore(t), nil)

	res, err := engine.ShortestPath(context.Background(), "A", "B")
	if err != nil {
		t.Fatal(err)
	}
	if res.Path.Degrees() != 1 {
		t.Errorf("degrees = %d, want 1", res.Path.Degrees())
	}
}

func TestShortestPath_Self(t *testing.T) {
	engine := NewLocalEngine(buildCostarStore(t), nil)

	res, err := engine.ShortestPath(context.Background(), "A", "A")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Found || res.Path.Degrees() != 0 {
		t.Errorf("found = %v, degrees = %d; want found, 0", res.Found, res.Path.Degrees())
	}
}

func TestShortestPath_NoPath(t *testing.T) {
	engine := NewLocalEngine(buildCostarStore(t), nil)

	res, err := engine.ShortestPath(context.Background(), "A", "D")
	if err != nil {
		t.Fatalf("disconnected people should not be an error: %v", err)
	}
	if res.Found {
		t.Errorf("expected no path, got %v", res.Path.Steps)
	}
}

func TestShortestPath_UnknownPerson(t *testing.T) {
	engine := NewLocalEngine(buildCostarStore(t), nil)

	_, err := engine.ShortestPath(context.Background(), "A", "Z")
	if !errors.Is(err, search.ErrUnknownPerson) {
		t.Errorf("err = %v, want ErrUnknownPerson", err)
	}
}

func TestShortestPath_Deadline(t *testing.T) {
	engine := NewLocalEngine(buildCostarStore(t), nil)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := engine.ShortestPath(ctx, "A", "C")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want DeadlineExceeded", err)
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		res  search.Result
		err  error
		want string
	}{
		{search.Result{Found: true}, nil, "found"},
		{search.Result{}, nil, "not_connected"},
		{search.Result{}, search.ErrUnknownPerson, "unknown_person"},
		{search.Result{}, context.Canceled, "canceled"},
		{search.Result{}, context.DeadlineExceeded, "canceled"},
		{search.Result{}, errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		if got := outcome(tt.res, tt.err); got != tt.want {
			t.Errorf("outcome(%v, %v) = %q, want %q", tt.res.Found, tt.err, got, tt.want)
		}
	}
}

package graph

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matijazezelj/degrees/internal/search"
	"github.com/matijazezelj/degrees/pkg/models"
	"gopkg.in/yaml.v3"
)

// Export formats accepted by ExportPath.
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatDOT     = "dot"
	FormatMermaid = "mermaid"
)

// PathReport is a search result resolved to display names.
type PathReport struct {
	Source    models.Person `json:"source" yaml:"source"`
	Target    models.Person `json:"target" yaml:"target"`
	Connected bool          `json:"connected" yaml:"connected"`
	Degrees   int           `json:"degrees" yaml:"degrees"`
	Links     []models.Link `json:"links" yaml:"links"`
}

// NewPathReport resolves res against store.
func NewPathReport(store Store, res search.Result) (*PathReport, error) {
	src, ok := store.Person(res.Path.Source)
	if !ok {
		return nil, fmt.Errorf("unknown person %q", res.Path.Source)
	}
	dst, ok := store.Person(res.Path.Target)
	if !ok {
		return nil, fmt.Errorf("unknown person %q", res.Path.Target)
	}
	src.Movies, dst.Movies = nil, nil

	report := &PathReport{Source: src, Target: dst, Connected: res.Found, Links: []models.Link{}}
	if !res.Found {
		return report, nil
	}
	links, err := Describe(store, res.Path)
	if err != nil {
		return nil, err
	}
	report.Links = links
	report.Degrees = len(links)
	return report, nil
}

// ExportPath renders a search result in the given format.
func ExportPath(store Store, res search.Result, format string) (string, error) {
	report, err := NewPathReport(store, res)
	if err != nil {
		return "", err
	}

	switch format {
	case FormatText, "":
		return reportText(report), nil
	case FormatJSON:
		b, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return "", err
		}
		return string(b) + "\n", nil
	case FormatYAML:
		b, err := yaml.Marshal(report)
		if err != nil {
			return "", err
		}
		return string(b), nil
	case FormatDOT:
		return reportDOT(report), nil
	case FormatMermaid:
		return reportMermaid(report), nil
	default:
		return "", fmt.Errorf("unsupported format %q (use: text, json, yaml, dot, mermaid)", format)
	}
}

func reportText(r *PathReport) string {
	if !r.Connected {
		return "Not connected.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d degrees of separation.\n", r.Degrees)
	for i, l := range r.Links {
		fmt.Fprintf(&b, "%d: %s and %s starred in %s\n", i+1, l.FromName, l.ToName, l.MovieTitle)
	}
	return b.String()
}

func reportDOT(r *PathReport) string {
	var b strings.Builder
	b.WriteString("graph degrees {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=filled, fillcolor=\"#AED6F1\"];\n\n")

	fmt.Fprintf(&b, "  %q [label=%q];\n", r.Source.ID, r.Source.Name)
	for _, l := range r.Links {
		fmt.Fprintf(&b, "  %q [label=%q];\n", l.ToID, l.ToName)
	}
	if len(r.Links) > 0 {
		b.WriteString("\n")
	}
	for _, l := range r.Links {
		fmt.Fprintf(&b, "  %q -- %q [label=%q];\n", l.FromID, l.ToID, movieLabel(l))
	}
	b.WriteString("}\n")
	return b.String()
}

func reportMermaid(r *PathReport) string {
	var b strings.Builder
	b.WriteString("graph LR\n")
	fmt.Fprintf(&b, "  %s[\"%s\"]\n", mermaidSafeID(r.Source.ID), r.Source.Name)
	for _, l := range r.Links {
		fmt.Fprintf(&b, "  %s[\"%s\"]\n", mermaidSafeID(l.ToID), l.ToName)
	}
	for _, l := range r.Links {
		fmt.Fprintf(&b, "  %s ---|%s| %s\n", mermaidSafeID(l.FromID), movieLabel(l), mermaidSafeID(l.ToID))
	}
	return b.String()
}

func movieLabel(l models.Link) string {
	if l.MovieYear > 0 {
		return fmt.Sprintf("%s (%d)", l.MovieTitle, l.MovieYear)
	}
	return l.MovieTitle
}

func mermaidSafeID(id string) string {
	r := strings.NewReplacer(":", "_", ".", "_", "-", "_", "/", "_", " ", "_")
	return "p_" + r.Replace(id)
}

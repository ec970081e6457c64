package domain

import (
	"strings"

	"github.com/wayfarer-app/wayfarer/internal/domain/geo"
)

// ExperienceDocument is the denormalized search-index projection of an
// experience plus its scenes. It carries only what ranking needs; the
// relational store remains the source of truth for display data.
type ExperienceDocument struct {
	ID                 string
	Title              string
	Description        string
	ScenesTitles       string
	ScenesDescriptions string
	AuthorID           string
	SavesCount         int
	Center             geo.Point
}

// NewExperienceDocument deterministically projects an experience and the
// complete current list of its scenes into a search document. Scene titles
// and descriptions are space-joined so a query can match child content; the
// center is the flat mean of scene coordinates ((0,0) when there are none).
func NewExperienceDocument(e Experience, scenes []Scene) ExperienceDocument {
	titles := make([]string, len(scenes))
	descriptions := make([]string, len(scenes))
	points := make([]geo.Point, len(scenes))
	for i, s := range scenes {
		titles[i] = s.Title
		descriptions[i] = s.Description
		points[i] = geo.Point{Latitude: s.Latitude, Longitude: s.Longitude}
	}

	return ExperienceDocument{
		ID:                 e.ID,
		Title:              e.Title,
		Description:        e.Description,
		ScenesTitles:       strings.Join(titles, " "),
		ScenesDescriptions: strings.Join(descriptions, " "),
		AuthorID:           e.AuthorID,
		SavesCount:         e.SavesCount,
		Center:             geo.Centroid(points),
	}
}

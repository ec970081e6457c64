package search

import (
	"math"

	"github.com/wayfarer-app/wayfarer/internal/domain"
	"github.com/wayfarer-app/wayfarer/internal/domain/fuzzy"
	"github.com/wayfarer-app/wayfarer/internal/domain/geo"
)

// geoHalfDistanceMeters is the distance at which the location boost drops
// to half strength. The decay is harmonic, not a cutoff, so far documents
// still rank, just lower.
const geoHalfDistanceMeters = 100_000.0

// popularityExponent keeps the saves boost monotone but sub-linear, so a
// popular document outranks an equally-matching unpopular one without
// popularity alone overwhelming text relevance.
const popularityExponent = 0.3

// score combines text relevance, popularity, and proximity multiplicatively.
// queryTokens may be empty (browse mode) and origin may be nil (no location).
func score(doc domain.ExperienceDocument, queryTokens []string, origin *geo.Point) float64 {
	return textScore(doc, queryTokens) * popularityBoost(doc.SavesCount) * locationBoost(doc, origin)
}

// textScore is the best per-field match ratio across the four text fields.
// A field's ratio is matched field tokens over total field tokens, so a
// short exact title outranks a long title containing the same word. With no
// query tokens every document scores 1.0.
func textScore(doc domain.ExperienceDocument, queryTokens []string) float64 {
	if len(queryTokens) == 0 {
		return 1.0
	}
	best := 0.0
	for _, field := range []string{doc.Title, doc.Description, doc.ScenesTitles, doc.ScenesDescriptions} {
		if r := fieldRatio(field, queryTokens); r > best {
			best = r
		}
	}
	return best
}

func fieldRatio(field string, queryTokens []string) float64 {
	fieldTokens := fuzzy.Tokenize(field)
	if len(fieldTokens) == 0 {
		return 0
	}
	matched := 0
	for _, ft := range fieldTokens {
		for _, qt := range queryTokens {
			if fuzzy.Match(qt, ft) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(fieldTokens))
}

func popularityBoost(saves int) float64 {
	return math.Pow(1+float64(saves), popularityExponent)
}

func locationBoost(doc domain.ExperienceDocument, origin *geo.Point) float64 {
	if origin == nil {
		return 1.0
	}
	d := geo.Haversine(origin.Latitude, origin.Longitude, doc.Center.Latitude, doc.Center.Longitude)
	return 1.0 / (1.0 + d/geoHalfDistanceMeters)
}

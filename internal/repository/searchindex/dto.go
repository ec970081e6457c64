package searchindex

import (
	"strconv"
	"strings"

	"github.com/wayfarer-app/wayfarer/internal/domain"
	"github.com/wayfarer-app/wayfarer/internal/domain/geo"
)

// Hash field names of an experience document. author_id is a TAG (exact
// match only); the four text fields are TEXT; the rest are NUMERIC.
const (
	fieldID                 = "id"
	fieldTitle              = "title"
	fieldDescription        = "description"
	fieldScenesTitles       = "scenes_titles"
	fieldScenesDescriptions = "scenes_descriptions"
	fieldAuthorID           = "author_id"
	fieldSavesCount         = "saves_count"
	fieldCenterLatitude     = "center_latitude"
	fieldCenterLongitude    = "center_longitude"
)

func docToFields(doc domain.ExperienceDocument) map[string]string {
	return map[string]string{
		fieldID:                 doc.ID,
		fieldTitle:              doc.Title,
		fieldDescription:        doc.Description,
		fieldScenesTitles:       doc.ScenesTitles,
		fieldScenesDescriptions: doc.ScenesDescriptions,
		fieldAuthorID:           doc.AuthorID,
		fieldSavesCount:         strconv.Itoa(doc.SavesCount),
		fieldCenterLatitude:     strconv.FormatFloat(doc.Center.Latitude, 'f', -1, 64),
		fieldCenterLongitude:    strconv.FormatFloat(doc.Center.Longitude, 'f', -1, 64),
	}
}

func docFromFields(key string, fields map[string]string) domain.ExperienceDocument {
	doc := domain.ExperienceDocument{
		ID:                 fields[fieldID],
		Title:              fields[fieldTitle],
		Description:        fields[fieldDescription],
		ScenesTitles:       fields[fieldScenesTitles],
		ScenesDescriptions: fields[fieldScenesDescriptions],
		AuthorID:           fields[fieldAuthorID],
	}
	if doc.ID == "" {
		doc.ID = strings.TrimPrefix(key, keyPrefix)
	}
	if v, err := strconv.Atoi(fields[fieldSavesCount]); err == nil {
		doc.SavesCount = v
	}
	var center geo.Point
	if v, err := strconv.ParseFloat(fields[fieldCenterLatitude], 64); err == nil {
		center.Latitude = v
	}
	if v, err := strconv.ParseFloat(fields[fieldCenterLongitude], 64); err == nil {
		center.Longitude = v
	}
	doc.Center = center
	return doc
}

package domain

// Scene is a single point of interest belonging to one experience.
type Scene struct {
	ID           string
	Title        string
	Description  string
	Latitude     float64
	Longitude    float64
	ExperienceID string
}

package domain

// Experience is a shareable travel itinerary authored by a person.
// IsMine and IsSaved are viewer-relative and only meaningful after
// reconciliation against a concrete viewer.
type Experience struct {
	ID          string
	Title       string
	Description string
	AuthorID    string
	ShareID     string
	SavesCount  int
	IsMine      bool
	IsSaved     bool
}

// Person is an account that authors and saves experiences.
type Person struct {
	ID          string
	Username    string
	IsConfirmed bool
}

package ratings

import "time"

// Dataset is an uploaded ratings file owned by a user.
type Dataset struct {
	ID         string
	UserID     string
	Kind       Kind
	FileName   string
	MimeType   string
	SizeBytes  int64
	StorageKey string
	RowCount   int
	CreatedAt  time.Time
}

package ratings

import "time"

// DatasetResponse is the outward-facing representation of a dataset.
type DatasetResponse struct {
	DatasetID  string    `json:"datasetId"`
	Kind       Kind      `json:"kind"`
	FileName   string    `json:"fileName"`
	MimeType   string    `json:"mimeType"`
	SizeBytes  int64     `json:"sizeBytes"`
	RowCount   int       `json:"rowCount"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func toResponse(d Dataset) DatasetResponse {
	return DatasetResponse{
		DatasetID:  d.ID,
		Kind:       d.Kind,
		FileName:   d.FileName,
		MimeType:   d.MimeType,
		SizeBytes:  d.SizeBytes,
		RowCount:   d.RowCount,
		UploadedAt: d.CreatedAt,
	}
}

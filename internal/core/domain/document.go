package domain

import "time"

// StoredFile is the result of persisting an upload in the file store.
type StoredFile struct {
	Reference   string
	ContentType string
	Size        int64
	Checksum    string
}

// StoredDocument is an uploaded document attached to a request.
type StoredDocument struct {
	Reference        string           `json:"reference"`
	RequestID        string           `json:"requestID"`
	Category         DocumentCategory `json:"category"`
	OriginalFilename string           `json:"originalFilename"`
	ContentType      string           `json:"contentType"`
	Size             int64            `json:"size"`
	Checksum         string           `json:"checksum"`
	UploadedBy       string           `json:"uploadedBy"`
	UploadedAt       time.Time        `json:"uploadedAt"`
}

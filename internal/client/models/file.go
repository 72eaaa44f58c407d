package models

import "time"

type UploadStatus string

const (
	UploadUploading UploadStatus = "uploading"
	UploadSuccess   UploadStatus = "success"
	UploadError     UploadStatus = "error"
)

// Terminal reports whether no further transition can happen.
func (s UploadStatus) Terminal() bool {
	return s == UploadSuccess || s == UploadError
}

// UploadTask is the client-side record of a single file transfer.
type UploadTask struct {
	ID       string
	BatchID  string
	Filename string
	Size     int64
	Status   UploadStatus
	Progress int
	Err      string
}

// FileRecord is a server-confirmed stored document.
type FileRecord struct {
	Filename   string
	Size       int64
	UploadedAt time.Time
}

// StoredFile is the server metadata returned for a successful upload.
type StoredFile struct {
	Filename      string  `json:"filename"`
	Message       string  `json:"message"`
	ChunksCreated int     `json:"chunks_created"`
	FileSizeKB    float64 `json:"file_size_kb"`
}

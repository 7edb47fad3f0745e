package domain

import (
	"time"
)

// VideoStatus definition video status
type VideoStatus string

const (
	//VideoPending video waits for a worker
	VideoPending VideoStatus = "PENDING"
	//VideoCompleted transcode finished, stream is playable
	VideoCompleted VideoStatus = "COMPLETED"
	//VideoFailed transcode failed, no playable output
	VideoFailed VideoStatus = "FAILED"
)

// Terminal reports whether the status allows no further transition.
func (s VideoStatus) Terminal() bool {
	return s == VideoCompleted || s == VideoFailed
}

// Video definition video record. HLSPath is set exactly when the status
// reaches COMPLETED; a FAILED or PENDING record never advertises a stream.
type Video struct {
	ID               string `gorm:"primaryKey"`
	OriginalFileName string
	StorageKey       string `gorm:"uniqueIndex"` // object key in the raw bucket
	Status           VideoStatus
	HLSPath          *string `gorm:"column:hls_path"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Playable reports whether the record points at a finished stream.
func (v *Video) Playable() bool {
	return v.Status == VideoCompleted && v.HLSPath != nil
}

// VideoSummary is the JSON shape returned by the status endpoints.
type VideoSummary struct {
	ID               string  `json:"id"`
	Status           string  `json:"status"`
	HLSPath          *string `json:"hlsPath"`
	StorageKey       string  `json:"storageKey"`
	OriginalFileName string  `json:"originalFileName"`
	CreatedAt        string  `json:"createdAt,omitempty"`
	UpdatedAt        string  `json:"updatedAt,omitempty"`
}

// Summary converts the record to its response shape.
func (v *Video) Summary() VideoSummary {
	return VideoSummary{
		ID:               v.ID,
		Status:           string(v.Status),
		HLSPath:          v.HLSPath,
		StorageKey:       v.StorageKey,
		OriginalFileName: v.OriginalFileName,
		CreatedAt:        v.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// UploadVideoRes usecase upload video response
type UploadVideoRes struct {
	VideoID    string `json:"videoId"`
	Status     string `json:"status"`
	StorageKey string `json:"storageKey"`
}

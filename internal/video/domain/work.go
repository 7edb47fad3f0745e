package domain

import (
	"encoding/json"
	"errors"
	"path/filepath"
)

const (
	//QueueName definition transcode queue name
	QueueName = "video_processing_queue"
	//RawBucket bucket holding uploaded originals
	RawBucket = "videos-raw"
	//ProcessedBucket bucket holding transcoded HLS output
	ProcessedBucket = "videos-processed"
	//ManifestFileName HLS playlist name inside each video's prefix
	ManifestFileName = "index.m3u8"
	//ManifestContentType HLS playlist MIME type
	ManifestContentType = "application/vnd.apple.mpegurl"
	//SegmentContentType HLS media segment MIME type
	SegmentContentType = "video/mp2t"
)

// ErrInvalidJob job payload does not carry a video id
var ErrInvalidJob = errors.New("transcode job payload missing videoId")

// TranscodeJob definition transcode queue message. The video id is the only
// contract; unknown fields are ignored.
type TranscodeJob struct {
	VideoID string `json:"videoId"`
}

// DecodeTranscodeJob parses a queue payload and fails closed on any shape
// mismatch so malformed messages are dropped, not retried.
func DecodeTranscodeJob(body []byte) (TranscodeJob, error) {
	var job TranscodeJob
	if err := json.Unmarshal(body, &job); err != nil {
		return TranscodeJob{}, err
	}
	if job.VideoID == "" {
		return TranscodeJob{}, ErrInvalidJob
	}
	return job, nil
}

// ContentTypeFor maps an HLS output file name to its MIME type.
func ContentTypeFor(fileName string) string {
	if filepath.Ext(fileName) == ".m3u8" {
		return ManifestContentType
	}
	return SegmentContentType
}

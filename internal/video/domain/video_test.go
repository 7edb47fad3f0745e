package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVideoStatusTerminal(t *testing.T) {
	assert.False(t, VideoPending.Terminal())
	assert.True(t, VideoCompleted.Terminal())
	assert.True(t, VideoFailed.Terminal())
}

func TestPlayableInvariant(t *testing.T) {
	hls := "vid-1/index.m3u8"

	t.Run("completed with manifest is playable", func(t *testing.T) {
		v := Video{ID: "vid-1", Status: VideoCompleted, HLSPath: &hls}
		assert.True(t, v.Playable())
	})

	t.Run("pending and failed never advertise a stream", func(t *testing.T) {
		assert.False(t, (&Video{Status: VideoPending}).Playable())
		assert.False(t, (&Video{Status: VideoFailed}).Playable())
	})
}

func TestDecodeTranscodeJob(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		job, err := DecodeTranscodeJob([]byte(`{"videoId":"vid-1"}`))
		assert.NoError(t, err)
		assert.Equal(t, "vid-1", job.VideoID)
	})

	t.Run("unknown fields ignored", func(t *testing.T) {
		job, err := DecodeTranscodeJob([]byte(`{"videoId":"vid-1","priority":9}`))
		assert.NoError(t, err)
		assert.Equal(t, "vid-1", job.VideoID)
	})

	t.Run("malformed JSON fails closed", func(t *testing.T) {
		_, err := DecodeTranscodeJob([]byte(`not json`))
		assert.Error(t, err)
	})

	t.Run("missing videoId fails closed", func(t *testing.T) {
		_, err := DecodeTranscodeJob([]byte(`{}`))
		assert.ErrorIs(t, err, ErrInvalidJob)
	})

	t.Run("empty videoId fails closed", func(t *testing.T) {
		_, err := DecodeTranscodeJob([]byte(`{"videoId":""}`))
		assert.ErrorIs(t, err, ErrInvalidJob)
	})
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, ManifestContentType, ContentTypeFor("index.m3u8"))
	assert.Equal(t, SegmentContentType, ContentTypeFor("segment_000.ts"))
	assert.Equal(t, SegmentContentType, ContentTypeFor("whatever.bin"))
}

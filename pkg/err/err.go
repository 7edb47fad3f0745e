package errprocess

import (
	"errors"
	"fmt"

	"live_stream_service/pkg/logger"
)

// Kind classifies a pipeline failure so handlers can map it to a response.
type Kind int

const (
	// KindInternal unclassified failure
	KindInternal Kind = iota
	// KindClientInput bad request payload, e.g. missing upload file
	KindClientInput
	// KindNotFound missing video record or processed asset
	KindNotFound
	// KindUpstream queue, store or downstream service unreachable
	KindUpstream
	// KindTranscode ffmpeg nonzero exit or missing output
	KindTranscode
	// KindPersistence status record write failed
	KindPersistence
)

type kindError struct {
	kind Kind
	msg  string
	err  error
}

func (e *kindError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s : %v", e.msg, e.err)
	}
	return e.msg
}

func (e *kindError) Unwrap() error { return e.err }

// Set logs errMsg and returns it as an error.
func Set(errMsg string) error {
	logger.Log.Error(errMsg)
	return errors.New(errMsg)
}

// SetKind logs errMsg and returns an error carrying the given kind,
// wrapping cause when non-nil.
func SetKind(kind Kind, errMsg string, cause error) error {
	e := &kindError{kind: kind, msg: errMsg, err: cause}
	logger.Log.Error(e.Error())
	return e
}

// KindOf reports the classification of err, KindInternal when untagged.
func KindOf(err error) Kind {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

package repositories

import (
	"errors"
	"io"
	"time"
)

var (
	ErrStagingExists   = errors.New("staging directory already exists")
	ErrStagingNotFound = errors.New("staging file not found")
)

type StagingEntry struct {
	VideoID string
	ModTime time.Time
}

// StagedWriter appends to the staged original file.
type StagedWriter interface {
	io.Writer
	Sync() error
	Close() error
}

// StagingRepository owns uploads/{videoId}/ on local disk.
type StagingRepository interface {
	Create(videoID string) error
	WritePreview(videoID string, r io.Reader, size int64) error
	// OpenOriginal opens the original file for writing at offset. Bytes past
	// offset are discarded so a resumed write never leaves stale data behind.
	OpenOriginal(videoID string, offset int64) (StagedWriter, error)
	OriginalExists(videoID string) bool
	OriginalPath(videoID string) string
	PreviewPath(videoID string) (string, bool)
	Remove(videoID string) error
	List() ([]StagingEntry, error)
	Dir() string
}

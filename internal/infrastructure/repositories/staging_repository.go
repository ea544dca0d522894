package repositories

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	domain "video-uploader/internal/domain/repositories"
	"video-uploader/internal/pkg/logger"
	"video-uploader/pkg/constants"

	"go.uber.org/zap"
)

// StagingRepository stages Local uploads under {dir}/{videoId}/.
type StagingRepository struct {
	dir       string
	log       *zap.Logger
	activeOps map[string]int
	opsMutex  sync.Mutex
}

func NewStagingRepository(dir string, log *zap.Logger) *StagingRepository {
	return &StagingRepository{
		dir:       dir,
		log:       logger.Named(log, "staging"),
		activeOps: make(map[string]int),
	}
}

func (r *StagingRepository) Dir() string {
	return r.dir
}

func (r *StagingRepository) videoDir(videoID string) string {
	return filepath.Join(r.dir, filepath.Base(videoID))
}

func (r *StagingRepository) OriginalPath(videoID string) string {
	return filepath.Join(r.videoDir(videoID), constants.OriginalFileName)
}

func (r *StagingRepository) PreviewPath(videoID string) (string, bool) {
	path := filepath.Join(r.videoDir(videoID), constants.PreviewFileName)
	if _, err := os.Stat(path); err != nil {
		return path, false
	}
	return path, true
}

func (r *StagingRepository) incrementActiveOps(videoID string) {
	r.opsMutex.Lock()
	defer r.opsMutex.Unlock()
	r.activeOps[videoID]++
}

func (r *StagingRepository) decrementActiveOps(videoID string) {
	r.opsMutex.Lock()
	defer r.opsMutex.Unlock()
	r.activeOps[videoID]--
	if r.activeOps[videoID] <= 0 {
		delete(r.activeOps, videoID)
	}
}

func (r *StagingRepository) getActiveOps(videoID string) int {
	r.opsMutex.Lock()
	defer r.opsMutex.Unlock()
	return r.activeOps[videoID]
}

// Create makes the staging directory and an empty original file. It fails
// with ErrStagingExists when the directory is already there.
func (r *StagingRepository) Create(videoID string) error {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("create staging root: %w", err)
	}

	dir := r.videoDir(videoID)
	if err := os.Mkdir(dir, 0755); err != nil {
		if errors.Is(err, os.ErrExist) {
			return domain.ErrStagingExists
		}
		return fmt.Errorf("create staging dir: %w", err)
	}

	f, err := os.OpenFile(r.OriginalPath(videoID), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("create original file: %w", err)
	}
	return f.Close()
}

// WritePreview streams exactly size bytes into the preview file. A partial
// preview is never left behind.
func (r *StagingRepository) WritePreview(videoID string, src io.Reader, size int64) error {
	r.incrementActiveOps(videoID)
	defer r.decrementActiveOps(videoID)

	finalPath := filepath.Join(r.videoDir(videoID), constants.PreviewFileName)
	tmpPath := fmt.Sprintf("%s.tmp.%d", finalPath, time.Now().UnixNano())

	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create preview file: %w", err)
	}

	var fileClosed bool
	defer func() {
		if !fileClosed {
			tmpFile.Close()
		}
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			r.log.Warn("tmp preview not removed", zap.String("path", tmpPath), zap.Error(err))
		}
	}()

	written, err := io.Copy(tmpFile, io.LimitReader(src, size))
	if err != nil {
		return fmt.Errorf("write preview: %w", err)
	}
	if written != size {
		return fmt.Errorf("write preview: got %d of %d bytes: %w", written, size, io.ErrUnexpectedEOF)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close preview: %w", err)
	}
	fileClosed = true

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("commit preview: %w", err)
	}
	return nil
}

func (r *StagingRepository) OriginalExists(videoID string) bool {
	info, err := os.Stat(r.OriginalPath(videoID))
	return err == nil && info.Mode().IsRegular()
}

func (r *StagingRepository) OpenOriginal(videoID string, offset int64) (domain.StagedWriter, error) {
	f, err := os.OpenFile(r.OriginalPath(videoID), os.O_WRONLY, 0644)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrStagingNotFound
		}
		return nil, fmt.Errorf("open original: %w", err)
	}
	if err := f.Truncate(offset); err != nil {
		f.Close()
		return nil, fmt.Errorf("truncate original to %d: %w", offset, err)
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("seek original to %d: %w", offset, err)
	}

	r.incrementActiveOps(videoID)
	return &trackedFile{File: f, done: func() { r.decrementActiveOps(videoID) }}, nil
}

// trackedFile releases its active-op slot on Close so Remove can wait for it.
type trackedFile struct {
	*os.File
	once sync.Once
	done func()
}

func (f *trackedFile) Close() error {
	err := f.File.Close()
	f.once.Do(f.done)
	return err
}

// Remove deletes the staging directory, waiting briefly for in-flight writes.
func (r *StagingRepository) Remove(videoID string) error {
	maxWait := 50 // 50 * 100ms
	for i := 0; i < maxWait; i++ {
		if r.getActiveOps(videoID) == 0 {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	dir := r.videoDir(videoID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt*100) * time.Millisecond)
		}
		if err := os.RemoveAll(dir); err != nil {
			lastErr = err
			r.log.Warn("staging removal failed",
				zap.Int("attempt", attempt+1), zap.String("dir", dir), zap.Error(err))
			continue
		}
		return nil
	}
	return fmt.Errorf("remove staging dir after 3 attempts: %w", lastErr)
}

func (r *StagingRepository) List() ([]domain.StagingEntry, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read staging root: %w", err)
	}

	result := make([]domain.StagingEntry, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		result = append(result, domain.StagingEntry{VideoID: entry.Name(), ModTime: info.ModTime()})
	}
	return result, nil
}

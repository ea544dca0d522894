package processor

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"video-uploader/internal/domain/repositories"
	"video-uploader/internal/pkg/logger"
	apperrors "video-uploader/pkg/errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var contentTypes = map[string]string{
	".m3u8": "application/vnd.apple.mpegurl",
	".ts":   "video/mp2t",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".vtt":  "text/vtt",
}

// ContentTypeFor returns the object content type for a published file.
func ContentTypeFor(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Publisher uploads a finished working directory to the blob store.
type Publisher struct {
	store       repositories.BlobStore
	concurrency int
	log         *zap.Logger
}

func NewPublisher(store repositories.BlobStore, concurrency int, log *zap.Logger) *Publisher {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Publisher{store: store, concurrency: concurrency, log: logger.Named(log, "publisher")}
}

// ObjectKey joins a prefix and a path relative to the working directory.
func ObjectKey(prefix, rel string) string {
	return path.Join(prefix, filepath.ToSlash(rel))
}

// Publish uploads every regular file under workDir to {keyPrefix}/{relative path}.
// Hidden entries are skipped. The first failed upload cancels the rest and is returned.
func (p *Publisher) Publish(ctx context.Context, workDir, keyPrefix string) error {
	files, err := publishable(workDir)
	if err != nil {
		return apperrors.ErrTransientIO(err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for _, rel := range files {
		file := filepath.Join(workDir, rel)
		key := ObjectKey(keyPrefix, rel)
		g.Go(func() error {
			return p.upload(gctx, file, key)
		})
	}
	if err := g.Wait(); err != nil {
		return apperrors.ErrTransientIO(err)
	}

	p.log.Info("artifacts published",
		zap.String("prefix", keyPrefix),
		zap.Int("objects", len(files)))
	return nil
}

// Retract deletes every key Publish would have written for workDir. It is
// best-effort and returns the first delete error after trying all keys.
func (p *Publisher) Retract(ctx context.Context, workDir, keyPrefix string) error {
	files, err := publishable(workDir)
	if err != nil {
		return apperrors.ErrTransientIO(err)
	}
	var first error
	for _, rel := range files {
		key := ObjectKey(keyPrefix, rel)
		if err := p.store.Delete(ctx, key); err != nil {
			p.log.Warn("retract failed", zap.String("key", key), zap.Error(err))
			if first == nil {
				first = err
			}
		}
	}
	if first != nil {
		return apperrors.ErrTransientIO(first)
	}
	return nil
}

// publishable lists regular files under workDir relative to it, skipping hidden entries.
func publishable(workDir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(workDir, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if name != workDir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(workDir, name)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", workDir, err)
	}
	return files, nil
}

func (p *Publisher) upload(ctx context.Context, file, key string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("open %s: %w", file, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", file, err)
	}
	if err := p.store.Put(ctx, key, f, info.Size(), ContentTypeFor(file)); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Verify checks that every listed relative path exists under keyPrefix.
func (p *Publisher) Verify(ctx context.Context, keyPrefix string, rels []string) error {
	for _, rel := range rels {
		key := ObjectKey(keyPrefix, rel)
		if _, err := p.store.Stat(ctx, key); err != nil {
			return apperrors.ErrTransientIO(fmt.Errorf("verify %s: %w", key, err))
		}
	}
	return nil
}

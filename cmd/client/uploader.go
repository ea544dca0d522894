package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"video-uploader/internal/domain/dto"
	"video-uploader/pkg/constants"
	apperrors "video-uploader/pkg/errors"
)

var errTerminal = errors.New("upload rejected")

// uploader drives the initiate/continue protocol. Chunks are sent in order;
// the server's uploadSize is authoritative and every conflict resets the
// local offset to it.
type uploader struct {
	base       string
	ownerID    string
	chunkSize  int64
	maxRetries int
	backoff    time.Duration
	http       *http.Client

	sent atomic.Int64
}

func newUploader(base, ownerID string, chunkSize int64) *uploader {
	return &uploader{
		base:       strings.TrimRight(base, "/"),
		ownerID:    ownerID,
		chunkSize:  chunkSize,
		maxRetries: 5,
		backoff:    time.Second,
		http:       &http.Client{Timeout: 10 * time.Minute},
	}
}

func (u *uploader) initiate(ctx context.Context, meta dto.InitiateUploadRequestDTO) (string, error) {
	raw, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.base+"/videos/upload/initiate", http.NoBody)
	if err != nil {
		return "", err
	}
	req.Header.Set("Upload-Metadata", base64.StdEncoding.EncodeToString(raw))

	var out dto.InitiateUploadResponse
	if err := u.do(req, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (u *uploader) status(ctx context.Context, id string) (*dto.UploadStatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.base+"/videos/upload/status?id="+url.QueryEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var out dto.UploadStatusResponse
	if err := u.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// upload sends src from the server's current offset until the declared size
// is reached. src must support ReadAt so a corrected offset can be resumed.
func (u *uploader) upload(ctx context.Context, id string, src io.ReaderAt, size int64) error {
	st, err := u.status(ctx, id)
	if err != nil {
		return err
	}
	offset := st.UploadSize
	u.sent.Store(offset)

	failures := 0
	for offset < size {
		end := offset + u.chunkSize
		if end > size {
			end = size
		}
		chunk := io.NewSectionReader(src, offset, end-offset)

		next, err := u.continueChunk(ctx, id, offset, chunk)
		var apiErr *apiError
		switch {
		case err == nil:
			failures = 0
			offset = next
			u.sent.Store(offset)
			continue
		case errors.As(err, &apiErr) && apiErr.Retry == constants.RetryCorrectedOffset && apiErr.UploadSize != nil:
			offset = *apiErr.UploadSize
			u.sent.Store(offset)
			continue
		case errors.As(err, &apiErr) && apiErr.Retry != constants.RetrySame:
			return fmt.Errorf("%w: %s", errTerminal, apiErr.Error())
		case ctx.Err() != nil:
			return ctx.Err()
		}

		failures++
		if failures > u.maxRetries {
			return fmt.Errorf("giving up after %d attempts: %w", failures, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(u.backoff * time.Duration(failures)):
		}
		// The connection may have dropped after bytes were persisted.
		if st, statusErr := u.status(ctx, id); statusErr == nil {
			offset = st.UploadSize
			u.sent.Store(offset)
		}
	}
	return nil
}

func (u *uploader) continueChunk(ctx context.Context, id string, from int64, body io.Reader) (int64, error) {
	q := url.Values{}
	q.Set("id", id)
	q.Set("from", strconv.FormatInt(from, 10))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.base+"/videos/upload/continue?"+q.Encode(), body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	var out dto.ContinueUploadResponse
	if err := u.do(req, &out); err != nil {
		return 0, err
	}
	return out.UploadSize, nil
}

type apiError struct {
	StatusCode int
	apperrors.ErrorResponse
}

func (e *apiError) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.ErrorResponse.Error, e.Message)
}

func (u *uploader) do(req *http.Request, out any) error {
	req.Header.Set("X-User-ID", u.ownerID)
	resp, err := u.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		apiErr := &apiError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&apiErr.ErrorResponse); err != nil {
			apiErr.ErrorResponse.Error = "unexpected_response"
			apiErr.Message = strings.TrimSpace(string(raw))
			apiErr.Retry = constants.RetrySame
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

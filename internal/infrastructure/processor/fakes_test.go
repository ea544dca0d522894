package processor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"video-uploader/internal/domain/repositories"
)

type call struct {
	Name string
	Args []string
}

type fakeRunner struct {
	mu    sync.Mutex
	calls []call
	fn    func(n int, name string, args []string) Result
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) Result {
	f.mu.Lock()
	n := len(f.calls)
	f.calls = append(f.calls, call{Name: name, Args: append([]string(nil), args...)})
	f.mu.Unlock()
	if f.fn == nil {
		return Result{}
	}
	return f.fn(n, name, args)
}

func (f *fakeRunner) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func argAfter(args []string, flag string) string {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	failKey string
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStore) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	if key == m.failKey {
		return errors.New("put refused")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, repositories.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStore) Stat(_ context.Context, key string) (*repositories.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, repositories.ErrObjectNotFound
	}
	return &repositories.ObjectInfo{Key: key, Size: int64(len(data)), ContentType: m.types[key]}, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memStore) URL(key string) string {
	return "mem://" + key
}

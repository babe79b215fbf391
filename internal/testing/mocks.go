package testing

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
)

// MockObjectStorage is a mock implementation of provisioning.ObjectStorage.
type MockObjectStorage struct {
	mock.Mock
}

var _ provisioning.ObjectStorage = (*MockObjectStorage)(nil)

// NewMockObjectStorage returns a mock reporting the Geneva SOS endpoint.
func NewMockObjectStorage() *MockObjectStorage {
	m := &MockObjectStorage{}
	m.On("Endpoint").Return("https://sos-ch-gva-2.exoscale.com").Maybe()
	m.On("Region").Return("ch-gva-2").Maybe()
	return m
}

// CreateBucket creates a bucket.
func (m *MockObjectStorage) CreateBucket(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// BucketExists reports whether a bucket exists.
func (m *MockObjectStorage) BucketExists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

// ListBuckets lists buckets whose name contains substr.
func (m *MockObjectStorage) ListBuckets(ctx context.Context, substr string) ([]string, error) {
	args := m.Called(ctx, substr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// EmptyAndDeleteBucket removes a bucket and its objects.
func (m *MockObjectStorage) EmptyAndDeleteBucket(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// Endpoint returns the S3 endpoint.
func (m *MockObjectStorage) Endpoint() string {
	return m.Called().String(0)
}

// Region returns the S3 region.
func (m *MockObjectStorage) Region() string {
	return m.Called().String(0)
}

// RecordingObserver is an Observer that keeps every event and message.
type RecordingObserver struct {
	mu       sync.Mutex
	events   []provisioning.Event
	messages []string
	fields   map[string]string
}

// NewRecordingObserver creates an empty recording observer.
func NewRecordingObserver() *RecordingObserver {
	return &RecordingObserver{fields: make(map[string]string)}
}

// Printf records the format string.
func (o *RecordingObserver) Printf(format string, _ ...interface{}) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, format)
}

// Event records event.
func (o *RecordingObserver) Event(event provisioning.Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
}

// Progress records a progress event.
func (o *RecordingObserver) Progress(stage string, _, _ int) {
	o.Event(provisioning.Event{Type: provisioning.EventProgress, Phase: stage})
}

// WithFields returns the same observer so derived loggers record here too.
func (o *RecordingObserver) WithFields(fields map[string]string) provisioning.Observer {
	o.mu.Lock()
	defer o.mu.Unlock()
	for k, v := range fields {
		o.fields[k] = v
	}
	return o
}

// Events returns recorded events, optionally filtered by type.
func (o *RecordingObserver) Events(types ...provisioning.EventType) []provisioning.Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(types) == 0 {
		return append([]provisioning.Event(nil), o.events...)
	}
	var out []provisioning.Event
	for _, e := range o.events {
		for _, t := range types {
			if e.Type == t {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// Messages returns recorded Printf format strings.
func (o *RecordingObserver) Messages() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.messages...)
}

package registry

import (
	"context"
	"sync"
)

// MockClient implements Client for tests. Unset funcs succeed.
type MockClient struct {
	BuildFunc func(ctx context.Context, spec BuildSpec) error
	LoginFunc func(ctx context.Context, creds Credentials) error
	TagFunc   func(ctx context.Context, source, target string) error
	PushFunc  func(ctx context.Context, ref string) error

	mu     sync.Mutex
	calls  []string
	pushed []string
}

func (m *MockClient) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

// Calls returns the method names called, in order.
func (m *MockClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Pushed returns the refs that were pushed successfully.
func (m *MockClient) Pushed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.pushed...)
}

func (m *MockClient) Build(ctx context.Context, spec BuildSpec) error {
	m.record("Build")
	if m.BuildFunc != nil {
		return m.BuildFunc(ctx, spec)
	}
	return nil
}

func (m *MockClient) Login(ctx context.Context, creds Credentials) error {
	m.record("Login")
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, creds)
	}
	return nil
}

func (m *MockClient) Tag(ctx context.Context, source, target string) error {
	m.record("Tag")
	if m.TagFunc != nil {
		return m.TagFunc(ctx, source, target)
	}
	return nil
}

func (m *MockClient) Push(ctx context.Context, ref string) error {
	m.record("Push")
	if m.PushFunc != nil {
		if err := m.PushFunc(ctx, ref); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.pushed = append(m.pushed, ref)
	m.mu.Unlock()
	return nil
}

var _ Client = (*MockClient)(nil)

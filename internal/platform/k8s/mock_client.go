package k8s

import (
	"context"
	"sync"

	corev1 "k8s.io/api/core/v1"
)

// MockClient is a test double for Client. Unset funcs succeed with empty
// results; applied secrets and manifests are recorded.
type MockClient struct {
	ApplyManifestsFunc  func(ctx context.Context, manifests []byte, fieldManager string) ([]ObjectRef, error)
	EnsureNamespaceFunc func(ctx context.Context, name string) (bool, error)
	NamespaceExistsFunc func(ctx context.Context, name string) (bool, error)
	DeleteNamespaceFunc func(ctx context.Context, name string) error
	ApplySecretFunc     func(ctx context.Context, secret *corev1.Secret) error
	DeleteSecretFunc    func(ctx context.Context, namespace, name string) error
	ListNodesFunc       func(ctx context.Context) ([]NodeStatus, error)
	ListPodsFunc        func(ctx context.Context, namespace string) ([]PodStatus, error)

	mu        sync.Mutex
	secrets   []*corev1.Secret
	manifests [][]byte
}

// Secrets returns every secret passed to ApplySecret.
func (m *MockClient) Secrets() []*corev1.Secret {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*corev1.Secret(nil), m.secrets...)
}

// Secret returns the last applied secret with the given name.
func (m *MockClient) Secret(name string) *corev1.Secret {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.secrets) - 1; i >= 0; i-- {
		if m.secrets[i].Name == name {
			return m.secrets[i]
		}
	}
	return nil
}

// Manifests returns every document set passed to ApplyManifests.
func (m *MockClient) Manifests() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.manifests...)
}

func (m *MockClient) ApplyManifests(ctx context.Context, manifests []byte, fieldManager string) ([]ObjectRef, error) {
	m.mu.Lock()
	m.manifests = append(m.manifests, manifests)
	m.mu.Unlock()
	if m.ApplyManifestsFunc != nil {
		return m.ApplyManifestsFunc(ctx, manifests, fieldManager)
	}
	return nil, nil
}

func (m *MockClient) EnsureNamespace(ctx context.Context, name string) (bool, error) {
	if m.EnsureNamespaceFunc != nil {
		return m.EnsureNamespaceFunc(ctx, name)
	}
	return true, nil
}

func (m *MockClient) NamespaceExists(ctx context.Context, name string) (bool, error) {
	if m.NamespaceExistsFunc != nil {
		return m.NamespaceExistsFunc(ctx, name)
	}
	return false, nil
}

func (m *MockClient) DeleteNamespace(ctx context.Context, name string) error {
	if m.DeleteNamespaceFunc != nil {
		return m.DeleteNamespaceFunc(ctx, name)
	}
	return nil
}

func (m *MockClient) ApplySecret(ctx context.Context, secret *corev1.Secret) error {
	if m.ApplySecretFunc != nil {
		if err := m.ApplySecretFunc(ctx, secret); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.secrets = append(m.secrets, secret)
	m.mu.Unlock()
	return nil
}

func (m *MockClient) DeleteSecret(ctx context.Context, namespace, name string) error {
	if m.DeleteSecretFunc != nil {
		return m.DeleteSecretFunc(ctx, namespace, name)
	}
	return nil
}

func (m *MockClient) ListNodes(ctx context.Context) ([]NodeStatus, error) {
	if m.ListNodesFunc != nil {
		return m.ListNodesFunc(ctx)
	}
	return nil, nil
}

func (m *MockClient) ListPods(ctx context.Context, namespace string) ([]PodStatus, error) {
	if m.ListPodsFunc != nil {
		return m.ListPodsFunc(ctx, namespace)
	}
	return nil, nil
}

var _ Client = (*MockClient)(nil)

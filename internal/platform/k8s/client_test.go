package k8s

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/kubernetes/fake"
	"k8s.io/client-go/restmapper"
	k8stesting "k8s.io/client-go/testing"
)

type patchRecorder struct {
	mu      sync.Mutex
	patches []k8stesting.PatchAction
}

func (r *patchRecorder) list() []k8stesting.PatchAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]k8stesting.PatchAction(nil), r.patches...)
}

func setupTestClient(t *testing.T, objects ...runtime.Object) (Client, *fake.Clientset, *patchRecorder) {
	t.Helper()

	//nolint:staticcheck // SA1019: NewSimpleClientset is sufficient for our testing needs
	clientset := fake.NewSimpleClientset(objects...)
	scheme := runtime.NewScheme()
	_ = corev1.AddToScheme(scheme)
	dynamicClient := dynamicfake.NewSimpleDynamicClient(scheme)

	rec := &patchRecorder{}
	dynamicClient.PrependReactor("patch", "*", func(action k8stesting.Action) (bool, runtime.Object, error) {
		pa := action.(k8stesting.PatchAction)
		rec.mu.Lock()
		rec.patches = append(rec.patches, pa)
		rec.mu.Unlock()
		return true, &unstructured.Unstructured{Object: map[string]any{}}, nil
	})

	return NewFromClients(clientset, dynamicClient, testMapper()), clientset, rec
}

func testMapper() meta.RESTMapper {
	resources := []*restmapper.APIGroupResources{
		{
			Group: metav1.APIGroup{
				Name:             "",
				Versions:         []metav1.GroupVersionForDiscovery{{GroupVersion: "v1", Version: "v1"}},
				PreferredVersion: metav1.GroupVersionForDiscovery{GroupVersion: "v1", Version: "v1"},
			},
			VersionedResources: map[string][]metav1.APIResource{
				"v1": {
					{Name: "configmaps", Namespaced: true, Kind: "ConfigMap"},
					{Name: "namespaces", Namespaced: false, Kind: "Namespace"},
					{Name: "services", Namespaced: true, Kind: "Service"},
				},
			},
		},
		{
			Group: metav1.APIGroup{
				Name:             "apps",
				Versions:         []metav1.GroupVersionForDiscovery{{GroupVersion: "apps/v1", Version: "v1"}},
				PreferredVersion: metav1.GroupVersionForDiscovery{GroupVersion: "apps/v1", Version: "v1"},
			},
			VersionedResources: map[string][]metav1.APIResource{
				"v1": {{Name: "deployments", Namespaced: true, Kind: "Deployment"}},
			},
		},
	}
	return restmapper.NewDiscoveryRESTMapper(resources)
}

const workloadYAML = `apiVersion: apps/v1
kind: Deployment
metadata:
  name: api
  namespace: career
spec:
  replicas: 2
---
---
apiVersion: v1
kind: Service
metadata:
  name: api-lb
  namespace: career
spec:
  type: LoadBalancer
---
apiVersion: v1
kind: Namespace
metadata:
  name: career
`

func TestApplyManifests(t *testing.T) {
	t.Parallel()
	c, _, rec := setupTestClient(t)

	applied, err := c.ApplyManifests(context.Background(), []byte(workloadYAML), FieldManager)
	require.NoError(t, err)
	assert.Equal(t, []ObjectRef{
		{Kind: "Deployment", Namespace: "career", Name: "api"},
		{Kind: "Service", Namespace: "career", Name: "api-lb"},
		{Kind: "Namespace", Name: "career"},
	}, applied)

	patches := rec.list()
	require.Len(t, patches, 3)
	for _, p := range patches {
		assert.Equal(t, "application/apply-patch+yaml", string(p.GetPatchType()))
	}
	assert.Equal(t, "career", patches[0].GetNamespace())
	assert.Equal(t, "", patches[2].GetNamespace())

	var body map[string]any
	require.NoError(t, json.Unmarshal(patches[1].GetPatch(), &body))
	assert.Equal(t, "LoadBalancer", body["spec"].(map[string]any)["type"])
}

func TestApplyManifests_DefaultsNamespace(t *testing.T) {
	t.Parallel()
	c, _, rec := setupTestClient(t)

	applied, err := c.ApplyManifests(context.Background(), []byte("apiVersion: v1\nkind: ConfigMap\nmetadata:\n  name: cfg\n"), FieldManager)
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, "default", applied[0].Namespace)
	assert.Equal(t, "default", rec.list()[0].GetNamespace())
}

func TestApplyManifests_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{name: "invalid yaml", yaml: `{invalid yaml: [`, wantErr: "failed to decode manifest"},
		{name: "unknown kind", yaml: "apiVersion: example.com/v1\nkind: Widget\nmetadata:\n  name: w\n", wantErr: "failed to get REST mapping"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, _, _ := setupTestClient(t)
			_, err := c.ApplyManifests(context.Background(), []byte(tt.yaml), FieldManager)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApplyManifests_EmptyInput(t *testing.T) {
	t.Parallel()
	c, _, rec := setupTestClient(t)
	applied, err := c.ApplyManifests(context.Background(), []byte("---\n---\n"), FieldManager)
	require.NoError(t, err)
	assert.Empty(t, applied)
	assert.Empty(t, rec.list())
}

func TestNamespaceLifecycle(t *testing.T) {
	t.Parallel()
	c, _, _ := setupTestClient(t)
	ctx := context.Background()

	exists, err := c.NamespaceExists(ctx, "career")
	require.NoError(t, err)
	assert.False(t, exists)

	created, err := c.EnsureNamespace(ctx, "career")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = c.EnsureNamespace(ctx, "career")
	require.NoError(t, err)
	assert.False(t, created, "second ensure is a no-op")

	exists, err = c.NamespaceExists(ctx, "career")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, c.DeleteNamespace(ctx, "career"))
	require.NoError(t, c.DeleteNamespace(ctx, "career"), "deleting a missing namespace succeeds")
}

func TestApplySecret_Replaces(t *testing.T) {
	t.Parallel()
	c, cs, _ := setupTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.ApplySecret(ctx, OpaqueSecret("career", "database-credentials", map[string]string{"DATABASE_URL": "old"})))
	require.NoError(t, c.ApplySecret(ctx, OpaqueSecret("career", "database-credentials", map[string]string{"DATABASE_URL": "new"})))

	got, err := cs.CoreV1().Secrets("career").Get(ctx, "database-credentials", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "new", got.StringData["DATABASE_URL"])

	require.NoError(t, c.DeleteSecret(ctx, "career", "database-credentials"))
	require.NoError(t, c.DeleteSecret(ctx, "career", "database-credentials"))
}

func TestApplySecret_Validation(t *testing.T) {
	t.Parallel()
	c, _, _ := setupTestClient(t)
	err := c.ApplySecret(context.Background(), OpaqueSecret("", "x", nil))
	assert.ErrorContains(t, err, "namespace is required")
	err = c.ApplySecret(context.Background(), OpaqueSecret("ns", "", nil))
	assert.ErrorContains(t, err, "name is required")
}

func TestDockerConfigSecret(t *testing.T) {
	t.Parallel()
	s, err := DockerConfigSecret("career", "dockerhub-creds", "https://index.docker.io/v1/", "acme", "tok")
	require.NoError(t, err)
	assert.Equal(t, corev1.SecretTypeDockerConfigJson, s.Type)

	var cfg struct {
		Auths map[string]struct {
			Username string `json:"username"`
			Auth     string `json:"auth"`
		} `json:"auths"`
	}
	require.NoError(t, json.Unmarshal(s.Data[corev1.DockerConfigJsonKey], &cfg))
	entry := cfg.Auths["https://index.docker.io/v1/"]
	assert.Equal(t, "acme", entry.Username)
	assert.Equal(t, "YWNtZTp0b2s=", entry.Auth)
}

func TestListNodesAndPods(t *testing.T) {
	t.Parallel()
	ready := corev1.NodeCondition{Type: corev1.NodeReady, Status: corev1.ConditionTrue}
	notReady := corev1.NodeCondition{Type: corev1.NodeReady, Status: corev1.ConditionFalse}
	c, _, _ := setupTestClient(t,
		&corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "pool-a"}, Status: corev1.NodeStatus{Conditions: []corev1.NodeCondition{ready}}},
		&corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "pool-b"}, Status: corev1.NodeStatus{Conditions: []corev1.NodeCondition{notReady}}},
		&corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "pool-c"}},
		&corev1.Pod{
			ObjectMeta: metav1.ObjectMeta{Name: "api-1", Namespace: "career"},
			Status: corev1.PodStatus{
				Phase:      corev1.PodRunning,
				Conditions: []corev1.PodCondition{{Type: corev1.PodReady, Status: corev1.ConditionTrue}},
			},
		},
		&corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: "api-2", Namespace: "career"}, Status: corev1.PodStatus{Phase: corev1.PodPending}},
	)

	nodes, err := c.ListNodes(context.Background())
	require.NoError(t, err)
	readyByName := map[string]bool{}
	for _, n := range nodes {
		readyByName[n.Name] = n.Ready
	}
	assert.Equal(t, map[string]bool{"pool-a": true, "pool-b": false, "pool-c": false}, readyByName)

	pods, err := c.ListPods(context.Background(), "career")
	require.NoError(t, err)
	require.Len(t, pods, 2)
	phases := map[string]string{}
	for _, p := range pods {
		phases[p.Name] = p.Phase
	}
	assert.Equal(t, "Running", phases["api-1"])
	assert.Equal(t, "Pending", phases["api-2"])
}

func TestNewFromKubeconfig_Invalid(t *testing.T) {
	t.Parallel()
	_, err := NewFromKubeconfig([]byte("invalid kubeconfig content"))
	assert.Error(t, err)
}

func TestObjectRefString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Namespace/career", ObjectRef{Kind: "Namespace", Name: "career"}.String())
	assert.Equal(t, "Service/career/api", ObjectRef{Kind: "Service", Namespace: "career", Name: "api"}.String())
}

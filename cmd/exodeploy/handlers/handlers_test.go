package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/config"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/exoscale"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/k8s"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/postgres"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/registry"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning/destroy"
	testutil "github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/testing"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/ui/tui"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/util/poll"
)

type fakePipeline struct {
	result provisioning.PipelineResult
	ctx    *provisioning.Context
	runs   int
}

func (f *fakePipeline) Stages() []provisioning.Stage {
	return []provisioning.Stage{{Name: "image_build", Fatal: true}, {Name: "cluster", Fatal: true}}
}

func (f *fakePipeline) Run(ctx *provisioning.Context, _ *provisioning.Metrics) provisioning.PipelineResult {
	f.ctx = ctx
	f.runs++
	return f.result
}

type fakePinger struct{}

func (fakePinger) Ping(context.Context, string) error { return nil }

type handlerFixture struct {
	cfg      *config.Config
	cloud    *exoscale.MockClient
	storage  *testutil.MockObjectStorage
	pipeline *fakePipeline
	out      *bytes.Buffer
	prompts  []string
	answer   bool
}

// stubFactories replaces every factory var for the duration of the test.
func stubFactories(t *testing.T, cfg *config.Config) *handlerFixture {
	t.Helper()
	cfg.OutputsDir = filepath.Join(t.TempDir(), "outputs")
	fx := &handlerFixture{
		cfg:      cfg,
		cloud:    &exoscale.MockClient{},
		storage:  testutil.NewMockObjectStorage(),
		pipeline: &fakePipeline{result: provisioning.PipelineResult{State: provisioning.StateSucceeded}},
		out:      &bytes.Buffer{},
		answer:   true,
	}
	fx.storage.On("ListBuckets", mock.Anything, mock.Anything).Return([]string{}, nil).Maybe()

	origLoad, origCloud, origStorage := loadConfig, newCloudClient, newStorageClient
	origRegistry, origKube, origPinger := newRegistryClient, newKubeClient, newPinger
	origPipeline, origCtx, origEngine := newPipeline, newProvisioningContext, newTeardownEngine
	origObserver, origInteractive, origConfirm := newObserver, isInteractive, confirm
	origTUI := runDeployTUI
	origNow, origStdout := now, stdout
	t.Cleanup(func() {
		loadConfig, newCloudClient, newStorageClient = origLoad, origCloud, origStorage
		newRegistryClient, newKubeClient, newPinger = origRegistry, origKube, origPinger
		newPipeline, newProvisioningContext, newTeardownEngine = origPipeline, origCtx, origEngine
		newObserver, isInteractive, confirm = origObserver, origInteractive, origConfirm
		runDeployTUI = origTUI
		now, stdout = origNow, origStdout
	})

	clock := poll.NewFakeClock(testutil.RunStart)
	loadConfig = func(string) (*config.Config, error) { return fx.cfg, nil }
	newCloudClient = func(string, string, string) (exoscale.ControlPlane, error) { return fx.cloud, nil }
	newStorageClient = func(string, string, string) (provisioning.ObjectStorage, error) { return fx.storage, nil }
	newRegistryClient = func(io.Writer) (registry.Client, error) { return &registry.MockClient{}, nil }
	newKubeClient = func([]byte) (k8s.Client, error) { return &k8s.MockClient{}, nil }
	newPinger = func() postgres.Pinger { return fakePinger{} }
	newPipeline = func() Pipeline { return fx.pipeline }
	newTeardownEngine = func(cloud exoscale.ControlPlane, observer provisioning.Observer) *destroy.Engine {
		e := destroy.NewEngine(cloud, observer)
		e.Timeouts = testutil.DefaultTimeouts()
		e.Sleep = clock.Sleep
		e.Now = clock.Now
		return e
	}
	newObserver = func() provisioning.Observer { return testutil.NewRecordingObserver() }
	isInteractive = func() bool { return false }
	runDeployTUI = func(context.Context, string, string, []string, tui.RunFunc) (provisioning.PipelineResult, error) {
		t.Fatal("dashboard must not start")
		return provisioning.PipelineResult{}, nil
	}
	confirm = func(_ context.Context, title, _ string) (bool, error) {
		fx.prompts = append(fx.prompts, title)
		return fx.answer, nil
	}
	now = clock.Now
	stdout = fx.out
	return fx
}

func TestDeploy_RunsPipeline(t *testing.T) {
	fx := stubFactories(t, testutil.FullConfig())

	err := Deploy(context.Background(), DeployOptions{ConfigPath: "config.yaml", Auto: true})
	require.NoError(t, err)

	require.Equal(t, 1, fx.pipeline.runs)
	ctx := fx.pipeline.ctx
	assert.NotNil(t, ctx.Registry)
	assert.Same(t, fx.storage, ctx.Storage)
	assert.NotNil(t, ctx.DBPinger)
	assert.Equal(t, "proj-a", ctx.Run.Slug)
	assert.Equal(t, filepath.Join(fx.cfg.OutputsDir, "20260314_143005"), ctx.Run.Dir)
	assert.Empty(t, fx.prompts)
	assert.Contains(t, fx.out.String(), "exodeploy: proj-a (ch-gva-2)")
	assert.NotContains(t, fx.out.String(), "dckr_pat_test")
}

func TestDeploy_OptionalClientsOnlyWhenEnabled(t *testing.T) {
	fx := stubFactories(t, testutil.MinimalConfig())

	require.NoError(t, Deploy(context.Background(), DeployOptions{Auto: true}))

	assert.Nil(t, fx.pipeline.ctx.Storage)
	assert.Nil(t, fx.pipeline.ctx.DBPinger)
}

func TestDeploy_AbortReturnsError(t *testing.T) {
	fx := stubFactories(t, testutil.MinimalConfig())
	fx.pipeline.result = provisioning.PipelineResult{
		State:       provisioning.StateAborted,
		FailedStage: "cluster",
		Err:         errors.New("quota exceeded"),
		ReportPath:  "outputs/20260314_143005/deployment_report_partial.json",
	}

	err := Deploy(context.Background(), DeployOptions{Auto: true})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cluster")
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Contains(t, fx.out.String(), "deployment_report_partial.json")
}

func TestDeploy_Confirmation(t *testing.T) {
	tests := []struct {
		name        string
		interactive bool
		auto        bool
		answer      bool
		wantPrompt  bool
		wantRun     bool
	}{
		{"non-interactive runs without prompt", false, false, false, false, true},
		{"auto skips prompt", true, true, false, false, true},
		{"accepted", true, false, true, true, true},
		{"declined", true, false, false, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := stubFactories(t, testutil.MinimalConfig())
			isInteractive = func() bool { return tt.interactive }
			fx.answer = tt.answer

			require.NoError(t, Deploy(context.Background(), DeployOptions{Auto: tt.auto}))

			assert.Equal(t, tt.wantPrompt, len(fx.prompts) == 1)
			assert.Equal(t, tt.wantRun, fx.pipeline.runs == 1)
		})
	}
}

func TestDeploy_Dashboard(t *testing.T) {
	fx := stubFactories(t, testutil.MinimalConfig())
	isInteractive = func() bool { return true }
	var gotStages []string
	runDeployTUI = func(ctx context.Context, project, zone string, stages []string, run tui.RunFunc) (provisioning.PipelineResult, error) {
		gotStages = stages
		return run(ctx, testutil.NewRecordingObserver()), nil
	}

	require.NoError(t, Deploy(context.Background(), DeployOptions{Auto: true, TUI: true}))

	assert.Equal(t, []string{"image_build", "cluster"}, gotStages)
	assert.Equal(t, 1, fx.pipeline.runs)
	assert.IsType(t, &testutil.RecordingObserver{}, fx.pipeline.ctx.Observer)
}

func TestDeploy_DashboardNeedsTerminal(t *testing.T) {
	fx := stubFactories(t, testutil.MinimalConfig())

	require.NoError(t, Deploy(context.Background(), DeployOptions{Auto: true, TUI: true}))

	assert.Equal(t, 1, fx.pipeline.runs)
}

func TestDeploy_ConfigError(t *testing.T) {
	fx := stubFactories(t, testutil.MinimalConfig())
	loadConfig = func(string) (*config.Config, error) {
		return nil, errors.New("missing required keys: exoscale_zone")
	}

	err := Deploy(context.Background(), DeployOptions{Auto: true})

	assert.ErrorContains(t, err, "exoscale_zone")
	assert.Zero(t, fx.pipeline.runs)
}

func projectCloud(fx *handlerFixture) {
	fx.cloud.ListClustersFunc = func(context.Context) ([]exoscale.Cluster, error) {
		if fx.cloud.CallCount("DeleteCluster") > 0 {
			return nil, nil
		}
		return []exoscale.Cluster{{ID: "c-1", Name: "proj-a-cluster-143005"}}, nil
	}
	fx.cloud.ListSecurityGroupsFunc = func(context.Context) ([]exoscale.SecurityGroup, error) {
		if fx.cloud.CallCount("DeleteSecurityGroup") > 0 {
			return nil, nil
		}
		return []exoscale.SecurityGroup{{ID: "sg-1", Name: "proj-a-sg-143005"}, {ID: "sg-2", Name: "proj-b-sg-1"}}, nil
	}
}

func TestTeardown_CleanEnvironment(t *testing.T) {
	fx := stubFactories(t, testutil.MinimalConfig())
	isInteractive = func() bool { return true }

	require.NoError(t, Teardown(context.Background(), TeardownOptions{}))

	assert.Empty(t, fx.prompts, "no prompt when there is nothing to delete")
	assert.Contains(t, fx.out.String(), "Clean")
}

func TestTeardown_DryRun(t *testing.T) {
	fx := stubFactories(t, testutil.MinimalConfig())
	projectCloud(fx)

	require.NoError(t, Teardown(context.Background(), TeardownOptions{DryRun: true}))

	assert.Zero(t, fx.cloud.CallCount("DeleteCluster"))
	assert.Contains(t, fx.out.String(), "proj-a-cluster-143005")
	assert.NotContains(t, fx.out.String(), "proj-b-sg-1")
}

func TestTeardown_DeclinedPrompt(t *testing.T) {
	fx := stubFactories(t, testutil.MinimalConfig())
	projectCloud(fx)
	isInteractive = func() bool { return true }
	fx.answer = false

	require.NoError(t, Teardown(context.Background(), TeardownOptions{}))

	require.Len(t, fx.prompts, 1)
	assert.Contains(t, fx.prompts[0], "Delete ALL 2 proj-a resources")
	assert.Zero(t, fx.cloud.CallCount("DeleteCluster"))
}

func TestTeardown_ForceDeletesAndWritesReport(t *testing.T) {
	fx := stubFactories(t, testutil.MinimalConfig())
	projectCloud(fx)
	isInteractive = func() bool { return true }

	require.NoError(t, Teardown(context.Background(), TeardownOptions{Force: true}))

	assert.Empty(t, fx.prompts)
	assert.Equal(t, 1, fx.cloud.CallCount("DeleteCluster"))
	assert.Equal(t, []exoscale.Call{{Method: "DeleteSecurityGroup", Args: []string{"sg-1"}}}, fx.cloud.Calls("DeleteSecurityGroup"))
	assert.FileExists(t, filepath.Join(fx.cfg.OutputsDir, "teardown_report_20260314_143005.json"))
	assert.Contains(t, fx.out.String(), "no residual resources")
}

func TestTeardown_UsesLatestKubeconfig(t *testing.T) {
	fx := stubFactories(t, testutil.MinimalConfig())
	projectCloud(fx)
	testutil.WriteFiles(t, fx.cfg.OutputsDir, map[string]string{
		"20260314_143005/kubeconfig.yaml": "apiVersion: v1\nkind: Config\n",
	})
	var deleted []string
	kube := &k8s.MockClient{
		NamespaceExistsFunc: func(context.Context, string) (bool, error) { return true, nil },
		DeleteNamespaceFunc: func(_ context.Context, name string) error {
			deleted = append(deleted, name)
			return nil
		},
	}
	var gotKubeconfig []byte
	newKubeClient = func(data []byte) (k8s.Client, error) {
		gotKubeconfig = data
		return kube, nil
	}

	require.NoError(t, Teardown(context.Background(), TeardownOptions{Force: true}))

	assert.Contains(t, string(gotKubeconfig), "kind: Config")
	assert.Equal(t, []string{"api"}, deleted)
}

func TestTeardown_DiscoveryFailure(t *testing.T) {
	fx := stubFactories(t, testutil.MinimalConfig())
	fx.cloud.ListClustersFunc = func(context.Context) ([]exoscale.Cluster, error) {
		return nil, errors.New("401 unauthorized")
	}

	err := Teardown(context.Background(), TeardownOptions{Force: true})

	assert.ErrorContains(t, err, "discovery failed")
}

package workload

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/k8s"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/provisioning"
)

// ImagePlaceholder is replaced by the pushed image reference in every manifest.
const ImagePlaceholder = "{{IMAGE}}"

// renderedManifestFile stores what was applied, for inspection.
const renderedManifestFile = "manifests.yaml"

// ManifestSet is the documents to apply and where they came from.
type ManifestSet struct {
	Files []string
	Data  []byte
	// Generated is true when no manifest files were found and the default
	// Deployment and Service were rendered.
	Generated bool
}

// LoadManifests reads every *.yaml and *.yml in dir in lexical order,
// substitutes image for the placeholder, and joins them into one
// multi-document stream. A missing directory yields an empty set.
func LoadManifests(dir, image string) (ManifestSet, error) {
	var set ManifestSet
	if dir == "" {
		return set, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return set, nil
		}
		return set, fmt.Errorf("failed to read manifests dir %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var buf bytes.Buffer
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return set, fmt.Errorf("failed to read manifest %s: %w", path, err)
		}
		data = bytes.ReplaceAll(data, []byte(ImagePlaceholder), []byte(image))
		if buf.Len() > 0 {
			buf.WriteString("\n---\n")
		}
		buf.Write(bytes.TrimSpace(data))
		buf.WriteByte('\n')
		set.Files = append(set.Files, path)
	}
	set.Data = buf.Bytes()
	return set, nil
}

// ApplyManifests applies the workload with server-side apply. Without
// manifest files the default Deployment and LoadBalancer Service are
// rendered from the configuration.
func (p *Provisioner) ApplyManifests(ctx *provisioning.Context) provisioning.StageResult {
	if ctx.State.Kube == nil {
		return provisioning.Failed(errNoKubeClient)
	}
	image := ctx.Image()

	set, err := LoadManifests(ctx.Config.ManifestsDir, image)
	if err != nil {
		return provisioning.Failed(err)
	}
	if len(set.Files) == 0 {
		data, err := RenderDefault(ctx.Config, image)
		if err != nil {
			return provisioning.Failed(err)
		}
		set = ManifestSet{Data: data, Generated: true}
		ctx.Observer.Printf("[%s] no manifests in %q, using generated Deployment and Service", StageManifests, ctx.Config.ManifestsDir)
	}

	if err := os.MkdirAll(ctx.Run.Dir, 0o755); err == nil {
		rendered := filepath.Join(ctx.Run.Dir, renderedManifestFile)
		if err := os.WriteFile(rendered, set.Data, 0o644); err != nil {
			ctx.Observer.Printf("[%s] could not save rendered manifests: %v", StageManifests, err)
		}
	}

	applied, err := ctx.State.Kube.ApplyManifests(ctx, set.Data, k8s.FieldManager)
	if err != nil {
		return provisioning.Failed(fmt.Errorf("failed to apply manifests: %w", err))
	}

	objects := make([]string, 0, len(applied))
	for _, ref := range applied {
		objects = append(objects, ref.String())
		ctx.Observer.Printf("[%s] applied %s", StageManifests, ref)
	}
	ctx.Report.RecordResource(provisioning.ResourceDescriptor{
		Kind:      provisioning.ResourceWorkload,
		Name:      ctx.Config.ServiceName,
		State:     "applied",
		DependsOn: map[string]string{provisioning.ResourceNamespace: ctx.Config.Namespace},
		Attributes: map[string]any{
			"image":     image,
			"objects":   objects,
			"generated": set.Generated,
		},
	})
	return provisioning.Success(map[string]any{
		"image":     image,
		"files":     set.Files,
		"objects":   len(applied),
		"generated": set.Generated,
	})
}

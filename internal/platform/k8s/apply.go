package k8s

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/yaml"
)

// ApplyManifests applies multi-document YAML using server-side apply.
// Empty documents are skipped. Applying the same documents twice is safe.
func (c *client) ApplyManifests(ctx context.Context, manifests []byte, fieldManager string) ([]ObjectRef, error) {
	decoder := yaml.NewYAMLOrJSONDecoder(bytes.NewReader(manifests), 4096)

	var applied []ObjectRef
	for docIndex := 0; ; docIndex++ {
		var obj unstructured.Unstructured
		if err := decoder.Decode(&obj); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return applied, fmt.Errorf("failed to decode manifest document %d: %w", docIndex, err)
		}
		if len(obj.Object) == 0 {
			continue
		}

		ref, err := c.applyObject(ctx, &obj, fieldManager)
		if err != nil {
			return applied, fmt.Errorf("failed to apply %s %s/%s: %w", obj.GetKind(), obj.GetNamespace(), obj.GetName(), err)
		}
		applied = append(applied, ref)
	}
	return applied, nil
}

func (c *client) applyObject(ctx context.Context, obj *unstructured.Unstructured, fieldManager string) (ObjectRef, error) {
	gvk := obj.GroupVersionKind()
	if gvk.Kind == "" {
		return ObjectRef{}, fmt.Errorf("object has no kind set")
	}

	mapping, err := c.mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
	if err != nil {
		return ObjectRef{}, fmt.Errorf("failed to get REST mapping for %v: %w", gvk, err)
	}

	data, err := obj.MarshalJSON()
	if err != nil {
		return ObjectRef{}, fmt.Errorf("failed to marshal object to JSON: %w", err)
	}
	opts := metav1.PatchOptions{FieldManager: fieldManager, Force: boolPtr(true)}

	ref := ObjectRef{Kind: gvk.Kind, Name: obj.GetName()}
	resource := c.dynamicClient.Resource(mapping.Resource)
	if mapping.Scope.Name() == meta.RESTScopeNameNamespace {
		ref.Namespace = obj.GetNamespace()
		if ref.Namespace == "" {
			ref.Namespace = "default"
		}
		_, err = resource.Namespace(ref.Namespace).Patch(ctx, ref.Name, types.ApplyPatchType, data, opts)
	} else {
		_, err = resource.Patch(ctx, ref.Name, types.ApplyPatchType, data, opts)
	}
	if err != nil {
		return ref, fmt.Errorf("server-side apply failed: %w", err)
	}
	return ref, nil
}

func boolPtr(b bool) *bool {
	return &b
}

package k8s

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// NodeStatus is the readiness of one cluster node.
type NodeStatus struct {
	Name  string
	Ready bool
}

// PodStatus is the phase and readiness of one pod.
type PodStatus struct {
	Name  string
	Phase string
	Ready bool
}

func (c *client) ListNodes(ctx context.Context) ([]NodeStatus, error) {
	nodes, err := c.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	out := make([]NodeStatus, 0, len(nodes.Items))
	for i := range nodes.Items {
		out = append(out, NodeStatus{Name: nodes.Items[i].Name, Ready: isNodeReady(&nodes.Items[i])})
	}
	return out, nil
}

func (c *client) ListPods(ctx context.Context, namespace string) ([]PodStatus, error) {
	pods, err := c.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods in %s: %w", namespace, err)
	}
	out := make([]PodStatus, 0, len(pods.Items))
	for i := range pods.Items {
		p := &pods.Items[i]
		out = append(out, PodStatus{Name: p.Name, Phase: string(p.Status.Phase), Ready: isPodReady(p)})
	}
	return out, nil
}

func isNodeReady(node *corev1.Node) bool {
	for _, cond := range node.Status.Conditions {
		if cond.Type == corev1.NodeReady {
			return cond.Status == corev1.ConditionTrue
		}
	}
	return false
}

func isPodReady(pod *corev1.Pod) bool {
	for _, cond := range pod.Status.Conditions {
		if cond.Type == corev1.PodReady {
			return cond.Status == corev1.ConditionTrue
		}
	}
	return false
}

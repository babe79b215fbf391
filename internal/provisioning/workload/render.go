package workload

import (
	"bytes"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"sigs.k8s.io/yaml"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/config"
	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/internal/platform/k8s"
)

const healthPath = "/health"

// RenderDefault renders a Deployment and a Service of type LoadBalancer for
// the configured service. The Service makes the cloud controller create the
// network load balancer.
func RenderDefault(cfg *config.Config, image string) ([]byte, error) {
	labels := map[string]string{
		"app":                          cfg.ServiceName,
		"version":                      cfg.ServiceVersion,
		"app.kubernetes.io/managed-by": k8s.FieldManager,
	}
	selector := map[string]string{"app": cfg.ServiceName}
	replicas := int32(cfg.Replicas)
	port := intstr.FromInt32(int32(cfg.Port))
	nonRoot := true
	uid := int64(1000)
	maxUnavailable := intstr.FromInt32(0)
	maxSurge := intstr.FromInt32(1)

	deployment := &appsv1.Deployment{
		TypeMeta: metav1.TypeMeta{APIVersion: "apps/v1", Kind: "Deployment"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      cfg.ServiceName,
			Namespace: cfg.Namespace,
			Labels:    labels,
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: &replicas,
			Selector: &metav1.LabelSelector{MatchLabels: selector},
			Strategy: appsv1.DeploymentStrategy{
				Type: appsv1.RollingUpdateDeploymentStrategyType,
				RollingUpdate: &appsv1.RollingUpdateDeployment{
					MaxUnavailable: &maxUnavailable,
					MaxSurge:       &maxSurge,
				},
			},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels},
				Spec: corev1.PodSpec{
					SecurityContext: &corev1.PodSecurityContext{
						RunAsNonRoot: &nonRoot,
						RunAsUser:    &uid,
					},
					ImagePullSecrets: []corev1.LocalObjectReference{{Name: PullSecretName}},
					Containers: []corev1.Container{{
						Name:            cfg.ServiceName,
						Image:           image,
						ImagePullPolicy: corev1.PullAlways,
						Ports: []corev1.ContainerPort{{
							ContainerPort: int32(cfg.Port),
							Protocol:      corev1.ProtocolTCP,
						}},
						Env: []corev1.EnvVar{
							{Name: "SERVICE_NAME", Value: cfg.ServiceName},
							{Name: "SERVICE_VERSION", Value: cfg.ServiceVersion},
						},
						Resources: corev1.ResourceRequirements{
							Requests: corev1.ResourceList{
								corev1.ResourceCPU:    resource.MustParse("100m"),
								corev1.ResourceMemory: resource.MustParse("128Mi"),
							},
							Limits: corev1.ResourceList{
								corev1.ResourceCPU:    resource.MustParse("500m"),
								corev1.ResourceMemory: resource.MustParse("512Mi"),
							},
						},
						ReadinessProbe: httpHealthCheck(port, 10, 10),
						LivenessProbe:  httpHealthCheck(port, 30, 30),
					}},
				},
			},
		},
	}

	service := &corev1.Service{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "Service"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      cfg.ServiceName,
			Namespace: cfg.Namespace,
			Labels:    labels,
		},
		Spec: corev1.ServiceSpec{
			Type:     corev1.ServiceTypeLoadBalancer,
			Selector: selector,
			Ports: []corev1.ServicePort{{
				Name:       "http",
				Protocol:   corev1.ProtocolTCP,
				Port:       int32(cfg.Port),
				TargetPort: port,
				NodePort:   int32(cfg.NodePort),
			}},
		},
	}

	var buf bytes.Buffer
	for i, obj := range []any{deployment, service} {
		data, err := yaml.Marshal(obj)
		if err != nil {
			return nil, fmt.Errorf("failed to render default manifest: %w", err)
		}
		if i > 0 {
			buf.WriteString("---\n")
		}
		buf.Write(data)
	}
	return buf.Bytes(), nil
}

func httpHealthCheck(port intstr.IntOrString, initialDelay, period int32) *corev1.Probe {
	return &corev1.Probe{
		ProbeHandler: corev1.ProbeHandler{
			HTTPGet: &corev1.HTTPGetAction{Path: healthPath, Port: port},
		},
		InitialDelaySeconds: initialDelay,
		PeriodSeconds:       period,
		FailureThreshold:    3,
	}
}

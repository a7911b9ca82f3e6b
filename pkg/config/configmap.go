package config

import (
	"context"
	"fmt"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
)

// SplitConfigMapRef splits "namespace/name"
func SplitConfigMapRef(ref string) (namespace, name string, err error) {
	namespace, name, ok := strings.Cut(ref, "/")
	if !ok || namespace == "" || name == "" {
		return "", "", fmt.Errorf("invalid configmap reference %q: expected namespace/name", ref)
	}
	return namespace, name, nil
}

// ParamsFromConfigMap reads heuristic parameters from the data of a ConfigMap
func ParamsFromConfigMap(ctx context.Context, clientset kubernetes.Interface, namespace, name string) (map[string]string, error) {
	cm, err := clientset.CoreV1().ConfigMaps(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get configmap %s/%s: %w", namespace, name, err)
	}

	params := make(map[string]string, len(cm.Data))
	for k, v := range cm.Data {
		params[k] = v
	}
	return params, nil
}

// NewClientset builds a Kubernetes client from a kubeconfig path,
// falling back to in-cluster configuration when the path is empty
func NewClientset(kubeconfig string) (*kubernetes.Clientset, error) {
	restConfig, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build config: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}
	return clientset, nil
}

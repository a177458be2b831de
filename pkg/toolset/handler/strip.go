package handler

import "k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

// noisePaths are the server-managed fields stripped from resources
// before rendering them back to the agent. They dominate the payload
// of a typical get -o yaml without saying anything useful.
var noisePaths = [][]string{
	{"metadata", "managedFields"},
	{"metadata", "annotations", "kubectl.kubernetes.io/last-applied-configuration"},
}

// StripNoise removes server bookkeeping fields from the object in
// place and drops the annotations map entirely if stripping left it
// empty.
func StripNoise(obj *unstructured.Unstructured) {
	if obj == nil {
		return
	}
	for _, path := range noisePaths {
		unstructured.RemoveNestedField(obj.Object, path...)
	}

	annotations, found, err := unstructured.NestedMap(obj.Object, "metadata", "annotations")
	if err == nil && found && len(annotations) == 0 {
		unstructured.RemoveNestedField(obj.Object, "metadata", "annotations")
	}
}

package kubectl

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// validateManifest structurally validates a multi-document YAML (or
// JSON) payload before it is ever piped to kubectl. Every document must
// be a mapping with kind and apiVersion; blocked cluster-scoped kinds
// and blocklisted namespaces are rejected here so that an unsafe
// payload never reaches the external command. Returns the parsed
// documents for callers that want to inspect them further.
func (e *Executor) validateManifest(payload []byte) ([]*unstructured.Unstructured, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, &ManifestValidationError{Reason: "manifest is empty"}
	}

	dec := yaml.NewDecoder(bytes.NewReader(payload))
	var docs []*unstructured.Unstructured

	for i := 0; ; i++ {
		var raw map[string]interface{}
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A non-mapping root (scalar, sequence, tagged construct)
			// also lands here via the type mismatch error.
			return nil, &ManifestValidationError{Reason: fmt.Sprintf("document %d is not valid YAML: %v", i+1, err)}
		}
		if raw == nil {
			continue
		}

		obj := &unstructured.Unstructured{Object: raw}

		if obj.GetKind() == "" {
			return nil, &ManifestValidationError{Reason: fmt.Sprintf("document %d has no kind", i+1)}
		}
		if obj.GetAPIVersion() == "" {
			return nil, &ManifestValidationError{Reason: fmt.Sprintf("document %d has no apiVersion", i+1)}
		}

		kind := ParseKind(obj.GetKind())
		if kind.Protected() && !e.cfg.AllowClusterScopedApply {
			return nil, &ManifestValidationError{
				Reason: fmt.Sprintf("resource kind %q is blocked by default; set ALLOW_CLUSTER_RESOURCES=true to override", obj.GetKind()),
			}
		}

		if ns := obj.GetNamespace(); ns != "" {
			nsReq := &Request{Namespace: ns, Mutating: true}
			if d := Evaluate(nsReq, e.cfg); d.Verdict == VerdictDeny {
				return nil, &ManifestValidationError{Reason: d.Reason}
			}
		}

		docs = append(docs, obj)
	}

	if len(docs) == 0 {
		return nil, &ManifestValidationError{Reason: "manifest contains no documents"}
	}
	return docs, nil
}

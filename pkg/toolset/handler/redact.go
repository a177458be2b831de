// Package handler holds shared helpers for tool handlers: secret
// redaction and noise-field stripping applied to resource payloads
// before they are returned to the agent.
package handler

import (
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/kubemcp/kubectl-mcp-server/pkg/toolset/paramutil"
)

const maskedValue = "***"

// RedactRule defines which top-level fields to mask for a resource kind.
type RedactRule struct {
	// Kind is the lowercase resource kind (e.g. "secret").
	Kind string
	// Fields are the top-level fields whose values are masked.
	Fields []string
}

// Redactor masks values in sensitive fields based on resource kind.
// Map keys are preserved so the agent can see which entries exist.
type Redactor struct {
	rules []RedactRule
}

// DefaultRedactRules masks Secret data and stringData values.
func DefaultRedactRules() []RedactRule {
	return []RedactRule{
		{Kind: "secret", Fields: []string{"data", "stringData"}},
	}
}

// NewRedactor creates a Redactor with the given rules.
func NewRedactor(rules []RedactRule) *Redactor {
	return &Redactor{rules: rules}
}

// NewRedactorFromParams returns the default Redactor, or nil when the
// caller explicitly asked for sensitive data.
func NewRedactorFromParams(params map[string]interface{}) *Redactor {
	if paramutil.ExtractBool(params, paramutil.ParamShowSensitiveData, false) {
		return nil
	}
	return NewRedactor(DefaultRedactRules())
}

// Redact masks sensitive field values and returns a cleaned copy. The
// original object is not modified. Objects whose kind matches no rule
// pass through unchanged.
func (r *Redactor) Redact(obj *unstructured.Unstructured) *unstructured.Unstructured {
	if r == nil || obj == nil {
		return obj
	}
	rule := r.findRule(obj.GetKind())
	if rule == nil {
		return obj
	}

	result := obj.DeepCopy()
	for _, field := range rule.Fields {
		maskField(result.Object, field)
	}
	return result
}

func (r *Redactor) findRule(kind string) *RedactRule {
	lower := strings.ToLower(kind)
	for i := range r.rules {
		if r.rules[i].Kind == lower {
			return &r.rules[i]
		}
	}
	return nil
}

func maskField(obj map[string]interface{}, field string) {
	raw, ok := obj[field]
	if !ok {
		return
	}
	entries, ok := raw.(map[string]interface{})
	if !ok {
		return
	}
	for key := range entries {
		entries[key] = maskedValue
	}
}

package paramutil

import (
	"fmt"

	"github.com/kubemcp/kubectl-mcp-server/pkg/kubectl"
)

// ResolveKind extracts the resource_type parameter and resolves it to
// a resource kind. Unknown kinds (CRDs and anything else kubectl knows
// that we don't) resolve to KindUnknown and still carry the raw string.
func ResolveKind(params map[string]interface{}) (kubectl.ResourceKind, string, error) {
	raw, err := ExtractRequiredString(params, ParamResourceType)
	if err != nil {
		return kubectl.KindUnknown, "", err
	}
	return kubectl.ParseKind(raw), raw, nil
}

// ResolvePatchType validates the patch_type parameter, defaulting to
// strategic merge.
func ResolvePatchType(params map[string]interface{}) (string, error) {
	pt := ExtractOptionalStringWithDefault(params, ParamPatchType, "strategic")
	switch pt {
	case "strategic", "merge", "json":
		return pt, nil
	default:
		return "", fmt.Errorf("%w: patch_type %q (supported: strategic, merge, json)", ErrInvalidParameter, pt)
	}
}

// ResolveNodeOperation validates the operation parameter for node
// maintenance tools.
func ResolveNodeOperation(params map[string]interface{}) (string, error) {
	op, err := ExtractRequiredString(params, ParamOperation)
	if err != nil {
		return "", err
	}
	switch op {
	case "cordon", "uncordon", "drain":
		return op, nil
	default:
		return "", fmt.Errorf("%w: operation %q (supported: cordon, uncordon, drain)", ErrInvalidParameter, op)
	}
}

package paramutil

import "errors"

// Format constants
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
)

// Parameter name constants
const (
	ParamContext            = "context"
	ParamNamespace          = "namespace"
	ParamAllNamespaces      = "all_namespaces"
	ParamFormat             = "format"
	ParamName               = "name"
	ParamResourceType       = "resource_type"
	ParamResourceName       = "resource_name"
	ParamPodName            = "pod_name"
	ParamDeploymentName     = "deployment_name"
	ParamNodeName           = "node_name"
	ParamContainer          = "container"
	ParamTailLines          = "tail_lines"
	ParamSinceSeconds       = "since_seconds"
	ParamPrevious           = "previous"
	ParamLabelSelector      = "label_selector"
	ParamFieldSelector      = "field_selector"
	ParamReplicas           = "replicas"
	ParamRevision           = "revision"
	ParamConfirmScaleToZero = "confirm_scale_to_zero"
	ParamForce              = "force"
	ParamManifest           = "manifest"
	ParamDryRun             = "dry_run"
	ParamPatch              = "patch"
	ParamPatchType          = "patch_type"
	ParamOperation          = "operation"
	ParamIgnoreDaemonsets   = "ignore_daemonsets"
	ParamCommand            = "command"
	ParamRaw                = "raw"
	ParamRestartThreshold   = "restart_threshold"
	ParamSortBy             = "sort_by"
	ParamShowSensitiveData  = "show_sensitive_data"
)

// Error definitions
var (
	ErrMissingParameter = errors.New("missing required parameter")
	ErrInvalidFormat    = errors.New("invalid output format")
	ErrInvalidParameter = errors.New("invalid parameter value")
)

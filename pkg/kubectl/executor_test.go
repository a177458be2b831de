package kubectl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kubemcp/kubectl-mcp-server/pkg/audit"
	"github.com/kubemcp/kubectl-mcp-server/pkg/config"
)

// fakeRunner records invocations instead of spawning processes.
type fakeRunner struct {
	calls    int
	lastArgv []string
	lastIn   []byte
	lastTime time.Duration
	outcome  *Outcome
	err      error
}

func (f *fakeRunner) Invoke(ctx context.Context, argv []string, stdin []byte, timeout time.Duration) (*Outcome, error) {
	f.calls++
	f.lastArgv = argv
	f.lastIn = stdin
	f.lastTime = timeout
	if f.err != nil {
		return nil, f.err
	}
	if f.outcome != nil {
		return f.outcome, nil
	}
	return &Outcome{Stdout: "ok"}, nil
}

func newTestExecutor(cfg *config.PolicyConfig, runner *fakeRunner, auditSink *bytes.Buffer) *Executor {
	var w *audit.Writer
	if auditSink != nil {
		w = audit.NewWriter(auditSink)
	}
	return &Executor{cfg: cfg, invoker: runner, audit: w}
}

func TestExecuteDeniedNeverReachesInvoker(t *testing.T) {
	cfg := config.DefaultConfig()
	runner := &fakeRunner{}
	var sink bytes.Buffer
	e := newTestExecutor(cfg, runner, &sink)

	req := &Request{
		Tool:      "k8s_scale",
		Namespace: "kube-system",
		Kind:      KindDeployment,
		Mutating:  true,
		Args:      []string{"scale", "deployment/web", "--replicas=2"},
	}

	_, err := e.Execute(context.Background(), req)

	var denied *PolicyDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("Expected PolicyDeniedError, got %v", err)
	}
	if !strings.Contains(denied.Reason, "blocklisted") {
		t.Errorf("Expected blocklist reason, got %q", denied.Reason)
	}
	if runner.calls != 0 {
		t.Errorf("Denied operation reached the invoker %d times", runner.calls)
	}

	// Denied mutating attempts are audited.
	var rec audit.Record
	if err := json.Unmarshal(sink.Bytes(), &rec); err != nil {
		t.Fatalf("Expected one audit record, got %q", sink.String())
	}
	if rec.Decision != audit.DecisionDeny {
		t.Errorf("Expected deny decision in audit record, got %q", rec.Decision)
	}
}

func TestExecuteConfirmationGate(t *testing.T) {
	cfg := config.DefaultConfig()
	runner := &fakeRunner{}
	e := newTestExecutor(cfg, runner, nil)

	req := &Request{
		Tool:        "k8s_scale",
		Namespace:   "team-a",
		Kind:        KindDeployment,
		Mutating:    true,
		ScaleToZero: true,
		Args:        []string{"scale", "deployment/web", "--replicas=0"},
	}

	_, err := e.Execute(context.Background(), req)
	var confirm *ConfirmationRequiredError
	if !errors.As(err, &confirm) {
		t.Fatalf("Expected ConfirmationRequiredError, got %v", err)
	}
	if runner.calls != 0 {
		t.Error("Confirmation-gated operation reached the invoker")
	}

	// Resubmission with the confirmation flag proceeds.
	confirmed := *req
	confirmed.Confirmed = true
	if _, err := e.Execute(context.Background(), &confirmed); err != nil {
		t.Fatalf("Confirmed request failed: %v", err)
	}
	if runner.calls != 1 {
		t.Errorf("Expected exactly one invocation, got %d", runner.calls)
	}
}

func TestExecuteInvalidManifestNeverSpawns(t *testing.T) {
	cfg := config.DefaultConfig()
	runner := &fakeRunner{}
	e := newTestExecutor(cfg, runner, nil)

	payloads := []struct {
		name     string
		manifest string
	}{
		{"not yaml", ":: definitely not yaml {{{"},
		{"scalar document", `"just a string"`},
		{"missing kind", "apiVersion: v1\nmetadata:\n  name: thing\n"},
		{"missing apiVersion", "kind: ConfigMap\nmetadata:\n  name: thing\n"},
		{"blocked kind", "apiVersion: rbac.authorization.k8s.io/v1\nkind: ClusterRole\nmetadata:\n  name: admin\n"},
		{"blocklisted namespace", "apiVersion: v1\nkind: ConfigMap\nmetadata:\n  name: cm\n  namespace: kube-system\n"},
	}

	for _, tt := range payloads {
		t.Run(tt.name, func(t *testing.T) {
			req := &Request{
				Tool:     "k8s_apply_manifest",
				Mutating: true,
				Args:     []string{"apply", "-f", "-"},
				Stdin:    []byte(tt.manifest),
			}
			_, err := e.Execute(context.Background(), req)

			var invalid *ManifestValidationError
			if !errors.As(err, &invalid) {
				t.Fatalf("Expected ManifestValidationError, got %v", err)
			}
		})
	}

	if runner.calls != 0 {
		t.Errorf("Invalid manifests reached the invoker %d times", runner.calls)
	}
}

func TestExecuteValidManifestProceeds(t *testing.T) {
	cfg := config.DefaultConfig()
	runner := &fakeRunner{}
	e := newTestExecutor(cfg, runner, nil)

	manifest := `apiVersion: v1
kind: ConfigMap
metadata:
  name: app-config
  namespace: team-a
data:
  key: value
---
apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
  namespace: team-a
`
	req := &Request{
		Tool:     "k8s_apply_manifest",
		Mutating: true,
		Args:     []string{"apply", "-f", "-"},
		Stdin:    []byte(manifest),
	}
	if _, err := e.Execute(context.Background(), req); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if runner.calls != 1 {
		t.Errorf("Expected one invocation, got %d", runner.calls)
	}
	if string(runner.lastIn) != manifest {
		t.Error("Manifest was not piped through unchanged")
	}
}

func TestExecuteArgvAssembly(t *testing.T) {
	cfg := config.DefaultConfig()

	tests := []struct {
		name string
		req  *Request
		want []string
	}{
		{
			name: "context and namespace prefix",
			req:  &Request{Context: "staging", Namespace: "team-a", Args: []string{"get", "pods"}},
			want: []string{"--context", "staging", "--namespace", "team-a", "get", "pods"},
		},
		{
			name: "all namespaces suffix",
			req:  &Request{AllNamespaces: true, Args: []string{"get", "pods"}},
			want: []string{"get", "pods", "--all-namespaces"},
		},
		{
			name: "all namespaces wins over namespace",
			req:  &Request{Namespace: "team-a", AllNamespaces: true, Args: []string{"get", "pods"}},
			want: []string{"get", "pods", "--all-namespaces"},
		},
		{
			name: "bare args",
			req:  &Request{Args: []string{"cluster-info"}},
			want: []string{"cluster-info"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{}
			e := newTestExecutor(cfg, runner, nil)
			if _, err := e.Execute(context.Background(), tt.req); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if len(runner.lastArgv) != len(tt.want) {
				t.Fatalf("argv = %v, want %v", runner.lastArgv, tt.want)
			}
			for i := range tt.want {
				if runner.lastArgv[i] != tt.want[i] {
					t.Errorf("argv[%d] = %q, want %q", i, runner.lastArgv[i], tt.want[i])
				}
			}
		})
	}
}

func TestExecuteTimeoutSelection(t *testing.T) {
	cfg := config.DefaultConfig()

	tests := []struct {
		name string
		req  *Request
		want time.Duration
	}{
		{"default class", &Request{Args: []string{"get", "pods"}}, 60 * time.Second},
		{"connectivity class", &Request{Class: TimeoutConnectivity, Args: []string{"cluster-info"}}, 5 * time.Second},
		{"drain class", &Request{Class: TimeoutDrain, Args: []string{"drain", "node-1"}}, 5 * time.Minute},
		{"rollout class", &Request{Class: TimeoutRollout, Args: []string{"rollout", "status"}}, 2 * time.Minute},
		{"override wins", &Request{Class: TimeoutDrain, TimeoutOverride: 7 * time.Second, Args: []string{"drain"}}, 7 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{}
			e := newTestExecutor(cfg, runner, nil)
			if _, err := e.Execute(context.Background(), tt.req); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if runner.lastTime != tt.want {
				t.Errorf("Timeout = %v, want %v", runner.lastTime, tt.want)
			}
		})
	}
}

func TestExecuteAuditsMutatingOnly(t *testing.T) {
	cfg := config.DefaultConfig()

	var sink bytes.Buffer
	runner := &fakeRunner{outcome: &Outcome{ExitCode: 0, Stdout: "deployment.apps/web scaled", Duration: 80 * time.Millisecond}}
	e := newTestExecutor(cfg, runner, &sink)

	// Read-only operations are not audited.
	if _, err := e.Execute(context.Background(), &Request{Tool: "k8s_list_pods", Args: []string{"get", "pods"}}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if sink.Len() != 0 {
		t.Errorf("Read-only operation was audited: %q", sink.String())
	}

	// Mutating operations get exactly one record.
	req := &Request{
		Tool:      "k8s_scale",
		Context:   "staging",
		Namespace: "team-a",
		Kind:      KindDeployment,
		Mutating:  true,
		Args:      []string{"scale", "deployment/web", "--replicas=2"},
	}
	if _, err := e.Execute(context.Background(), req); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(sink.String(), "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected exactly one audit record, got %d", len(lines))
	}

	var rec audit.Record
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("Audit record is not valid JSON: %v", err)
	}
	if rec.Tool != "k8s_scale" || rec.Context != "staging" || rec.Namespace != "team-a" {
		t.Errorf("Audit record summary wrong: %+v", rec)
	}
	if rec.Resource != "Deployment" || !rec.Mutating {
		t.Errorf("Audit record resource summary wrong: %+v", rec)
	}
	if rec.StdoutBytes != len("deployment.apps/web scaled") {
		t.Errorf("Audit record stdout length = %d", rec.StdoutBytes)
	}
}

func TestRunFoldsExitCodes(t *testing.T) {
	cfg := config.DefaultConfig()

	runner := &fakeRunner{outcome: &Outcome{ExitCode: 1, Stderr: "Unable to connect to the server: dial tcp: lookup cluster"}}
	e := newTestExecutor(cfg, runner, nil)

	_, err := e.Run(context.Background(), &Request{Args: []string{"get", "pods"}})
	if err == nil {
		t.Fatal("Expected error for non-zero exit")
	}
	if !strings.Contains(err.Error(), "Cannot reach the Kubernetes API server") {
		t.Errorf("Expected enriched error hint, got %q", err.Error())
	}

	runner.outcome = &Outcome{ExitCode: 0, Stdout: "pod/web-1\n", Stderr: "Warning: policy default\n"}
	out, err := e.Run(context.Background(), &Request{Args: []string{"get", "pods"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out, "pod/web-1") || !strings.Contains(out, "Warning: policy default") {
		t.Errorf("Expected stdout and stderr merged on success, got %q", out)
	}
}

func TestRunJSONAppendsOutputFlag(t *testing.T) {
	cfg := config.DefaultConfig()
	runner := &fakeRunner{outcome: &Outcome{Stdout: `{"items":[{"metadata":{"name":"web-1"}}]}`}}
	e := newTestExecutor(cfg, runner, nil)

	var decoded struct {
		Items []struct {
			Metadata struct {
				Name string `json:"name"`
			} `json:"metadata"`
		} `json:"items"`
	}
	req := &Request{Args: []string{"get", "pods"}}
	if err := e.RunJSON(context.Background(), req, &decoded); err != nil {
		t.Fatalf("RunJSON() error = %v", err)
	}

	argv := strings.Join(runner.lastArgv, " ")
	if !strings.HasSuffix(argv, "-o json") {
		t.Errorf("Expected -o json appended, got %v", runner.lastArgv)
	}
	// The original request must stay untouched.
	if len(req.Args) != 2 {
		t.Errorf("RunJSON mutated the request args: %v", req.Args)
	}
	if len(decoded.Items) != 1 || decoded.Items[0].Metadata.Name != "web-1" {
		t.Errorf("Decoded payload wrong: %+v", decoded)
	}
}

func TestRunJSONTruncatedPayload(t *testing.T) {
	cfg := config.DefaultConfig()
	runner := &fakeRunner{outcome: &Outcome{Stdout: `{"items":[{"metadata":`, Truncated: true}}
	e := newTestExecutor(cfg, runner, nil)

	var v map[string]interface{}
	err := e.RunJSON(context.Background(), &Request{Args: []string{"get", "pods"}}, &v)
	if err == nil || !strings.Contains(err.Error(), "truncated") {
		t.Errorf("Expected truncation-aware error, got %v", err)
	}
}

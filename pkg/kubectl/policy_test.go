package kubectl

import (
	"testing"

	"github.com/kubemcp/kubectl-mcp-server/pkg/config"
)

func TestEvaluateContextAllowlist(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AllowedContexts = []string{"staging", "dev"}

	tests := []struct {
		name    string
		context string
		want    Verdict
	}{
		{"allowed context", "staging", VerdictAllow},
		{"other allowed context", "dev", VerdictAllow},
		{"unlisted context", "prod", VerdictDeny},
		{"empty context always passes", "", VerdictAllow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(&Request{Context: tt.context}, cfg)
			if d.Verdict != tt.want {
				t.Errorf("Evaluate() verdict = %v, want %v (reason %q)", d.Verdict, tt.want, d.Reason)
			}
		})
	}
}

func TestEvaluateContextAllowlistEmptyMeansAll(t *testing.T) {
	cfg := config.DefaultConfig()
	d := Evaluate(&Request{Context: "anything"}, cfg)
	if d.Verdict != VerdictAllow {
		t.Errorf("Empty allowlist should allow any context, got %v", d.Verdict)
	}
}

func TestEvaluateReadOnlyDeniesAllMutations(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ReadOnly = true
	cfg.AllowClusterScopedApply = true
	cfg.NamespaceAllowlist = []string{"team-a"}

	// Read-only mode must deny independent of every other request field.
	requests := []*Request{
		{Mutating: true},
		{Mutating: true, Namespace: "team-a"},
		{Mutating: true, Kind: KindDeployment, Confirmed: true},
		{Mutating: true, ScaleToZero: true, Confirmed: true},
		{Mutating: true, Kind: KindClusterRole},
	}
	for _, req := range requests {
		d := Evaluate(req, cfg)
		if d.Verdict != VerdictDeny {
			t.Errorf("Read-only mode should deny %+v, got %v", req, d.Verdict)
		}
	}

	// Read-only operations are unaffected.
	d := Evaluate(&Request{Namespace: "kube-system"}, cfg)
	if d.Verdict != VerdictAllow {
		t.Errorf("Read-only mode should not block read operations, got %v", d.Verdict)
	}
}

func TestEvaluateNamespaceRules(t *testing.T) {
	tests := []struct {
		name      string
		allowlist []string
		blocklist []string
		namespace string
		mutating  bool
		want      Verdict
	}{
		{
			name:      "blocklisted namespace denied for writes",
			blocklist: []string{"kube-system"},
			namespace: "kube-system",
			mutating:  true,
			want:      VerdictDeny,
		},
		{
			name:      "blocklisted namespace allowed for reads",
			blocklist: []string{"kube-system"},
			namespace: "kube-system",
			mutating:  false,
			want:      VerdictAllow,
		},
		{
			name:      "namespace outside allowlist denied",
			allowlist: []string{"team-a"},
			namespace: "team-b",
			mutating:  true,
			want:      VerdictDeny,
		},
		{
			name:      "namespace in allowlist allowed",
			allowlist: []string{"team-a"},
			namespace: "team-a",
			mutating:  true,
			want:      VerdictAllow,
		},
		{
			name:      "namespace on both lists is denied",
			allowlist: []string{"team-a"},
			blocklist: []string{"team-a"},
			namespace: "team-a",
			mutating:  true,
			want:      VerdictDeny,
		},
		{
			name:      "no namespace skips the rule",
			blocklist: []string{"kube-system"},
			namespace: "",
			mutating:  true,
			want:      VerdictAllow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.NamespaceAllowlist = tt.allowlist
			cfg.NamespaceBlocklist = tt.blocklist
			d := Evaluate(&Request{Namespace: tt.namespace, Mutating: tt.mutating}, cfg)
			if d.Verdict != tt.want {
				t.Errorf("Evaluate() verdict = %v, want %v (reason %q)", d.Verdict, tt.want, d.Reason)
			}
		})
	}
}

func TestEvaluateProtectedKinds(t *testing.T) {
	protected := []ResourceKind{
		KindClusterRole,
		KindClusterRoleBinding,
		KindMutatingWebhookConfiguration,
		KindValidatingWebhookConfiguration,
		KindCustomResourceDefinition,
		KindPersistentVolume,
	}

	cfg := config.DefaultConfig()
	for _, kind := range protected {
		d := Evaluate(&Request{Mutating: true, Kind: kind}, cfg)
		if d.Verdict != VerdictDeny {
			t.Errorf("Mutating %s should be denied by default, got %v", kind, d.Verdict)
		}

		// Reads are never blocked by the protected-kind rule.
		d = Evaluate(&Request{Mutating: false, Kind: kind}, cfg)
		if d.Verdict != VerdictAllow {
			t.Errorf("Reading %s should be allowed, got %v", kind, d.Verdict)
		}
	}

	cfg.AllowClusterScopedApply = true
	for _, kind := range protected {
		d := Evaluate(&Request{Mutating: true, Kind: kind}, cfg)
		if d.Verdict != VerdictAllow {
			t.Errorf("Mutating %s with cluster apply allowed should pass, got %v", kind, d.Verdict)
		}
	}

	// Cluster-scoped but unprotected kinds are not blocked.
	cfg.AllowClusterScopedApply = false
	d := Evaluate(&Request{Mutating: true, Kind: KindNode}, cfg)
	if d.Verdict != VerdictAllow {
		t.Errorf("Mutating a Node should not hit the protected-kind rule, got %v", d.Verdict)
	}
}

func TestEvaluateScaleToZeroConfirmation(t *testing.T) {
	cfg := config.DefaultConfig()

	d := Evaluate(&Request{Mutating: true, Kind: KindDeployment, ScaleToZero: true}, cfg)
	if d.Verdict != VerdictRequireConfirmation {
		t.Fatalf("Unconfirmed scale-to-zero should require confirmation, got %v", d.Verdict)
	}
	if d.Reason == "" {
		t.Error("Confirmation decision should carry a reason")
	}

	d = Evaluate(&Request{Mutating: true, Kind: KindDeployment, ScaleToZero: true, Confirmed: true}, cfg)
	if d.Verdict != VerdictAllow {
		t.Errorf("Confirmed scale-to-zero should be allowed, got %v", d.Verdict)
	}
}

func TestEvaluateIsPure(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AllowedContexts = []string{"staging"}
	req := &Request{Context: "prod", Namespace: "kube-system", Mutating: true}

	first := Evaluate(req, cfg)
	second := Evaluate(req, cfg)

	if first != second {
		t.Errorf("Evaluate() is not idempotent: %+v vs %+v", first, second)
	}
	if req.Context != "prod" || req.Namespace != "kube-system" || !req.Mutating {
		t.Error("Evaluate() mutated its request")
	}
}

func TestEvaluateRuleOrder(t *testing.T) {
	// Context rule fires before the read-only rule.
	cfg := config.DefaultConfig()
	cfg.ReadOnly = true
	cfg.AllowedContexts = []string{"staging"}

	d := Evaluate(&Request{Context: "prod", Mutating: true}, cfg)
	if d.Verdict != VerdictDeny {
		t.Fatalf("Expected deny, got %v", d.Verdict)
	}
	if got, want := d.Reason, `context "prod" is not in the allowed list [staging]`; got != want {
		t.Errorf("Expected the context rule to fire first, got reason %q", got)
	}
}

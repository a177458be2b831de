package toolset

import (
	"testing"

	"github.com/kubemcp/kubectl-mcp-server/pkg/toolset/paramutil"
)

func TestServerToolMutating(t *testing.T) {
	tests := []struct {
		name     string
		readOnly *bool
		want     bool
	}{
		{"no annotation defaults to mutating", nil, true},
		{"explicit read-only", paramutil.BoolPtr(true), false},
		{"explicit mutating", paramutil.BoolPtr(false), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &ServerTool{Annotations: ToolAnnotations{ReadOnlyHint: tt.readOnly}}
			if got := st.Mutating(); got != tt.want {
				t.Errorf("Mutating() = %v, want %v", got, tt.want)
			}
		})
	}
}

package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
)

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			var out bytes.Buffer
			root := New(io.Discard, LogInfo).RootCommand()
			root.SetOut(&out)
			root.SetArgs([]string{"completion", shell})
			if err := root.ExecuteContext(context.Background()); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out.String(), appName) {
				t.Errorf("%s completion does not mention %q", shell, appName)
			}
		})
	}
}

func TestCompletionCommandRejectsUnknownShell(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"completion", "tcsh"})
	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Error("expected error for unsupported shell")
	}
}

func TestRenderFlagCompletions(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
		not  []string
	}{
		{"label policy", []string{"render", "in.json", "--label-policy", ""}, []string{"auto", "fixed"}, nil},
		{"format", []string{"render", "in.json", "--format", "p"}, []string{"pdf", "png"}, []string{"svg"}},
		{"format list", []string{"render", "in.json", "--format", "pdf,s"}, []string{"pdf,svg"}, []string{"pdf,png"}},
		{"serve format", []string{"serve", "--format", "j"}, []string{"json"}, []string{"pdf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			root := New(io.Discard, LogInfo).RootCommand()
			root.SetOut(&out)
			root.SetErr(io.Discard)
			root.SetArgs(append([]string{"__complete"}, tt.args...))
			if err := root.ExecuteContext(context.Background()); err != nil {
				t.Fatal(err)
			}
			lines := strings.Split(out.String(), "\n")
			has := func(v string) bool {
				for _, l := range lines {
					if l == v {
						return true
					}
				}
				return false
			}
			for _, w := range tt.want {
				if !has(w) {
					t.Errorf("completions %q missing %q", out.String(), w)
				}
			}
			for _, n := range tt.not {
				if has(n) {
					t.Errorf("completions %q should not offer %q", out.String(), n)
				}
			}
		})
	}
}

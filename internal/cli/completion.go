package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/timeline/pkg/layout"
	"github.com/matzehuels/timeline/pkg/pipeline"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for timeline.

To load completions:

Bash:
  $ source <(timeline completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ timeline completion bash > /etc/bash_completion.d/timeline
  # macOS:
  $ timeline completion bash > $(brew --prefix)/etc/bash_completion.d/timeline

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ timeline completion zsh > "${fpath[1]}/_timeline"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ timeline completion fish | source

  # To load completions for each session, execute once:
  $ timeline completion fish > ~/.config/fish/completions/timeline.fish

PowerShell:
  PS> timeline completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> timeline completion powershell > timeline.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// registerRenderCompletions completes the values of the render flags. The
// format completion extends a comma list ("pdf,s" offers "pdf,svg").
func registerRenderCompletions(cmd *cobra.Command) {
	cmd.RegisterFlagCompletionFunc("format", completeFormats)
	cmd.RegisterFlagCompletionFunc("label-policy", cobra.FixedCompletions(
		[]string{string(layout.PolicyAutoFit), string(layout.PolicyFixed)}, cobra.ShellCompDirectiveNoFileComp))
	cmd.MarkFlagFilename("config", "toml", "yaml", "yml")
}

func completeFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix := ""
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix = toComplete[:i+1]
	}
	var out []string
	for _, f := range []string{pipeline.FormatPDF, pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatJSON} {
		if strings.HasPrefix(prefix+f, toComplete) {
			out = append(out, prefix+f)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

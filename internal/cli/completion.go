package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// completionCommand generates shell completion scripts.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: fmt.Sprintf(`Generate a completion script for your shell.

Bash:
  source <(%[1]s completion bash)

Zsh:
  %[1]s completion zsh > "${fpath[1]}/_%[1]s"

Fish:
  %[1]s completion fish | source

PowerShell:
  %[1]s completion powershell | Out-String | Invoke-Expression
`, appName),
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}
}

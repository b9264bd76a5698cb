package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mkashifaslam/prompt-studio/internal/core/prompts"
	"github.com/mkashifaslam/prompt-studio/internal/core/variables"
	"github.com/mkashifaslam/prompt-studio/internal/observability"
	"github.com/mkashifaslam/prompt-studio/internal/output"
)

var varsCmd = &cobra.Command{
	Use:   "vars <file>",
	Short: "List the placeholders and variable definitions of a prompt file",
	Long: `Extract the {{placeholders}} of a local prompt file and reconcile them
with the definitions in its frontmatter. Placeholders without a definition
get a default string definition, and definitions no longer referenced by the
content are reported as dropped. Definition issues (for example a select
without options) are listed after the table.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := prompts.LoadFile(args[0])
		if err != nil {
			return err
		}

		synced := prompts.Sync(file.Content, file.Variables)
		for _, def := range synced.Dropped {
			observability.CLILogger.Warn("Definition not referenced by content",
				zap.String("file", file.Source),
				zap.String("key", def.Key))
		}
		issues := variables.ValidateDefinitions(synced.Variables)

		return writeOutput(cmd, func(f output.Formatter) (string, error) {
			return f.FormatVariables(synced.Keys, synced.Variables, issues)
		})
	},
}

func init() {
	rootCmd.AddCommand(varsCmd)
	addOutputFlags(varsCmd)
}

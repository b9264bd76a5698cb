package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mkashifaslam/prompt-studio/internal/core"
	"github.com/mkashifaslam/prompt-studio/internal/core/prompts"
	"github.com/mkashifaslam/prompt-studio/internal/observability"
	"github.com/mkashifaslam/prompt-studio/internal/output"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Manage stored prompts",
}

var promptListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored prompts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, err := openServices(ctx)
		if err != nil {
			return err
		}
		defer svc.Close() // nolint:errcheck // best-effort cleanup

		list, err := svc.prompts.List(ctx)
		if err != nil {
			return err
		}
		if activeOnly, _ := cmd.Flags().GetBool("active"); activeOnly {
			filtered := list[:0]
			for _, p := range list {
				if p.Active {
					filtered = append(filtered, p)
				}
			}
			list = filtered
		}

		return writeOutput(cmd, func(f output.Formatter) (string, error) {
			return f.FormatPrompts(list)
		})
	},
}

var promptShowCmd = &cobra.Command{
	Use:   "show <id|name>",
	Short: "Show a prompt with its variables and content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, err := openServices(ctx)
		if err != nil {
			return err
		}
		defer svc.Close() // nolint:errcheck // best-effort cleanup

		prompt, err := resolvePrompt(cmd, svc, args[0])
		if err != nil {
			return err
		}
		return writeOutput(cmd, func(f output.Formatter) (string, error) {
			return f.FormatPrompt(prompt)
		})
	},
}

var promptImportCmd = &cobra.Command{
	Use:   "import <file|dir>",
	Short: "Import prompt files (markdown with YAML frontmatter)",
	Long: `Import prompt files into the store.

A prompt file is markdown with an optional YAML frontmatter block:

  ---
  name: greeting
  description: Say hello
  variables:
    - key: tone
      type: select
      options: [formal, casual]
  ---
  Hello {{name}}, in a {{tone}} tone.

Variables are reconciled against the content on import. Existing prompts
are skipped unless --replace is set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := prompts.LoadPath(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		svc, err := openServices(ctx)
		if err != nil {
			return err
		}
		defer svc.Close() // nolint:errcheck // best-effort cleanup

		mode := prompts.ImportSkipExisting
		if replace, _ := cmd.Flags().GetBool("replace"); replace {
			mode = prompts.ImportReplace
		}

		result, err := svc.prompts.Import(ctx, files, mode)
		if err != nil {
			return err
		}
		return writeOutput(cmd, func(f output.Formatter) (string, error) {
			return f.FormatImport(result)
		})
	},
}

var promptDeleteCmd = &cobra.Command{
	Use:   "delete <id|name>",
	Short: "Delete a prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, err := openServices(ctx)
		if err != nil {
			return err
		}
		defer svc.Close() // nolint:errcheck // best-effort cleanup

		prompt, err := resolvePrompt(cmd, svc, args[0])
		if err != nil {
			return err
		}
		if err := svc.prompts.Delete(ctx, prompt.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted prompt %s (%s)\n", prompt.Name, prompt.ID)
		return nil
	},
}

var promptBuiltinCmd = &cobra.Command{
	Use:   "builtin",
	Short: "List the embedded prompt library, or seed it with --seed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		seed, _ := cmd.Flags().GetBool("seed")
		if seed {
			ctx := cmd.Context()
			svc, err := openServices(ctx)
			if err != nil {
				return err
			}
			defer svc.Close() // nolint:errcheck // best-effort cleanup

			result, err := svc.prompts.SeedBuiltin(ctx)
			if err != nil {
				return err
			}
			return writeOutput(cmd, func(f output.Formatter) (string, error) {
				return f.FormatImport(result)
			})
		}

		lib, err := prompts.BuiltinLibrary()
		if err != nil {
			return err
		}
		list := make([]core.Prompt, 0, len(lib.List()))
		for _, file := range lib.List() {
			list = append(list, filePrompt(file))
		}
		return writeOutput(cmd, func(f output.Formatter) (string, error) {
			return f.FormatPrompts(list)
		})
	},
}

// resolvePrompt looks a prompt up by ID, then by name.
func resolvePrompt(cmd *cobra.Command, svc *services, ref string) (*core.Prompt, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("prompt id or name is required")
	}
	prompt, err := svc.prompts.Resolve(cmd.Context(), ref)
	if err != nil {
		return nil, fmt.Errorf("prompt %q: %w", ref, err)
	}
	observability.CLILogger.Debug("Resolved prompt", zap.String("ref", ref), zap.String("id", prompt.ID))
	return prompt, nil
}

// filePrompt previews a prompt file the way it would be stored.
func filePrompt(file *prompts.File) core.Prompt {
	in := file.Input()
	prompt := core.Prompt{
		Name:      in.Name,
		Content:   in.Content,
		Variables: prompts.Sync(in.Content, in.Variables).Variables,
		Metadata:  in.Metadata,
		Version:   1,
		Active:    true,
	}
	if in.Version != nil {
		prompt.Version = *in.Version
	}
	if in.Active != nil {
		prompt.Active = *in.Active
	}
	return prompt
}

func init() {
	rootCmd.AddCommand(promptCmd)
	promptCmd.AddCommand(promptListCmd, promptShowCmd, promptImportCmd, promptDeleteCmd, promptBuiltinCmd)

	addOutputFlags(promptListCmd, promptShowCmd, promptImportCmd, promptBuiltinCmd)
	promptListCmd.Flags().Bool("active", false, "Only list active prompts")
	promptImportCmd.Flags().Bool("replace", false, "Replace prompts that already exist")
	promptBuiltinCmd.Flags().Bool("seed", false, "Store builtin prompts that are not stored yet")
}

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mkashifaslam/prompt-studio/internal/core/prompts"
	"github.com/mkashifaslam/prompt-studio/internal/core/variables"
	"github.com/mkashifaslam/prompt-studio/internal/output"
)

var renderCmd = &cobra.Command{
	Use:   "render <id|name>",
	Short: "Render a prompt with variable values",
	Long: `Render a stored prompt, or a local prompt file with --file.

Values come from --values (a YAML or JSON object of strings) and repeated
--set key=value flags; --set wins. Missing values fall back to the variable
default, then to a [key] marker. Issues are listed after the text and never
prevent rendering; --strict exits non-zero when any are reported.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := collectValues(cmd)
		if err != nil {
			return err
		}

		path, _ := cmd.Flags().GetString("file")
		var result *prompts.RenderResult
		switch {
		case path != "" && len(args) > 0:
			return fmt.Errorf("use either a prompt reference or --file, not both")
		case path != "":
			file, err := prompts.LoadFile(path)
			if err != nil {
				return err
			}
			local := filePrompt(file)
			result = &prompts.RenderResult{
				Name:    local.Name,
				Version: local.Version,
				Preview: prompts.Preview(local.Content, local.Variables, values),
			}
		case len(args) == 1:
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
			result, err = svc.prompts.Render(ctx, prompt.ID, values)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("a prompt reference or --file is required")
		}

		if err := writeOutput(cmd, func(f output.Formatter) (string, error) {
			return f.FormatRender(result)
		}); err != nil {
			return err
		}

		if strict, _ := cmd.Flags().GetBool("strict"); strict && len(result.Issues) > 0 {
			return fmt.Errorf("%d variable issues reported", len(result.Issues))
		}
		return nil
	},
}

// collectValues merges the --values file with --set pairs.
func collectValues(cmd *cobra.Command) (variables.Values, error) {
	values := variables.Values{}

	if path, _ := cmd.Flags().GetString("values"); path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- values path is user-provided
		if err != nil {
			return nil, fmt.Errorf("read values: %w", err)
		}
		raw := map[string]yaml.Node{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse values %s: %w", path, err)
		}
		for key, node := range raw {
			value, ok, err := scalarValue(node)
			if err != nil {
				return nil, fmt.Errorf("parse values %s: %s: %w", path, key, err)
			}
			if ok {
				values[key] = value
			}
		}
	}

	pairs, err := cmd.Flags().GetStringArray("set")
	if err != nil {
		return nil, err
	}
	for _, pair := range pairs {
		key, value, err := parseSetValue(pair)
		if err != nil {
			return nil, err
		}
		values[key] = value
	}
	return values, nil
}

// scalarValue returns a value exactly as written in the file, so 007 stays
// 007 and dates keep their spelling. Nulls are skipped.
func scalarValue(node yaml.Node) (string, bool, error) {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = *node.Alias
	}
	if node.Kind != yaml.ScalarNode {
		return "", false, fmt.Errorf("line %d: expected a scalar value", node.Line)
	}
	if node.Tag == "!!null" {
		return "", false, nil
	}
	return node.Value, true, nil
}

func parseSetValue(pair string) (string, string, error) {
	key, value, ok := strings.Cut(pair, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid --set %q: expected key=value", pair)
	}
	return key, value, nil
}

func init() {
	rootCmd.AddCommand(renderCmd)

	addOutputFlags(renderCmd)
	renderCmd.Flags().StringArray("set", nil, "Variable value as key=value (repeatable)")
	renderCmd.Flags().String("values", "", "YAML or JSON file of variable values")
	renderCmd.Flags().String("file", "", "Render a local prompt file instead of a stored prompt")
	renderCmd.Flags().Bool("strict", false, "Exit non-zero when issues are reported")
}

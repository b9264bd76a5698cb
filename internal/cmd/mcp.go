package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mkashifaslam/prompt-studio/internal/core"
	"github.com/mkashifaslam/prompt-studio/internal/output"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Manage MCP server configurations",
}

var mcpListCmd = &cobra.Command{
	Use:   "list",
	Short: "List MCP server configurations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, err := openServices(ctx)
		if err != nil {
			return err
		}
		defer svc.Close() // nolint:errcheck // best-effort cleanup

		list, err := svc.mcp.List(ctx)
		if err != nil {
			return err
		}
		return writeOutput(cmd, func(f output.Formatter) (string, error) {
			return f.FormatMcpConfigs(list)
		})
	},
}

var mcpShowCmd = &cobra.Command{
	Use:   "show <id|name>",
	Short: "Print one MCP server configuration as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, err := openServices(ctx)
		if err != nil {
			return err
		}
		defer svc.Close() // nolint:errcheck // best-effort cleanup

		record, err := svc.mcp.Resolve(ctx, strings.TrimSpace(args[0]))
		if err != nil {
			return fmt.Errorf("mcp config %q: %w", args[0], err)
		}
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	},
}

var mcpApplyCmd = &cobra.Command{
	Use:   "apply <name> <file>",
	Short: "Create or replace an MCP server configuration from a JSON or YAML file",
	Long: `Validate a server configuration file and store it under <name>.

The file holds a single server object:

  name: filesystem
  transport: stdio
  command: npx
  args: ["-y", "@modelcontextprotocol/server-filesystem", "/data"]
  timeout: 60

Applying to an existing name replaces its configuration and keeps its ID.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readServerFile(args[1])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		svc, err := openServices(ctx)
		if err != nil {
			return err
		}
		defer svc.Close() // nolint:errcheck // best-effort cleanup

		record, err := svc.mcp.Upsert(ctx, args[0], raw)
		if err != nil {
			return err
		}
		return writeOutput(cmd, func(f output.Formatter) (string, error) {
			return f.FormatMcpConfigs([]core.McpConfig{*record})
		})
	},
}

var mcpDeleteCmd = &cobra.Command{
	Use:   "delete <id|name>",
	Short: "Delete an MCP server configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, err := openServices(ctx)
		if err != nil {
			return err
		}
		defer svc.Close() // nolint:errcheck // best-effort cleanup

		record, err := svc.mcp.Resolve(ctx, strings.TrimSpace(args[0]))
		if err != nil {
			return fmt.Errorf("mcp config %q: %w", args[0], err)
		}
		if err := svc.mcp.Delete(ctx, record.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted MCP config %s (%s)\n", record.Name, record.ID)
		return nil
	},
}

// readServerFile returns the file as JSON. YAML files are converted so
// both formats go through the same schema validation.
func readServerFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		return nil, fmt.Errorf("read mcp config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse mcp config %s: %w", path, err)
		}
		return json.Marshal(doc)
	default:
		return data, nil
	}
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.AddCommand(mcpListCmd, mcpShowCmd, mcpApplyCmd, mcpDeleteCmd)

	addOutputFlags(mcpListCmd, mcpApplyCmd)
}

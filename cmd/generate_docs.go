package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/todoist-mcp/internal/server"
	"github.com/teemow/todoist-mcp/internal/todoist"
	"github.com/teemow/todoist-mcp/internal/tools/common"
	"github.com/teemow/todoist-mcp/internal/tools/todoist_tools"
)

func newGenerateDocsCmd() *cobra.Command {
	var (
		outputFile    string
		outputSchemas bool
	)

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools.
This command introspects the registered tools and outputs their documentation
in markdown format, ensuring the documentation is always accurate and in sync
with the actual tool implementations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			markdown, err := generateDocs(outputSchemas)
			if err != nil {
				return err
			}
			if outputFile != "" {
				if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
					return fmt.Errorf("failed to write output file: %w", err)
				}
				fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), markdown)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&outputSchemas, "output-schemas", false, "Include each tool's output JSON schema")

	return cmd
}

func generateDocs(outputSchemas bool) (string, error) {
	// No request is ever sent; the client only has to exist.
	ctx := context.Background()
	client, err := todoist.NewClient(ctx, todoist.Config{Token: "dummy-token"})
	if err != nil {
		return "", fmt.Errorf("failed to create client: %w", err)
	}
	serverContext, err := server.NewServerContext(ctx, client)
	if err != nil {
		return "", fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	mcpSrv := mcpserver.NewMCPServer("todoist-mcp", version,
		mcpserver.WithToolCapabilities(true),
	)

	// Register everything, including the tools hidden in read-only mode
	if err := todoist_tools.RegisterTodoistTools(mcpSrv, serverContext, false); err != nil {
		return "", fmt.Errorf("failed to register Todoist tools: %w", err)
	}

	serverTools := mcpSrv.ListTools()
	tools := make([]mcp.Tool, 0, len(serverTools))
	for _, serverTool := range serverTools {
		tools = append(tools, serverTool.Tool)
	}

	defs := make(map[string]common.Definition)
	for _, def := range todoist_tools.Definitions() {
		defs[def.Name] = def
	}

	return generateToolsMarkdown(tools, defs, outputSchemas)
}

func generateToolsMarkdown(tools []mcp.Tool, defs map[string]common.Definition, outputSchemas bool) (string, error) {
	var sb strings.Builder

	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("This document provides a complete reference of all tools available when running todoist-mcp as an MCP server.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	toolsByCategory := groupToolsByCategory(tools)

	categories := make([]string, 0, len(toolsByCategory))
	for category := range toolsByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	sb.WriteString("## Table of Contents\n\n")
	for _, category := range categories {
		anchor := strings.ToLower(strings.ReplaceAll(category, " ", "-"))
		fmt.Fprintf(&sb, "- [%s](#%s)\n", category, anchor)
	}
	sb.WriteString("\n")

	sb.WriteString("## Read-only Mode\n\n")
	sb.WriteString("With `--read-only`, only tools marked `readonly` are registered. ")
	sb.WriteString("Wherever a `projectId` is accepted, `inbox` resolves to the user's inbox project.\n\n")

	for _, category := range categories {
		categoryTools := toolsByCategory[category]
		sort.Slice(categoryTools, func(i, j int) bool {
			return categoryTools[i].Name < categoryTools[j].Name
		})

		fmt.Fprintf(&sb, "## %s\n\n", category)

		for _, tool := range categoryTools {
			md, err := generateToolMarkdown(tool, defs[tool.Name], outputSchemas)
			if err != nil {
				return "", err
			}
			sb.WriteString(md)
			sb.WriteString("\n")
		}
	}

	return sb.String(), nil
}

func groupToolsByCategory(tools []mcp.Tool) map[string][]mcp.Tool {
	categories := make(map[string][]mcp.Tool)
	for _, tool := range tools {
		category := getCategoryFromToolName(tool.Name)
		categories[category] = append(categories[category], tool)
	}
	return categories
}

func getCategoryFromToolName(name string) string {
	switch {
	case strings.Contains(name, "task"):
		return "Task Tools"
	case strings.HasSuffix(name, "-projects"):
		return "Project Tools"
	case strings.HasSuffix(name, "-sections"):
		return "Section Tools"
	case strings.HasSuffix(name, "-comments"):
		return "Comment Tools"
	case name == "search" || name == "fetch" || name == "delete-object":
		return "Generic Tools"
	default:
		return "Account Tools"
	}
}

func generateToolMarkdown(tool mcp.Tool, def common.Definition, outputSchemas bool) (string, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "### %s\n\n", tool.Name)

	if def.Mutability != "" {
		fmt.Fprintf(&sb, "*Mutability:* `%s`\n\n", def.Mutability)
	}

	if tool.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", tool.Description)
	}

	if len(tool.InputSchema.Properties) > 0 {
		sb.WriteString("**Arguments:**\n")

		propNames := make([]string, 0, len(tool.InputSchema.Properties))
		for name := range tool.InputSchema.Properties {
			propNames = append(propNames, name)
		}
		sort.Strings(propNames)

		for _, name := range propNames {
			propMap, ok := tool.InputSchema.Properties[name].(map[string]any)
			if !ok {
				continue
			}

			requiredStr := "optional"
			if slices.Contains(tool.InputSchema.Required, name) {
				requiredStr = "required"
			}

			fmt.Fprintf(&sb, "- `%s` (%s, %s): ", name, getPropertyType(propMap), requiredStr)
			if desc, ok := propMap["description"].(string); ok {
				sb.WriteString(desc)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if outputSchemas && def.Name != "" {
		schema, err := def.OutputSchemaJSON()
		if err != nil {
			return "", fmt.Errorf("failed to render output schema for %s: %w", def.Name, err)
		}
		sb.WriteString("**Output schema:**\n\n```json\n")
		sb.WriteString(schema)
		sb.WriteString("\n```\n\n")
	}

	return sb.String(), nil
}

func getPropertyType(prop map[string]any) string {
	if t, ok := prop["type"].(string); ok {
		return t
	}
	return "any"
}

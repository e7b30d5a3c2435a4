package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ronwebb/ghinfer/internal/logger"
	"github.com/ronwebb/ghinfer/internal/model"
	"github.com/ronwebb/ghinfer/internal/model/contract"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"
)

var (
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))
	toolStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

var chatCmd = &cobra.Command{
	Use:   "chat [prompt]",
	Short: "Send a one-shot completion request",
	Long: `Sends a single completion request to the configured model and prints
either the assistant's answer or the tool calls it requested. The prompt is
taken from the arguments, or from stdin when omitted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt := strings.TrimSpace(strings.Join(args, " "))
		if prompt == "" {
			raw, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read prompt from stdin: %w", err)
			}
			prompt = strings.TrimSpace(string(raw))
		}
		if prompt == "" {
			return fmt.Errorf("prompt is required")
		}

		req, err := buildRequest(cmd, prompt)
		if err != nil {
			return err
		}

		router, err := model.NewRouter(cfg.Models)
		if err != nil {
			return err
		}

		modelName, _ := cmd.Flags().GetString("model")
		ctx := logger.WithTraceID(context.Background(), logger.NewTraceID())

		resp, err := router.Route(ctx, modelName, req)
		if err != nil {
			return err
		}

		printResponse(cmd.OutOrStdout(), resp)
		return nil
	},
}

func buildRequest(cmd *cobra.Command, prompt string) (contract.CompletionRequest, error) {
	req := contract.CompletionRequest{}

	if system, _ := cmd.Flags().GetString("system"); system != "" {
		req.Messages = append(req.Messages, contract.Message{Role: contract.RoleSystem, Content: system})
	}
	req.Messages = append(req.Messages, contract.Message{Role: contract.RoleUser, Content: prompt})

	if toolsPath, _ := cmd.Flags().GetString("tools"); toolsPath != "" {
		tools, err := loadToolDefs(toolsPath)
		if err != nil {
			return req, err
		}
		req.Tools = tools
	}

	if cmd.Flags().Changed("temperature") {
		temp, _ := cmd.Flags().GetFloat32("temperature")
		req.Temperature = &temp
	}
	if maxTokens, _ := cmd.Flags().GetInt("max_tokens"); maxTokens > 0 {
		req.MaxTokens = maxTokens
	}

	return req, nil
}

// loadToolDefs reads tool declarations from a JSON file holding an array of
// {name, description, parameters} objects.
func loadToolDefs(path string) ([]contract.ToolDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tools file: %w", err)
	}

	var tools []contract.ToolDef
	if err := json.Unmarshal(raw, &tools); err != nil {
		return nil, fmt.Errorf("parse tools file %s: %w", path, err)
	}
	return tools, nil
}

func printResponse(w io.Writer, resp *contract.CompletionResponse) {
	if len(resp.ToolCalls) > 0 {
		fmt.Fprintln(w, toolStyle.Render("Tool calls requested:"))
		for _, tc := range resp.ToolCalls {
			fmt.Fprintf(w, "  %s %s\n", toolStyle.Render(tc.Name), dimStyle.Render("("+tc.ID+")"))
			fmt.Fprintf(w, "    %s\n", tc.Input)
		}
		return
	}

	fmt.Fprintln(w, assistantStyle.Render(resp.Content))
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("model", "m", "", "registered model name (default from config)")
	chatCmd.Flags().String("system", "", "system prompt to prepend")
	chatCmd.Flags().String("tools", "", "path to a JSON file with tool declarations")
	chatCmd.Flags().Float32P("temperature", "t", 0, "sampling temperature")
	chatCmd.Flags().Int("max_tokens", 0, "completion token cap")
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config and GitHub Actions workflow",
	Long: `Creates .testwing.yaml with commented defaults and a workflow that runs
'testwing generate' whenever a pull request references a JIRA ticket.
Existing files are left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		spaceKey, _ := cmd.Flags().GetString("space")

		wrote, err := writeConfigFile(spaceKey)
		if err != nil {
			return err
		}
		if wrote {
			fmt.Println("wrote .testwing.yaml")
		} else {
			fmt.Println(".testwing.yaml already exists, skipping")
		}

		wrote, err = writeWorkflowFile(spaceKey)
		if err != nil {
			return err
		}
		if wrote {
			fmt.Println("wrote .github/workflows/testwing.yml")
		} else {
			fmt.Println(".github/workflows/testwing.yml already exists, skipping")
		}

		fmt.Println("\nNext: set ATLASSIAN and LLM secrets in your repository settings.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringP("space", "s", "DOCS", "Confluence space key to bake into the workflow")
}

func writeConfigFile(spaceKey string) (bool, error) {
	const path = ".testwing.yaml"
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	cfg := map[string]any{
		"atlassian": map[string]any{
			"baseURL": "https://your-site.atlassian.net",
			"email":   "bot@your-site.com",
		},
		"confluence": map[string]any{
			"space": spaceKey,
		},
		"llm": map[string]any{
			"provider": "openai",
		},
		"filter": map[string]any{
			"max_pages": 30,
			"min_score": 0.3,
		},
		"redaction": map[string]any{
			"enabled": false,
		},
		"output": map[string]any{
			"dir":      "generated-tests",
			"language": "go",
		},
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}

func writeWorkflowFile(spaceKey string) (bool, error) {
	path := filepath.Join(".github", "workflows", "testwing.yml")
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create workflows dir: %w", err)
	}

	workflow := map[string]any{
		"name": "TestWing",
		"on": map[string]any{
			"pull_request": map[string]any{"types": []string{"opened", "edited"}},
			"workflow_dispatch": map[string]any{
				"inputs": map[string]any{
					"ticket": map[string]any{"description": "JIRA ticket key", "required": true},
				},
			},
		},
		"jobs": map[string]any{
			"generate-tests": map[string]any{
				"runs-on": "ubuntu-latest",
				"steps": []any{
					map[string]any{"uses": "actions/checkout@v4"},
					map[string]any{
						"uses": "actions/setup-go@v5",
						"with": map[string]any{"go-version": "1.24"},
					},
					map[string]any{
						"name": "Generate tests",
						"run":  fmt.Sprintf("go run github.com/testwing/testwing@latest generate \"${{ github.event.inputs.ticket }}\" --space %s", spaceKey),
						"env": map[string]any{
							"TESTWING_ATLASSIAN_BASEURL":  "${{ secrets.ATLASSIAN_BASE_URL }}",
							"TESTWING_ATLASSIAN_EMAIL":    "${{ secrets.ATLASSIAN_EMAIL }}",
							"TESTWING_ATLASSIAN_APITOKEN": "${{ secrets.ATLASSIAN_API_TOKEN }}",
							"OPENAI_API_KEY":              "${{ secrets.OPENAI_API_KEY }}",
						},
					},
					map[string]any{
						"uses": "actions/upload-artifact@v4",
						"with": map[string]any{"name": "generated-tests", "path": "generated-tests/"},
					},
				},
			},
		},
	}

	data, err := yaml.Marshal(workflow)
	if err != nil {
		return false, fmt.Errorf("marshal workflow: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}

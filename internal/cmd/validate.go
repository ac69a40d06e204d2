package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/obhq/obbuild/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the .obbuild.yaml configuration",
	Long: `Validates the .obbuild.yaml configuration file against its JSON Schema.
The file is optional; this command requires it to exist.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	path := filepath.Join(cwd, config.FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%s not found in current directory", config.FileName)
	}

	fmt.Printf("🔍 Validating %s...\n", config.FileName)

	problems, err := config.Validate(data)
	if err != nil {
		return err
	}
	if len(problems) == 0 {
		fmt.Printf("✅ %s is valid!\n", config.FileName)
		return nil
	}

	fmt.Println("\n❌ Validation failed with the following errors:")
	fmt.Println()
	for i, desc := range problems {
		fmt.Printf("%d. %s\n", i+1, desc)
	}

	return fmt.Errorf("validation failed with %d errors", len(problems))
}

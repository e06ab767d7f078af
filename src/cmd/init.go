package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/VectorBits/clearsign/src/internal/report"
	"github.com/VectorBits/clearsign/src/internal/ui"
)

func (c *cli) newInitCommand() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(path); err == nil {
				ui.LogInfo("Config file already exists: %s", path)
				return nil
			}
			if err := report.WriteFileAtomic(path, c.example); err != nil {
				return fmt.Errorf("failed to init config file: %w", err)
			}
			ui.LogSuccess("Created default config file: %s", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", filepath.Join("config", "settings.yaml"), "where to write the settings file")
	return cmd
}

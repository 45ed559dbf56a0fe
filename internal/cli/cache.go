package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// cacheCommand manages the local scene cache.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local scene cache",
	}
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached scenes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return err
			}

			removed := 0
			err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if info.IsDir() {
					return nil
				}
				if err := os.Remove(path); err != nil {
					return err
				}
				removed++
				return nil
			})
			if os.IsNotExist(err) {
				printInfo("cache is already empty")
				return nil
			}
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Removed %d cached entries", removed)
			printFile(dir)
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return err
			}
			fmt.Println(dir)
			return nil
		},
	}
}

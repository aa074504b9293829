package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stracetui/internal/symbolize"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the persistent resolution cache",
}

var cacheDirCmd = &cobra.Command{
	Use:   "dir",
	Short: "Print the cache directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		disk, err := openCache(cmd)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), disk.Dir())
		return err
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached resolution",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		disk, err := openCache(cmd)
		if err != nil {
			return err
		}
		if err := disk.DropAll(); err != nil {
			return fmt.Errorf("failed to clear %q: %w", disk.Dir(), err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", disk.Dir())
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheDirCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func openCache(cmd *cobra.Command) (*symbolize.DiskCache, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	return symbolize.OpenDiskCache(appName, s.cfg.Cache.Dir)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// 应用信息
const (
	AppName    = "docx-replacer"
	AppVersion = "2.0.0"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s v%s\n", AppName, AppVersion)
		},
	}
}

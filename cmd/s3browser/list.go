package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/s3browser/clientcli"
)

var listRecursive bool

var listCmd = &cobra.Command{
	Use:     "list [prefix]",
	Aliases: []string{"ls"},
	Short:   "List objects in the configured bucket",
	Long: `List objects in the configured bucket.

Without --recursive only the first level under prefix is shown and
deeper keys are folded into their common prefix.

Examples:
  s3browser list
  s3browser list images/
  s3browser list -r --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVarP(&listRecursive, "recursive", "r", false, "list all keys under prefix")
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := getClient(cmd)
	if err != nil {
		return err
	}

	opts := clientcli.ListOptions{Recursive: listRecursive}
	if len(args) > 0 {
		opts.Prefix = args[0]
	}

	result, err := client.List(cmd.Context(), opts)
	if err != nil {
		return err
	}
	return getFormatter().FormatList(os.Stdout, result)
}

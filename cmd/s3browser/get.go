package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/s3browser/clientcli"
)

var getCmd = &cobra.Command{
	Use:     "get <name> [local-path]",
	Aliases: []string{"download"},
	Short:   "Download an object to a local file",
	Long: `Download an object to a local file.

The local path defaults to ` + clientcli.DownloadPrefix + `<base name> in the working
directory. Use "-" to write the object to stdout.

Examples:
  s3browser get sample.txt
  s3browser get reports/sample.txt ./out.txt
  s3browser get sample.txt - | less`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runGet,
}

var catCmd = &cobra.Command{
	Use:   "cat <name>",
	Short: "Write an object to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return download(cmd, args[0], "-")
	},
}

var statCmd = &cobra.Command{
	Use:   "stat <name>",
	Short: "Show object metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient(cmd)
		if err != nil {
			return err
		}

		info, err := client.Stat(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return getFormatter().FormatStat(os.Stdout, info)
	},
}

func runGet(cmd *cobra.Command, args []string) error {
	localPath := ""
	if len(args) > 1 {
		localPath = args[1]
	}
	return download(cmd, args[0], localPath)
}

func download(cmd *cobra.Command, name, localPath string) error {
	client, err := getClient(cmd)
	if err != nil {
		return err
	}

	result, err := client.Download(cmd.Context(), clientcli.DownloadOptions{
		Name:      name,
		LocalPath: localPath,
	})
	if err != nil {
		return err
	}

	// Streamed content already went to stdout.
	if localPath == "-" {
		return nil
	}
	return getFormatter().FormatDownload(os.Stdout, result)
}

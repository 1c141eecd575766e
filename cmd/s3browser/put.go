package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/s3browser/clientcli"
)

var putRecursive bool

var putCmd = &cobra.Command{
	Use:     "put <local-path> [name]",
	Aliases: []string{"upload"},
	Short:   "Upload files to the configured bucket",
	Long: `Upload files to the configured bucket.

The object name defaults to the base name of the file. With --recursive
a directory is uploaded and name is used as the key prefix.

Examples:
  s3browser put ./sample.txt
  s3browser put ./sample.txt reports/sample.txt
  s3browser put -r ./images/ media/images`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPut,
}

func init() {
	putCmd.Flags().BoolVarP(&putRecursive, "recursive", "r", false, "upload directory recursively")
}

func runPut(cmd *cobra.Command, args []string) error {
	client, err := getClient(cmd)
	if err != nil {
		return err
	}

	opts := clientcli.UploadOptions{
		LocalPath: args[0],
		Recursive: putRecursive,
	}
	if len(args) > 1 {
		opts.Name = args[1]
	}

	results, err := client.Upload(cmd.Context(), opts)
	if err != nil && len(results) == 0 {
		return err
	}
	if fmtErr := getFormatter().FormatUpload(os.Stdout, results); fmtErr != nil {
		return fmtErr
	}
	if err != nil {
		return err
	}

	if clientcli.HasUploadErrors(results) {
		return errors.New("one or more uploads failed")
	}
	return nil
}

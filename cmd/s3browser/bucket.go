package main

import (
	"os"

	"github.com/spf13/cobra"
)

var existsCmd = &cobra.Command{
	Use:   "exists",
	Short: "Check whether the configured bucket exists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := getClient(cmd)
		if err != nil {
			return err
		}

		exists, err := client.Exists(cmd.Context())
		if err != nil {
			return err
		}
		return getFormatter().FormatExists(os.Stdout, client.Bucket(), exists)
	},
}

var bucketsCmd = &cobra.Command{
	Use:   "buckets",
	Short: "List all buckets visible to the credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := getClient(cmd)
		if err != nil {
			return err
		}

		buckets, err := client.Buckets(cmd.Context())
		if err != nil {
			return err
		}
		return getFormatter().FormatBuckets(os.Stdout, buckets)
	},
}

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Print the policy of the configured bucket",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := getClient(cmd)
		if err != nil {
			return err
		}

		policy, err := client.Policy(cmd.Context())
		if err != nil {
			return err
		}
		return getFormatter().FormatPolicy(os.Stdout, client.Bucket(), policy)
	},
}

var makeBucketRegion string

var makeBucketCmd = &cobra.Command{
	Use:   "make-bucket",
	Short: "Create the configured bucket",
	Long: `Create the configured bucket.

Examples:
  s3browser make-bucket
  s3browser make-bucket --bucket reports --region eu-west-1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := getClient(cmd)
		if err != nil {
			return err
		}

		if err := client.MakeBucket(cmd.Context(), makeBucketRegion); err != nil {
			return err
		}
		return getFormatter().FormatMakeBucket(os.Stdout, client.Bucket(), makeBucketRegion)
	},
}

func init() {
	makeBucketCmd.Flags().StringVar(&makeBucketRegion, "region", "", "bucket region")
}

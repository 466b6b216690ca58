package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	harnesserrors "github.com/maxkimambo/cbci/internal/errors"
	"github.com/maxkimambo/cbci/internal/properties"
	"github.com/maxkimambo/cbci/internal/validation"
)

func newPropertiesCmd(opts *options) *cobra.Command {
	var seedNode, out string

	cmd := &cobra.Command{
		Use:   "properties --seed-node <address>",
		Short: "Render the core integration properties without allocating a cluster",
		Long: `Render the integration.properties file that couchbase-jvm-core's tests read.
Without --out the file is printed to stdout.`,
		Example: `  cbci properties --seed-node 10.0.0.5
  cbci properties --seed-node 10.0.0.5 --bucket travel-sample --out src/test/resources/integration/integration.properties`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if seedNode == "" {
				return harnesserrors.NewValidationFailedError("seed-node", seedNode, "Properties rendering")
			}
			if err := validation.ValidateBucketName(cfg.Bucket); err != nil {
				return harnesserrors.NewValidationFailedError("bucket", cfg.Bucket, "Properties rendering").
					WithOriginalError(err)
			}

			record := properties.NewCoreTestProperties(seedNode, cfg.Bucket, cfg.Password)
			if out == "" {
				if err := record.Validate(); err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), record.Render())
				return nil
			}
			return properties.NewWriter(out+".staging", false).Write(record, out)
		},
	}

	cmd.Flags().StringVar(&seedNode, "seed-node", "", "Address of the first cluster node (required)")
	cmd.Flags().String("bucket", "default", "Bucket name, also used as username")
	cmd.Flags().String("password", "password", "Bucket password")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the file here instead of printing it")

	return cmd
}

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/maxkimambo/cbci/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	harnesserrors "github.com/maxkimambo/cbci/internal/errors"
)

var version = "v0.1.0"

// options holds the flags shared by all commands.
type options struct {
	debug      bool
	verbose    bool
	jsonLogs   bool
	quiet      bool
	configFile string

	clusterVersions []string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "cbci -c <version> [<version> ...]",
		Short: "Run the Couchbase Java client integration suite against fresh clusters",
		Long: `For every requested server version, allocate a single node cluster with cbdyncluster,
configure it, build couchbase-jvm-core and couchbase-java-client against it with Maven
and remove the cluster again. Versions run one after the other.`,
		Example: `  cbci -c 5.5.0 6.0.0
  cbci --cluster_versions 6.5.0 --keep-cluster --workdir /tmp/cbci`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Setup(opts.verbose || opts.debug, opts.jsonLogs, opts.quiet)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// nargs='+' style: words after -c are versions too
			versions := append(append([]string(nil), opts.clusterVersions...), args...)
			return runIntegration(cmd, opts, versions)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	pf.BoolVar(&opts.jsonLogs, "json", false, "Output logs in JSON format")
	pf.BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress non-error output")
	pf.StringVar(&opts.configFile, "config", "", "Config file (default ./cbci.yaml)")

	f := rootCmd.Flags()
	f.StringSliceVarP(&opts.clusterVersions, "cluster_versions", "c", nil, "Server versions to test against (required)")
	f.String("workdir", ".", "Directory that receives the checkouts and the Maven cache")
	f.Bool("dry-run", false, "Print the commands and REST calls without running them")
	f.Bool("keep-cluster", false, "Do not remove clusters when a version finishes")
	f.Bool("fail-on-build-error", false, "Exit non-zero if any build failed")
	f.Duration("command-timeout", 0, "Timeout for each external command (0 disables it)")
	f.SetNormalizeFunc(normalizeFlagName)

	if err := rootCmd.MarkFlagRequired("cluster_versions"); err != nil {
		panic(fmt.Sprintf("Failed to mark cluster_versions as required: %v", err))
	}

	rootCmd.AddCommand(newPropertiesCmd(opts))
	return rootCmd
}

// normalizeFlagName accepts --cluster-versions for --cluster_versions.
func normalizeFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == "cluster-versions" {
		name = "cluster_versions"
	}
	return pflag.NormalizedName(name)
}

// Execute runs the root command and prints a failure the way users read it.
func Execute() error {
	return execute(NewRootCmd(), os.Stderr)
}

func execute(root *cobra.Command, stderr io.Writer) error {
	err := root.Execute()
	if err == nil {
		return nil
	}

	code := harnesserrors.GetErrorCode(err)
	logger.Op.WithFields(map[string]interface{}{"error_code": code}).Debug("command failed")

	msg := harnesserrors.FormatForCLI(err)
	switch {
	case harnesserrors.IsUserError(err):
		// validation and config errors carry their own troubleshooting steps
	case code == "UNKNOWN" && isUsageError(err):
		msg += "Use --help to see available options and examples\n"
	default:
		msg += "Run again with --debug to see every command and REST call\n"
	}
	fmt.Fprint(stderr, msg)
	return err
}

// isUsageError matches the errors cobra and pflag return for bad command lines.
func isUsageError(err error) bool {
	text := err.Error()
	for _, marker := range []string{"required flag", "unknown flag", "unknown shorthand flag", "flag needs an argument", "invalid argument"} {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

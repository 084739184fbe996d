// Command daioe-scb joins the DAIOE occupational AI-exposure indicators with
// SCB employment counts and writes the SSYK-2012 level aggregates as Parquet.
package main

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tigerroll/daioe-scb/internal/app"
	"github.com/tigerroll/daioe-scb/internal/step/tasklet"
)

// embeddedConfig is the default configuration. Files given with --config are layered on top.
//
//go:embed resources/application.yaml
var embeddedConfig []byte

var (
	configFiles []string
	envFilePath string
	daioeSource string
	scbSource   string
	outputPath  string
	minYear     int

	exitCode = app.ExitOK
)

var rootCmd = &cobra.Command{
	Use:           "daioe-scb",
	Short:         "Aggregate DAIOE AI-exposure indicators over SSYK-2012 levels",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the aggregation job once",
	RunE: func(cmd *cobra.Command, args []string) error {
		exitCode = app.RunApplication(cmd.Context(), options(runParameters()))
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded executions (requires a database job repository)",
	RunE: func(cmd *cobra.Command, args []string) error {
		executions, err := app.History(cmd.Context(), options(nil))
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "EXECUTION ID\tSTARTED\tSTATUS\tEXIT STATUS\tSTEPS")
		for _, je := range executions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
				je.ID, je.StartTime.Format(time.RFC3339), je.Status, je.ExitStatus, len(je.StepExecutions))
		}
		return w.Flush()
	},
}

// runParameters collects the job parameter overrides given on the command line.
// Unset flags are left empty so the configured values apply.
func runParameters() map[string]string {
	params := map[string]string{
		tasklet.ParamDaioeSource: daioeSource,
		tasklet.ParamScbSource:   scbSource,
		tasklet.ParamOutputPath:  outputPath,
	}
	if minYear > 0 {
		params[tasklet.ParamMinYear] = strconv.Itoa(minYear)
	}
	return params
}

func options(params map[string]string) app.Options {
	return app.Options{
		EnvFilePath:    envFilePath,
		Embedded:       embeddedConfig,
		OverrideFiles:  configFiles,
		ParamOverrides: params,
	}
}

func defaultEnvFile() string {
	if p := os.Getenv("ENV_FILE_PATH"); p != "" {
		return p
	}
	return ".env"
}

func init() {
	rootCmd.PersistentFlags().StringArrayVar(&configFiles, "config", nil, "YAML file overriding the embedded configuration (repeatable)")
	rootCmd.PersistentFlags().StringVar(&envFilePath, "env-file", defaultEnvFile(), ".env file loaded before the configuration")

	runCmd.Flags().StringVar(&daioeSource, "daioe-source", "", "DAIOE CSV location (path, http(s):// or gs://)")
	runCmd.Flags().StringVar(&scbSource, "scb-source", "", "SCB employment Parquet location")
	runCmd.Flags().StringVar(&outputPath, "output", "", "output Parquet location")
	runCmd.Flags().IntVar(&minYear, "min-year", 0, "first indicator year kept for this run (0 keeps the configured value)")

	rootCmd.AddCommand(runCmd, historyCmd)
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return app.ExitInternal
	}
	return exitCode
}

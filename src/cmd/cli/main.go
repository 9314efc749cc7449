// Package main provides the pipetriage CLI. It orchestrates the analyzer
// over the Azure DevOps provider using the Cobra framework.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"pipetriage/src/analyze"
	_ "pipetriage/src/azdevops" // register the azdevops provider
	"pipetriage/src/broker"
	"pipetriage/src/config"
	"pipetriage/src/contracts"
	"pipetriage/src/logger"
	"pipetriage/src/provider"
	"pipetriage/src/snapshot"
	"pipetriage/src/store"
	"pipetriage/src/tui"
)

// Application configuration, loaded once before any command runs.
var appConfig *config.Config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pipetriage",
	Short: "pipetriage - failure triage for Azure Pipelines builds",
	Long: `pipetriage inspects a failed Azure Pipelines build, isolates its failed
tasks and jobs, groups the failures by stage and compares them against the
previous build on the same branch to classify the outcome:

- "back to normal"   the previous build failed, this one is clean
- "repeated failure" the same jobs failed in both builds
- "new failure!"     this build fails where the previous one did not`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var err error
		appConfig, err = config.LoadFromEnv()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
			fmt.Fprintln(os.Stderr, "Please set AZURE_PIPELINES_TOKEN, AZURE_DEVOPS_ORG_URL and AZURE_DEVOPS_PROJECT")
			os.Exit(1)
		}
	},
}

// triageCmd represents the triage command
var triageCmd = &cobra.Command{
	Use:   "triage [build-id]",
	Short: "Analyze a build's failures and classify them against the previous build",
	Long: `Fetches the build's timeline, collects logs for every failed task, groups
failed jobs by stage and compares the result against the previous build on
the same branch.

By default prints a human-readable report. With --tui launches an
interactive split view; with --json emits the full report as JSON.

Example:
  pipetriage triage 12345
  pipetriage triage 12345 --tui
  pipetriage triage 12345 --json --save-logs`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		buildID := parseBuildID(args[0])

		jsonMode, _ := cmd.Flags().GetBool("json")
		tuiMode, _ := cmd.Flags().GetBool("tui")
		saveLogs, _ := cmd.Flags().GetBool("save-logs")
		verbose, _ := cmd.Flags().GetBool("verbose")

		var log logger.Logger = logger.NewConsoleLogger()
		if verbose {
			log = logger.NewVerboseConsoleLogger()
		}
		if tuiMode || jsonMode {
			log = logger.NewSilentLogger()
		}

		var opts []analyze.Option
		if saveLogs || appConfig.SaveLogs {
			opts = append(opts, analyze.WithSnapshots(snapshot.NewWriter(appConfig.LogsDir)))
		}

		analyzer := analyze.New(newProvider(), log, opts...)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		report, err := analyzer.Report(ctx, buildID)
		if err != nil {
			exitWithError(err)
		}

		switch {
		case jsonMode:
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				exitWithError(err)
			}
			fmt.Println(string(data))
		case tuiMode:
			p := tea.NewProgram(tui.NewReportModel(report), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
				os.Exit(1)
			}
		default:
			printReport(report)
		}
	},
}

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare [build-id]",
	Short: "Print only the verdict for a build versus its predecessor",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		buildID := parseBuildID(args[0])

		buildProvider := newProvider()
		analyzer := analyze.New(buildProvider, logger.NewSilentLogger())

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		summary, err := buildProvider.GetBuild(ctx, buildID)
		if err != nil {
			exitWithError(err)
		}

		prevID, havePrev, err := analyzer.PreviousBuildID(ctx, summary.DefinitionID, summary.Branch, buildID)
		if err != nil {
			exitWithError(err)
		}
		if !havePrev {
			prevID = 0
		}

		verdict, err := analyzer.Compare(ctx, prevID, buildID)
		if err != nil {
			exitWithError(err)
		}

		if verdict == "" {
			fmt.Println("no failures in either build")
			return
		}
		fmt.Println(verdict)
	},
}

// submitCmd publishes a triage request for the distributed agent.
var submitCmd = &cobra.Command{
	Use:   "submit [build-id]",
	Short: "Submit a build for asynchronous triage via the message broker",
	Long: `Publishes a triage request to the requests topic and exits. A running
pipetriage agent picks up the request, analyzes the build and stores the
verdict. Requires REDPANDA_BROKERS.

Example:
  pipetriage submit 12345`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		buildID := parseBuildID(args[0])

		if len(appConfig.RedpandaBrokers) == 0 {
			fmt.Fprintln(os.Stderr, "ERROR: REDPANDA_BROKERS environment variable is required for submit")
			fmt.Fprintln(os.Stderr, "Example: export REDPANDA_BROKERS=localhost:19092")
			os.Exit(1)
		}

		brk, err := broker.NewRedpandaBroker(appConfig.RedpandaBrokers)
		if err != nil {
			exitWithError(err)
		}
		defer brk.Close()

		request := contracts.TriageRequest{
			RequestID: fmt.Sprintf("req-%d", time.Now().UnixNano()),
			BuildID:   buildID,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		data, err := json.Marshal(request)
		if err != nil {
			exitWithError(err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := brk.Publish(ctx, contracts.TopicRequests, request.RequestID, data); err != nil {
			exitWithError(err)
		}

		fmt.Printf("Submitted triage request %s for build %d\n", request.RequestID, buildID)
		fmt.Printf("Check progress with: pipetriage status %s\n", request.RequestID)
	},
}

// statusCmd queries the request store for an asynchronous triage result.
var statusCmd = &cobra.Command{
	Use:   "status [request-id]",
	Short: "Show the status and verdict of a submitted triage request",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		requestID := args[0]

		if appConfig.PostgresDSN == "" {
			fmt.Fprintln(os.Stderr, "ERROR: POSTGRES_DSN environment variable is required for status")
			os.Exit(1)
		}

		st, err := store.NewPostgresStore(appConfig.PostgresDSN)
		if err != nil {
			exitWithError(err)
		}
		defer st.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		status, err := st.GetRequestStatus(ctx, requestID)
		if err != nil {
			exitWithError(err)
		}

		fmt.Printf("Request:  %s\n", status.RequestID)
		fmt.Printf("Build:    %d\n", status.BuildID)
		fmt.Printf("Status:   %s\n", status.Status)
		if status.Status == contracts.StatusCompleted {
			verdict := status.Verdict
			if verdict == "" {
				verdict = "no failures"
			}
			fmt.Printf("Verdict:  %s\n", verdict)
			fmt.Printf("Failed:   %d tasks across %d jobs\n", status.FailedTasks, status.FailedJobs)
		}
	},
}

// newProvider builds the Azure DevOps provider from the loaded config.
func newProvider() provider.BuildProvider {
	p, err := provider.New("azdevops", appConfig.OrganizationURL, appConfig.Project, appConfig.Token)
	if err != nil {
		exitWithError(err)
	}
	return p
}

// parseBuildID converts the positional argument to a build ID.
func parseBuildID(arg string) int {
	var buildID int
	if _, err := fmt.Sscanf(arg, "%d", &buildID); err != nil || buildID <= 0 {
		fmt.Fprintf(os.Stderr, "Invalid build ID %q: expected a positive integer\n", arg)
		os.Exit(1)
	}
	return buildID
}

// printReport renders the human-readable report to stdout.
func printReport(report *contracts.FailureReport) {
	fmt.Printf("Build %d on %s: %s\n", report.Build.BuildID, report.Build.Branch, report.Build.Result)
	if report.Build.URL != "" {
		fmt.Printf("URL: %s\n", report.Build.URL)
	}

	verdict := report.Verdict
	if verdict == "" {
		verdict = "no failures"
	}
	if report.PreviousBuildID != 0 {
		fmt.Printf("Verdict vs build %d: %s\n", report.PreviousBuildID, verdict)
	} else {
		fmt.Printf("Verdict: %s (no previous build found)\n", verdict)
	}
	fmt.Println()

	if len(report.CurrentErrors) == 0 {
		fmt.Println("No failed jobs.")
		return
	}

	stages := make([]string, 0, len(report.CurrentErrors))
	for stage := range report.CurrentErrors {
		stages = append(stages, stage)
	}
	sort.Strings(stages)

	for _, stage := range stages {
		fmt.Printf("%s:\n", stage)
		for _, job := range report.CurrentErrors[stage].Jobs {
			fmt.Printf("  - %s\n", job)
		}
	}
	fmt.Println()

	for _, task := range report.Tasks {
		fmt.Printf("Failed task: %s (job: %s)\n", task.Name, task.Parent)
		for _, issue := range task.Issues {
			fmt.Printf("  issue: %s\n", issue)
		}
		for i, finding := range task.Findings {
			if i >= 3 {
				fmt.Printf("  ... %d more findings\n", len(task.Findings)-i)
				break
			}
			fmt.Printf("  [%s %.2f] %s\n", finding.Severity, finding.ConfidenceScore, finding.RawMessage)
		}
	}
}

// exitWithError prints a user-facing error with a hint and exits non-zero.
// Recoverable errors stay typed inside the library packages; the process
// boundary is the only place that terminates.
func exitWithError(err error) {
	var userErr *provider.UserError
	if errors.As(provider.WrapError(err), &userErr) {
		fmt.Fprintf(os.Stderr, "Error: %s\n", userErr.Message)
		if userErr.Hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", userErr.Hint)
		}
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}

func init() {
	rootCmd.AddCommand(triageCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(statusCmd)

	triageCmd.Flags().Bool("json", false, "Emit the full report as JSON")
	triageCmd.Flags().Bool("tui", false, "Launch the interactive report view")
	triageCmd.Flags().Bool("save-logs", false, "Write timeline and log snapshots as JSON artifacts")
	triageCmd.Flags().BoolP("verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

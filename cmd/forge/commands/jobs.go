package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/forgeworks-io/forge-client/pkg/forge"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Static errors for err113 compliance.
var (
	ErrJobNotSuccessful = errors.New("job did not succeed")
)

// NewJobsCommand creates the jobs command group
func NewJobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "jobs",
		Aliases: []string{"job"},
		Short:   "Inspect and follow Forge jobs",
		Long:    "Fetch job details, list jobs, and follow a running job to completion",
	}

	cmd.AddCommand(newJobsGetCommand())
	cmd.AddCommand(newJobsListCommand())
	cmd.AddCommand(newJobsWatchCommand())

	return cmd
}

func newJobsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get JOB_ID",
		Short: "Get job details",
		Long:  "Display detailed information about a specific job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			forgeClient, err := CreateClient()
			if err != nil {
				return err
			}

			job, err := forgeClient.Jobs().Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get job: %w", err)
			}

			return renderJob(job)
		},
	}
}

func renderJob(job *forge.Job) error {
	output := viper.GetString("output")
	switch output {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(job)
	case "yaml":
		encoder := yaml.NewEncoder(os.Stdout)
		return encoder.Encode(job)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")

		_ = table.Append("ID", job.ID)
		_ = table.Append("State", string(job.State))
		_ = table.Append("Created", job.CreatedAt.Format("2006-01-02 15:04:05"))
		_ = table.Append("Updated", job.UpdatedAt.Format("2006-01-02 15:04:05"))

		for _, artifact := range job.Artifacts {
			_ = table.Append("Artifact", fmt.Sprintf("%s (%s)", artifact.Name, artifact.ArtifactType))
		}

		return table.Render()
	}
}

func newJobsListCommand() *cobra.Command {
	var (
		pageSize int
		allPages bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs",
		Long:  "List jobs, one page at a time or exhaustively",
		RunE: func(cmd *cobra.Command, args []string) error {
			forgeClient, err := CreateClient()
			if err != nil {
				return err
			}

			cursor := forgeClient.Jobs().List(forge.WithPageSize[forge.Job](pageSize))
			ctx := context.Background()

			var jobs []forge.Job
			if allPages {
				jobs, err = cursor.All(ctx)
			} else {
				jobs, err = cursor.Next(ctx)
			}

			if err != nil && !errors.Is(err, forge.ErrNoMorePages) {
				return fmt.Errorf("failed to list jobs: %w", err)
			}

			return renderJobList(jobs)
		},
	}

	cmd.Flags().IntVar(&pageSize, "page-size", 0, "jobs per page (default 100)")
	cmd.Flags().BoolVar(&allPages, "all", false, "fetch every page")

	return cmd
}

func renderJobList(jobs []forge.Job) error {
	output := viper.GetString("output")
	switch output {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(jobs)
	case "yaml":
		encoder := yaml.NewEncoder(os.Stdout)
		return encoder.Encode(jobs)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("ID", "State", "Artifacts", "Created")

		for _, job := range jobs {
			_ = table.Append(job.ID, string(job.State),
				strconv.Itoa(len(job.Artifacts)),
				job.CreatedAt.Format("2006-01-02 15:04:05"))
		}

		return table.Render()
	}
}

func newJobsWatchCommand() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch JOB_ID",
		Short: "Follow a job until it finishes",
		Long:  "Poll a job until it reaches a terminal state, streaming its trace log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			forgeClient, err := CreateClient()
			if err != nil {
				return err
			}

			logger := NewConsoleLogger()

			job, err := forgeClient.Jobs().Wait(context.Background(), args[0], &forge.WaitOptions{
				Interval: interval,
				Trace:    os.Stdout,
				Logger:   logger,
			})
			if err != nil {
				return fmt.Errorf("failed to watch job: %w", err)
			}

			if job.State != forge.JobStateSuccess {
				return fmt.Errorf("%w: terminal state %s", ErrJobNotSuccessful, job.State)
			}

			logger.Ok("Job " + job.ID + " succeeded")

			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "poll interval (default 5s)")

	return cmd
}

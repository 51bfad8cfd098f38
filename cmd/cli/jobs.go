package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sevigo/titleforge/internal/core"
)

var jobsAsJSON bool

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List submitted jobs and their status.",
	RunE:  runJobs,
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	jobsCmd.Flags().BoolVar(&jobsAsJSON, "json", false, "print the raw JSON response")

	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, _ []string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	url := viper.GetString("SERVER_URL") + "/jobs"

	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach server at %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var result struct {
		Jobs []core.Job `json:"jobs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if jobsAsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Jobs)
	}

	if len(result.Jobs) == 0 {
		fmt.Println("no jobs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "JOB ID\tCHANNEL\tSTATUS\tCREATED\tDETAIL")
	for _, job := range result.Jobs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			job.JobID,
			job.Channel,
			colorStatus(job.Status),
			job.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			jobDetail(&job),
		)
	}
	return w.Flush()
}

func colorStatus(status core.Status) string {
	switch status {
	case core.StatusCompleted:
		return color.GreenString(string(status))
	case core.StatusFailed:
		return color.RedString(string(status))
	default:
		return color.YellowString(string(status))
	}
}

func jobDetail(job *core.Job) string {
	switch job.Status {
	case core.StatusFailed:
		return job.Error
	case core.StatusCompleted:
		return fmt.Sprintf("%d titles improved", len(job.ImprovedTitles))
	default:
		return ""
	}
}

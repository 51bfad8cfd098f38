package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	submitChannel string
	submitEmail   string
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a channel for title improvement.",
	Long:  `Submits a channel name and a contact email to the TitleForge server. The pipeline runs asynchronously; results arrive by email.`,
	RunE:  runSubmit,
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	submitCmd.Flags().StringVarP(&submitChannel, "channel", "c", "", "channel name to improve titles for (required)")
	submitCmd.Flags().StringVarP(&submitEmail, "email", "e", "", "email address the results are sent to (required)")
	_ = submitCmd.MarkFlagRequired("channel")
	_ = submitCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, _ []string) error {
	body, err := json.Marshal(map[string]string{
		"channel": submitChannel,
		"email":   submitEmail,
	})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	url := viper.GetString("SERVER_URL") + "/submit"

	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach server at %s: %w", url, err)
	}
	defer resp.Body.Close()

	var result struct {
		Success bool   `json:"success"`
		JobID   string `json:"jobId"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode != http.StatusAccepted {
		color.Red("submission rejected: %s", result.Error)
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	color.Green("job accepted: %s", result.JobID)
	fmt.Println(result.Message)
	return nil
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sevigo/titleforge/internal/core"
)

const refreshInterval = 2 * time.Second

var apiClient = &http.Client{Timeout: 10 * time.Second}

func refreshTickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

func loadJobsCmd(serverURL string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, serverURL+"/jobs", nil)
		if err != nil {
			return jobsLoadedMsg{err: err}
		}

		resp, err := apiClient.Do(req)
		if err != nil {
			return jobsLoadedMsg{err: fmt.Errorf("failed to reach server: %w", err)}
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return jobsLoadedMsg{err: fmt.Errorf("server returned status %d", resp.StatusCode)}
		}

		var result struct {
			Jobs []core.Job `json:"jobs"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return jobsLoadedMsg{err: fmt.Errorf("failed to decode job list: %w", err)}
		}
		return jobsLoadedMsg{jobs: result.Jobs}
	}
}

func submitJobCmd(serverURL, channel, email string) tea.Cmd {
	return func() tea.Msg {
		body, err := json.Marshal(map[string]string{"channel": channel, "email": email})
		if err != nil {
			return submitResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, serverURL+"/submit", bytes.NewReader(body))
		if err != nil {
			return submitResultMsg{err: err}
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := apiClient.Do(req)
		if err != nil {
			return submitResultMsg{err: fmt.Errorf("failed to reach server: %w", err)}
		}
		defer resp.Body.Close()

		var result struct {
			JobID   string `json:"jobId"`
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return submitResultMsg{err: fmt.Errorf("failed to decode response: %w", err)}
		}

		if resp.StatusCode != http.StatusAccepted {
			return submitResultMsg{err: fmt.Errorf("submission rejected: %s", result.Error)}
		}
		return submitResultMsg{jobID: result.JobID, message: result.Message}
	}
}

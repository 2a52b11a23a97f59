// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-16

package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/similigh/mailbox-monitor/internal/core/pipeline"
	"github.com/similigh/mailbox-monitor/internal/monitor"
	"github.com/similigh/mailbox-monitor/internal/tui"
)

func runHealthCheck(cmd *cobra.Command, a *app) error {
	p, err := a.buildPipeline(nil)
	if err != nil {
		return err
	}
	m, err := a.newMonitor(p, nil)
	if err != nil {
		return err
	}

	report := m.HealthCheck(cmd.Context())
	out := cmd.OutOrStdout()
	if jsonOutput {
		if err := writeJSON(out, report); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out, tui.Status(report.Healthy(), healthLine(report)))
	}

	if !report.Healthy() {
		return errUnhealthy
	}
	return nil
}

// healthLine renders the one-line health status.
func healthLine(report monitor.HealthReport) string {
	if report.Healthy() {
		return "All services are healthy"
	}
	return "Some services are unhealthy: " + report.String()
}

func runCheckOnce(cmd *cobra.Command, a *app) error {
	if useTUI {
		return runCheckOnceTUI(cmd, a)
	}

	p, err := a.buildPipeline(nil)
	if err != nil {
		return err
	}
	m, err := a.newMonitor(p, nil)
	if err != nil {
		return err
	}

	report, err := m.RunOnce(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	fmt.Fprintln(cmd.OutOrStdout(), tui.Status(true, summaryLine(report)))
	return nil
}

// summaryLine renders the one-line result of a check cycle.
func summaryLine(report monitor.CycleReport) string {
	return fmt.Sprintf("Processed %d emails (%d handled of %d notifications)",
		report.Fetched, report.Handled, report.Candidates)
}

// resultSummary renders one email's outcome for the interactive view.
func resultSummary(r pipeline.Result) string {
	switch {
	case !r.Candidate:
		return "ignored (" + r.SkipReason + ")"
	case r.Reassigned:
		return fmt.Sprintf("reassigned to %s", r.RecommendedAssignee)
	case r.ErrorKind != "":
		return fmt.Sprintf("%s failed: %s", r.Action, r.ErrorKind)
	case r.Reason != "":
		return fmt.Sprintf("%s: %s", r.Action, r.Reason)
	default:
		return "no decision"
	}
}

func runCheckOnceTUI(cmd *cobra.Command, a *app) error {
	statusChan := make(chan tea.Msg)

	p, err := a.buildPipeline(func(s pipeline.Step) pipeline.Step {
		return &statusReportingStep{inner: s, statusChan: statusChan}
	})
	if err != nil {
		return err
	}
	m, err := a.newMonitor(p, func(r pipeline.Result) {
		statusChan <- tui.EmailDoneMsg{EmailID: r.EmailID, Summary: resultSummary(r), Handled: r.Handled}
	})
	if err != nil {
		return err
	}

	program := tea.NewProgram(tui.NewModel(a.stepNames, statusChan), tea.WithContext(cmd.Context()))

	errCh := make(chan error, 1)
	go func() {
		defer close(statusChan)
		report, err := m.RunOnce(cmd.Context())
		errCh <- err
		if err != nil {
			statusChan <- tui.ResultMsg{Success: false, Output: err.Error()}
			return
		}
		statusChan <- tui.ResultMsg{Success: true, Output: summaryLine(report)}
	}()

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running TUI: %w", err)
	}

	select {
	case err := <-errCh:
		return err
	default:
		// Quit before the cycle finished.
		return nil
	}
}

func runContinuous(cmd *cobra.Command, a *app) error {
	p, err := a.buildPipeline(nil)
	if err != nil {
		return err
	}
	m, err := a.newMonitor(p, nil)
	if err != nil {
		return err
	}

	if addr := a.cfg.Metrics.ListenAddr; addr != "" {
		srv := newMetricsServer(addr)
		go func() {
			a.logger.Info("Metrics server starting", zap.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("Metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("Metrics server shutdown error", zap.Error(err))
			}
		}()
	}

	return m.Run(cmd.Context())
}

// newMetricsServer serves the Prometheus registry on /metrics.
func newMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

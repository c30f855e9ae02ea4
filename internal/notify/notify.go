// Package notify posts run summaries to an NTFY-compatible endpoint.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mpdee/fleetprobe/internal/report"
	"github.com/mpdee/fleetprobe/internal/scenario"
)

// RunMessage formats a run summary as a plain-text notification body.
func RunMessage(sum report.RunSummary) string {
	var b strings.Builder
	if sum.Ok() {
		fmt.Fprintf(&b, "fleetprobe run %s passed: %d/%d scenarios", sum.RunID, sum.Passed, sum.Total)
	} else {
		fmt.Fprintf(&b, "fleetprobe run %s FAILED: %d/%d scenarios passed", sum.RunID, sum.Passed, sum.Total)
	}
	for _, res := range sum.Results {
		if res.Verdict != scenario.VerdictFail {
			continue
		}
		fmt.Fprintf(&b, "\n- %s: %s", res.ScenarioID, res.Diagnostic)
	}
	return b.String()
}

// Send sends a message to the requested endpoint using HTTP POST.
func Send(ctx context.Context, client *http.Client, endpoint, message string) error {
	c := client
	if c == nil {
		c = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(message))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ntfy notification failed: status=%d", resp.StatusCode)
	}
	return nil
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dricquery/mcping"
)

// formatDirectResult renders a ping outcome for the terminal. resp is
// either a mcping.JavaResponse or a mcping.BedrockResponse, matching
// whichever protocol the query used.
func formatDirectResult(latencyMillis int64, resp any, verbose bool) string {
	var body string
	switch r := resp.(type) {
	case mcping.JavaResponse:
		body = r.String()
	case mcping.BedrockResponse:
		body = r.String()
	default:
		body = fmt.Sprintf("%+v", resp)
	}

	if !verbose {
		return fmt.Sprintf("%s\nLatency: %dms\n", body, latencyMillis)
	}

	var builder strings.Builder
	builder.WriteString(body)
	builder.WriteString("\n")
	builder.WriteString(fmt.Sprintf("Latency: %dms\n", latencyMillis))
	return builder.String()
}

func (a *App) saveResult(title, content string) error {
	path := a.settings.ResultsPath
	if path == "" {
		path = defaultResultsPath()
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return err
	}
	filename := fmt.Sprintf("%s.txt", time.Now().Format("20060102-150405"))
	full := filepath.Join(path, filename)

	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("%s\n", title))
	builder.WriteString(fmt.Sprintf("Saved at: %s\n", time.Now().Format(time.RFC3339)))
	builder.WriteString("\n")
	builder.WriteString(content)
	builder.WriteString("\n")
	return os.WriteFile(full, []byte(builder.String()), 0o644)
}

// Package actions writes the files the GitHub Actions runner exposes to a step.
package actions

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	domainErrors "github.com/thomas-vilte/matetriage/internal/errors"
)

// WriteOutputs appends step outputs to the GITHUB_OUTPUT file at path. An empty
// path is a no-op so local runs work unchanged. Multi-line values use the
// heredoc form with a random delimiter.
func WriteOutputs(path string, values map[string]string) error {
	path = strings.TrimSpace(path)
	if path == "" || len(values) == 0 {
		return nil
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		if strings.TrimSpace(k) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		value := values[key]
		if !strings.ContainsAny(value, "\r\n") {
			fmt.Fprintf(&b, "%s=%s\n", key, value)
			continue
		}
		delimiter := newDelimiter(value)
		fmt.Fprintf(&b, "%s<<%s\n%s\n%s\n", key, delimiter, value, delimiter)
	}

	return appendFile(path, b.String())
}

// AppendSummary appends markdown to the job summary file at path.
func AppendSummary(path, markdown string) error {
	path = strings.TrimSpace(path)
	if path == "" || markdown == "" {
		return nil
	}
	if !strings.HasSuffix(markdown, "\n") {
		markdown += "\n"
	}
	return appendFile(path, markdown)
}

func newDelimiter(value string) string {
	for {
		d := "ghadelimiter_" + uuid.NewString()
		if !strings.Contains(value, d) {
			return d
		}
	}
}

func appendFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return domainErrors.ErrWriteOutputs.WithError(err).WithContext("path", path)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(content); err != nil {
		return domainErrors.ErrWriteOutputs.WithError(err).WithContext("path", path)
	}
	return nil
}

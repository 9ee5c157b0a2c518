package cmd

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/inovacc/labctl/internal/labapi"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	labelStyle  = lipgloss.NewStyle().Bold(true).Width(14)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
)

// apiCall runs one backend call and prints its JSON result.
type apiCall func(ctx context.Context, api *labapi.API, args []string) (json.RawMessage, error)

// runAPI adapts an apiCall into a cobra RunE.
func runAPI(call apiCall) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		b, err := connect(cmd.Context())
		if err != nil {
			return err
		}

		body, err := call(cmd.Context(), b.api, args)
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), body)
	}
}

// confirm asks a yes/no question on the terminal.
var confirm = promptConfirm

// runDelete asks before deleting the record named by args[0], unless *force
// is set, and only then connects and runs del. A declined prompt never
// reaches the backend.
func runDelete(force *bool, what string, del func(ctx context.Context, api *labapi.API, id int64) (json.RawMessage, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		if !*force && !confirm(fmt.Sprintf("Delete %s %d? [y/N]: ", what, id)) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}

		return runAPI(func(ctx context.Context, api *labapi.API, _ []string) (json.RawMessage, error) {
			return del(ctx, api, id)
		})(cmd, args)
	}
}

// printJSON indents body when it is JSON and writes it verbatim otherwise.
func printJSON(w io.Writer, body []byte) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		buf.Reset()
		buf.Write(body)
	}

	buf.WriteByte('\n')

	_, err := w.Write(buf.Bytes())

	return err
}

// parseID parses a positive numeric resource id.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", s)
	}

	return id, nil
}

// parseParams turns repeated key=value flags into query parameters.
func parseParams(pairs []string) (url.Values, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	params := url.Values{}

	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid parameter %q: expected key=value", p)
		}

		params.Add(k, v)
	}

	return params, nil
}

// parseFields builds a JSON object from an optional JSON document and
// key=value overrides. Override values that parse as JSON keep their type;
// anything else is a string.
func parseFields(data string, sets []string) (map[string]any, error) {
	fields := map[string]any{}

	if data != "" {
		if err := json.Unmarshal([]byte(data), &fields); err != nil {
			return nil, fmt.Errorf("invalid --data: %w", err)
		}
	}

	for _, s := range sets {
		k, v, ok := strings.Cut(s, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid field %q: expected key=value", s)
		}

		var typed any
		if err := json.Unmarshal([]byte(v), &typed); err == nil {
			fields[k] = typed
			continue
		}

		fields[k] = v
	}

	return fields, nil
}

// promptConfirm asks the user for confirmation and returns true if they confirm
func promptConfirm(prompt string) bool {
	_, _ = fmt.Fprint(os.Stdout, prompt)

	var response string

	_, _ = fmt.Scanln(&response)

	return response == "y" || response == "Y"
}

// readSecret reads a password without echo from a terminal, or one line
// from a pipe.
func readSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())

	if term.IsTerminal(fd) {
		_, _ = fmt.Fprint(os.Stderr, prompt)

		secret, err := term.ReadPassword(fd)

		_, _ = fmt.Fprintln(os.Stderr)

		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}

		return string(secret), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}

// printField prints one aligned label/value line.
func printField(w io.Writer, label, value string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", labelStyle.Render(label+":"), value)
}

package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"golang.org/x/xerrors"
)

// ghadapter runs a command that prints outcome JSON lines, forwards them to
// $GITHUB_OUTPUT and exits with the command's exit code.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: ghadapter <command> [args...]")
		os.Exit(2)
	}

	cmd := exec.Command(os.Args[1], os.Args[2:]...)
	cmd.Stdin = os.Stdin
	cmd.Stderr = os.Stderr

	output, err := cmd.Output()
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "failed to run %s: %v\n", os.Args[1], err)
			os.Exit(2)
		}
		exitCode = exitErr.ExitCode()
	}
	_, _ = os.Stdout.Write(output)

	if githubOutput := os.Getenv("GITHUB_OUTPUT"); githubOutput != "" {
		f, err := os.OpenFile(githubOutput, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open GITHUB_OUTPUT: %v\n", err)
			os.Exit(2)
		}
		defer f.Close()

		if err := writeOutputs(f, output); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write GITHUB_OUTPUT: %v\n", err)
			os.Exit(2)
		}
	}

	os.Exit(exitCode)
}

// writeOutputs writes the keys of a single outcome as name=value lines. Several
// outcomes are written as one "outcomes" JSON array.
func writeOutputs(w io.Writer, output []byte) error {
	var outcomes []map[string]json.RawMessage

	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 64<<20)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var outcome map[string]json.RawMessage
		if err := json.Unmarshal(line, &outcome); err != nil {
			return xerrors.Errorf("failed to parse outcome: %w", err)
		}
		outcomes = append(outcomes, outcome)
	}
	if err := scanner.Err(); err != nil {
		return xerrors.Errorf("failed to read output: %w", err)
	}

	switch len(outcomes) {
	case 0:
		return nil
	case 1:
		keys := make([]string, 0, len(outcomes[0]))
		for key := range outcomes[0] {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			value := outcomes[0][key]
			var s string
			if err := json.Unmarshal(value, &s); err == nil {
				writeOutput(w, key, s)
				continue
			}
			_, _ = fmt.Fprintf(w, "%s=%s\n", key, value)
		}
		return nil
	default:
		data, err := json.Marshal(outcomes)
		if err != nil {
			return xerrors.Errorf("failed to encode outcomes: %w", err)
		}
		_, _ = fmt.Fprintf(w, "outcomes=%s\n", data)
		return nil
	}
}

// writeOutput writes one $GITHUB_OUTPUT entry. Values spanning lines use the
// heredoc form with a delimiter that does not occur in the value.
func writeOutput(w io.Writer, key string, value string) {
	if !strings.ContainsAny(value, "\r\n") {
		_, _ = fmt.Fprintf(w, "%s=%s\n", key, value)
		return
	}

	delimiter := "GHADAPTER_EOF"
	for strings.Contains(value, delimiter) {
		delimiter += "_"
	}
	_, _ = fmt.Fprintf(w, "%s<<%s\n%s\n%s\n", key, delimiter, value, delimiter)
}

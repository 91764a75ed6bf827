// Package tags loads the list of topic identifiers to scrape. Tags arrive
// from one of three sources: an explicit list, a plain-text file (one tag per
// line), or a comma-separated environment variable.
package tags

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// FromFile reads one tag per line, skipping blank lines and lines starting
// with '#'.
func FromFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tags file: %w", err)
	}
	defer file.Close()

	var out []string
	sc := bufio.NewScanner(file)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read tags file: %w", err)
	}
	return out, nil
}

// FromEnv splits a comma-separated environment variable, trimming entries
// and dropping empties. An unset or empty variable yields no tags.
func FromEnv(name string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return nil
	}

	var out []string
	for _, entry := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(entry); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// Normalize trims a caller-provided tag list and drops empties, preserving
// order.
func Normalize(in []string) []string {
	var out []string
	for _, entry := range in {
		if tag := strings.TrimSpace(entry); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

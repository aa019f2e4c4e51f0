package cache

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// The archive ledger carries a fixed comment block at both ends. These
// offsets are part of the file format and are stripped before parsing.
const (
	archiveHeaderLines = 7
	archiveFooterLines = 3
)

// ArchiveContribution is the frozen totals folded in from repositories
// the account can no longer enumerate live (deleted, transferred or made
// inaccessible). Repos counts the archived repositories themselves.
type ArchiveContribution struct {
	Additions int
	Deletions int
	Net       int
	Commits   int
	Repos     int
}

// LoadArchive parses the archive ledger at path. The archive is
// read-only input: header and footer are stripped by fixed offsets, each
// remaining line contributes its additions/deletions, and owned-commit
// fields are summed only where numeric. The file's last line is a
// summary whose fifth whitespace token, minus its trailing character,
// supplies one extra commit-count contribution.
//
// A missing archive is not an error; it contributes zero.
func LoadArchive(path string) (ArchiveContribution, error) {
	var contrib ArchiveContribution

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return contrib, nil
	}
	if err != nil {
		return contrib, fmt.Errorf("open archive %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return contrib, fmt.Errorf("read archive %s: %w", path, err)
	}
	if len(lines) <= archiveHeaderLines+archiveFooterLines {
		return contrib, nil
	}

	records := lines[archiveHeaderLines : len(lines)-archiveFooterLines]
	contrib.Repos = len(records)
	for _, line := range records {
		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		contrib.Additions += atoiOrZero(fields[3])
		contrib.Deletions += atoiOrZero(fields[4])
		// Placeholder commit fields (non-numeric) are skipped, not errors.
		if n, err := strconv.Atoi(fields[2]); err == nil && n >= 0 {
			contrib.Commits += n
		}
	}
	contrib.Net = contrib.Additions - contrib.Deletions

	// Trailing summary line: fifth token minus its final character holds
	// a commit count accumulated before the archive was frozen.
	if fields := strings.Fields(lines[len(lines)-1]); len(fields) >= 5 {
		token := fields[4]
		if len(token) > 0 {
			if n, err := strconv.Atoi(token[:len(token)-1]); err == nil {
				contrib.Commits += n
			}
		}
	}
	return contrib, nil
}

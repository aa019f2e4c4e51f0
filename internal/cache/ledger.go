package cache

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// placeholderComment seeds the header block of a freshly created ledger.
// The header is opaque to this package: whatever the user writes there is
// preserved verbatim across every rewrite.
const placeholderComment = "This line is a comment block. Write whatever you want here."

// Record is one ledger line: the totals known for a single repository.
// RepoKey is the hex SHA-256 of the repository's "owner/name" and is
// unique within a ledger. RemoteCommits is the total history length the
// remote reported when the record was last written; it is what staleness
// detection compares against.
type Record struct {
	RepoKey       string
	RemoteCommits int
	OwnedCommits  int
	Additions     int
	Deletions     int
}

// Ledger is the in-memory form of one account's cache file: a fixed-size
// comment header followed by one record per tracked repository, in the
// order the repositories were first observed. Records are indexed by
// RepoKey; position is serialisation order only, never identity.
type Ledger struct {
	path    string
	header  []string
	records []*Record
	index   map[string]*Record
}

// Load reads the ledger at path, creating it with a blank header of
// headerSize comment lines if it does not exist. A missing file is a
// cold start, not an error. Record lines with fewer than two fields are
// dropped; numeric fields that fail to parse load as zero.
func Load(path string, headerSize int) (*Ledger, error) {
	l := &Ledger{path: path, index: make(map[string]*Record)}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		for i := 0; i < headerSize; i++ {
			l.header = append(l.header, placeholderComment)
		}
		if err := l.Save(); err != nil {
			return nil, fmt.Errorf("initialize ledger %s: %w", path, err)
		}
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		line := scanner.Text()
		if lineNo < headerSize {
			l.header = append(l.header, line)
			lineNo++
			continue
		}
		lineNo++
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		rec := &Record{
			RepoKey:       fields[0],
			RemoteCommits: atoiOrZero(fields[1]),
		}
		if len(fields) >= 5 {
			rec.OwnedCommits = atoiOrZero(fields[2])
			rec.Additions = atoiOrZero(fields[3])
			rec.Deletions = atoiOrZero(fields[4])
		}
		l.add(rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", path, err)
	}

	// A short or missing header is padded so Save always writes the
	// expected number of comment lines back.
	for len(l.header) < headerSize {
		l.header = append(l.header, placeholderComment)
	}
	return l, nil
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (l *Ledger) add(rec *Record) {
	if _, dup := l.index[rec.RepoKey]; dup {
		return
	}
	l.records = append(l.records, rec)
	l.index[rec.RepoKey] = rec
}

// Lookup returns the record for a repository key. The returned pointer
// is live: mutations persist on the next Save.
func (l *Ledger) Lookup(repoKey string) (*Record, bool) {
	rec, ok := l.index[repoKey]
	return rec, ok
}

// Len reports the number of records, excluding the header.
func (l *Ledger) Len() int { return len(l.records) }

// Header returns the preserved comment block.
func (l *Ledger) Header() []string { return l.header }

// Records returns the records in serialisation order.
func (l *Ledger) Records() []*Record { return l.records }

// Rebuild discards every record and re-seeds one zero-valued record per
// key, preserving the header verbatim. This is the full-reset path taken
// whenever the tracked repository set changes size or a forced refresh
// is requested. Duplicate keys are dropped to keep RepoKey unique.
func (l *Ledger) Rebuild(repoKeys []string) {
	l.records = nil
	l.index = make(map[string]*Record, len(repoKeys))
	for _, key := range repoKeys {
		l.add(&Record{RepoKey: key})
	}
}

// Save rewrites the whole file: header first, then one line per record.
// There is no partial-line update; callers batch their mutations and
// save once.
func (l *Ledger) Save() error {
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}
	var b strings.Builder
	for _, line := range l.header {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for _, rec := range l.records {
		fmt.Fprintf(&b, "%s %d %d %d %d\n",
			rec.RepoKey, rec.RemoteCommits, rec.OwnedCommits, rec.Additions, rec.Deletions)
	}
	if err := os.WriteFile(l.path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write ledger %s: %w", l.path, err)
	}
	return nil
}

// Totals sums additions and deletions across all records.
func (l *Ledger) Totals() (additions, deletions int) {
	for _, rec := range l.records {
		additions += rec.Additions
		deletions += rec.Deletions
	}
	return additions, deletions
}

// OwnedCommitTotal sums the owned-commit column across all records.
func (l *Ledger) OwnedCommitTotal() int {
	total := 0
	for _, rec := range l.records {
		total += rec.OwnedCommits
	}
	return total
}

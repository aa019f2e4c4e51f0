package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepoKey(t *testing.T) {
	// Stable digest: existing on-disk ledgers depend on this exact value.
	assert.Equal(t,
		"9495a75480401db64fb0a9a4eebd0d1133ea06e4f58272dd7353d0b444df90e9",
		RepoKey("octocat/hello-world"))
	assert.NotEqual(t, RepoKey("a/b"), RepoKey("a/c"))
}

func TestLedgerFilename(t *testing.T) {
	name := LedgerFilename("octocat")
	assert.True(t, strings.HasSuffix(name, ".txt"))
	assert.Len(t, name, 64+len(".txt"))
	assert.Equal(t, name, LedgerFilename("octocat"))
}

func TestLoad_ColdStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.txt")

	led, err := Load(path, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, led.Len())
	assert.Len(t, led.Header(), 7)

	// Cold start must have materialized the file with the header block.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 7, strings.Count(string(raw), "\n"))
}

func TestLedger_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.txt")

	led, err := Load(path, 2)
	require.NoError(t, err)
	led.Rebuild([]string{RepoKey("o/a"), RepoKey("o/b")})
	recA, ok := led.Lookup(RepoKey("o/a"))
	require.True(t, ok)
	recA.RemoteCommits = 12
	recA.OwnedCommits = 7
	recA.Additions = 100
	recA.Deletions = 40
	require.NoError(t, led.Save())

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	reloaded, err := Load(path, 2)
	require.NoError(t, err)
	require.NoError(t, reloaded.Save())
	after, err := os.ReadFile(path)
	require.NoError(t, err)

	// Byte-for-byte: header preserved verbatim, records in order.
	assert.Equal(t, string(before), string(after))
	assert.Equal(t, led.Header(), reloaded.Header())

	got, ok := reloaded.Lookup(RepoKey("o/a"))
	require.True(t, ok)
	assert.Equal(t, &Record{RepoKey: RepoKey("o/a"), RemoteCommits: 12, OwnedCommits: 7, Additions: 100, Deletions: 40}, got)
}

func TestLoad_MalformedLines(t *testing.T) {
	testCases := []struct {
		name        string
		lines       []string
		wantRecords int
		wantZeroed  bool
	}{
		{
			name:        "short line is dropped",
			lines:       []string{"justonehash"},
			wantRecords: 0,
		},
		{
			name:        "non-numeric fields load as zero",
			lines:       []string{"somehash abc def ghi jkl"},
			wantRecords: 1,
			wantZeroed:  true,
		},
		{
			name:        "negative fields load as zero",
			lines:       []string{"somehash -3 -1 -2 -9"},
			wantRecords: 1,
			wantZeroed:  true,
		},
		{
			name:        "duplicate hash keeps first record",
			lines:       []string{"samehash 1 1 1 1", "samehash 9 9 9 9"},
			wantRecords: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "ledger.txt")
			content := "# header\n" + strings.Join(tc.lines, "\n") + "\n"
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			led, err := Load(path, 1)
			require.NoError(t, err)
			assert.Equal(t, tc.wantRecords, led.Len())
			if tc.wantZeroed {
				rec := led.Records()[0]
				assert.Equal(t, 0, rec.RemoteCommits)
				assert.Equal(t, 0, rec.OwnedCommits)
				assert.Equal(t, 0, rec.Additions)
				assert.Equal(t, 0, rec.Deletions)
			}
		})
	}
}

func TestLedger_Rebuild(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.txt")
	header := "custom comment, must survive rebuilds\n"
	require.NoError(t, os.WriteFile(path, []byte(header+"oldhash 5 2 10 3\n"), 0o644))

	led, err := Load(path, 1)
	require.NoError(t, err)
	require.Equal(t, 1, led.Len())

	led.Rebuild([]string{"newhash1", "newhash2", "newhash1"})
	require.NoError(t, led.Save())

	reloaded, err := Load(path, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"custom comment, must survive rebuilds"}, reloaded.Header())
	require.Equal(t, 2, reloaded.Len())
	for _, rec := range reloaded.Records() {
		assert.Zero(t, rec.RemoteCommits)
		assert.Zero(t, rec.OwnedCommits)
		assert.Zero(t, rec.Additions)
		assert.Zero(t, rec.Deletions)
	}
	_, ok := reloaded.Lookup("oldhash")
	assert.False(t, ok)
}

func TestLedger_Totals(t *testing.T) {
	led := &Ledger{index: make(map[string]*Record)}
	led.add(&Record{RepoKey: "a", OwnedCommits: 3, Additions: 10, Deletions: 4})
	led.add(&Record{RepoKey: "b", OwnedCommits: 2, Additions: 5, Deletions: 1})

	adds, dels := led.Totals()
	assert.Equal(t, 15, adds)
	assert.Equal(t, 5, dels)
	assert.Equal(t, 5, led.OwnedCommitTotal())
}

func TestLedger_SaveCreatesCacheDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "ledger.txt")
	led, err := Load(path, 3)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Len(t, led.Header(), 3)
}

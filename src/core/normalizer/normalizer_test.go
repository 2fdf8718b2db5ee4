package normalizer

import (
	"errors"
	"io"
	"math/rand"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"

	"github.com/cnaize/blgen/src/types"
)

func TestNormalizeMalformed(t *testing.T) {
	set, stats := Normalize([]string{"not-an-ip", "999.1.1.1/32", "10.0.0.1"})

	require.Equal(t, []string{"10.0.0.1/32"}, set.Strings(true))
	require.Equal(t, Stats{Lines: 3, Valid: 1, Discarded: 2}, stats)
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line string
		kind Kind
		want string
	}{
		{line: "", kind: KindBlank},
		{line: "   \t", kind: KindBlank},
		{line: "# comment 10.0.0.1", kind: KindBlank},
		{line: "; Spamhaus DROP List", kind: KindBlank},
		{line: "// note", kind: KindBlank},
		{line: "10.0.0.1", kind: KindPrefix, want: "10.0.0.1/32"},
		{line: "  10.0.0.0/8  ", kind: KindPrefix, want: "10.0.0.0/8"},
		{line: "10.1.2.3/8", kind: KindPrefix, want: "10.0.0.0/8"},
		{line: "1.10.16.0/20 ; SBL256894", kind: KindPrefix, want: "1.10.16.0/20"},
		{line: "1.2.3.4;SBL1", kind: KindPrefix, want: "1.2.3.4/32"},
		{line: "5.6.7.8\t# attacker", kind: KindPrefix, want: "5.6.7.8/32"},
		{line: "5.6.7.0/24<br>", kind: KindPrefix, want: "5.6.7.0/24"},
		{line: "0.0.0.0/0", kind: KindPrefix, want: "0.0.0.0/0"},
		{line: "2001:db8::/32", kind: KindIPv6},
		{line: "::ffff:1.2.3.4", kind: KindIPv6},
		{line: "not-an-ip", kind: KindMalformed},
		{line: "999.1.1.1/32", kind: KindMalformed},
		{line: "10.0.0.1/33", kind: KindMalformed},
		{line: "10.0.0", kind: KindMalformed},
		{line: "1.2.3.4.5", kind: KindMalformed},
		{line: "<td>1.2.3.4</td>", kind: KindMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			prefix, kind, err := ParseLine(tt.line)
			require.Equal(t, tt.kind, kind)
			if tt.kind == KindMalformed {
				require.ErrorIs(t, err, types.ErrMalformedEntry)
				return
			}
			require.NoError(t, err)
			if tt.want != "" {
				require.Equal(t, tt.want, prefix.String())
			}
		})
	}
}

func TestNormalizeReader(t *testing.T) {
	in := strings.Join([]string{
		"# FireHOL level 1",
		"10.0.0.0/8",
		"",
		"2001:db8::1",
		"bogus",
		"10.0.0.1",
		"192.168.0.1/16",
	}, "\r\n")

	set, stats, err := NormalizeReader(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, []string{"10.0.0.0/8", "10.0.0.1/32", "192.168.0.0/16"}, set.Strings(true))
	require.Equal(t, Stats{Lines: 7, Valid: 3, Discarded: 1, Skipped: 1}, stats)
}

func TestNormalizeReaderLongLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "junk", in: strings.Repeat("x", 2<<20) + "\n10.0.0.5/32\n"},
		{name: "valid prefix", in: "10.0.0.0/8" + strings.Repeat(" ", maxLineSize) + "\n10.0.0.5\n"},
		{name: "last line", in: "10.0.0.5\n" + strings.Repeat("1", maxLineSize+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, stats, err := NormalizeReader(strings.NewReader(tt.in))
			require.NoError(t, err)
			require.Equal(t, []string{"10.0.0.5/32"}, set.Strings(true))
			require.Equal(t, Stats{Lines: 2, Valid: 1, Discarded: 1}, stats)
		})
	}
}

func TestNormalizeReaderError(t *testing.T) {
	boom := errors.New("connection reset")
	r := io.MultiReader(strings.NewReader("10.0.0.1\n10.0.0.2\n"), iotest.ErrReader(boom))

	set, stats, err := NormalizeReader(r)
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"10.0.0.1/32", "10.0.0.2/32"}, set.Strings(true))
	require.Equal(t, 2, stats.Valid)
}

func TestNormalizeOrderIndependent(t *testing.T) {
	lines := []string{"10.0.0.1", "172.16.0.0/12", "bad", "10.0.0.0/24", "10.0.0.1", "::1", "8.8.8.8"}
	want, wantStats := Normalize(lines)

	r := rand.New(rand.NewSource(1))
	for range 20 {
		shuffled := append([]string(nil), lines...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got, stats := Normalize(shuffled)
		require.True(t, want.Equal(got))
		require.Equal(t, wantStats, stats)
	}
}

func TestStatsAdd(t *testing.T) {
	require.Equal(t,
		Stats{Lines: 5, Valid: 3, Discarded: 1, Skipped: 1},
		Stats{Lines: 2, Valid: 1, Discarded: 1}.Add(Stats{Lines: 3, Valid: 2, Skipped: 1}))
}

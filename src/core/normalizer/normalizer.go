package normalizer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cnaize/blgen/lib/util"
	"github.com/cnaize/blgen/lib/util/get"
	"github.com/cnaize/blgen/src/types"
)

// longer lines are discarded as malformed
const maxLineSize = 64 << 10

type Stats struct {
	Lines     int
	Valid     int
	Discarded int
	Skipped   int
}

func (s Stats) Add(o Stats) Stats {
	return Stats{
		Lines:     s.Lines + o.Lines,
		Valid:     s.Valid + o.Valid,
		Discarded: s.Discarded + o.Discarded,
		Skipped:   s.Skipped + o.Skipped,
	}
}

// Normalize converts raw list lines into prefixes.
// The result keeps duplicates and overlaps.
func Normalize(lines []string) (types.PrefixSet, Stats) {
	var n normalizer
	for _, line := range lines {
		n.line(line)
	}

	return n.result()
}

// NormalizeReader reads lines until EOF. Lines longer than maxLineSize count as
// discarded. On a read error the prefixes read so far are returned with the error.
func NormalizeReader(r io.Reader) (types.PrefixSet, Stats, error) {
	var n normalizer

	reader := bufio.NewReaderSize(r, maxLineSize)
	for {
		line, err := reader.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			n.overlong()
			err = skipLine(reader)
		} else if len(line) > 0 {
			// the token is parsed before the next read overwrites the buffer
			n.line(util.BytesToString(line))
		}

		switch {
		case err == nil:
			continue
		case errors.Is(err, io.EOF):
			set, stats := n.result()
			return set, stats, nil
		default:
			set, stats := n.result()
			return set, stats, fmt.Errorf("read: %w", err)
		}
	}
}

// skipLine consumes the rest of the current line including its newline.
func skipLine(r *bufio.Reader) error {
	for {
		if _, err := r.ReadSlice('\n'); !errors.Is(err, bufio.ErrBufferFull) {
			return err
		}
	}
}

type Kind uint8

const (
	KindBlank Kind = iota
	KindPrefix
	KindIPv6
	KindMalformed
)

// ParseLine extracts a prefix from a single line.
// Empty and comment lines are KindBlank; a malformed token also returns an error
// wrapping types.ErrMalformedEntry.
func ParseLine(line string) (types.Prefix, Kind, error) {
	line = strings.TrimSpace(line)
	if line == "" || isComment(line) {
		return types.Prefix{}, KindBlank, nil
	}

	field := line
	if i := strings.IndexFunc(line, isSpace); i >= 0 {
		field = line[:i]
	}
	if strings.IndexByte(field, ':') >= 0 {
		return types.Prefix{}, KindIPv6, nil
	}

	parsed, ok := get.NetPrefix(get.LeadingToken(field))
	if !ok {
		return types.Prefix{}, KindMalformed, fmt.Errorf("%q: %w", field, types.ErrMalformedEntry)
	}

	prefix, ok := types.PrefixFromNetip(parsed)
	if !ok {
		return types.Prefix{}, KindMalformed, fmt.Errorf("%q: %w", field, types.ErrMalformedEntry)
	}

	return prefix, KindPrefix, nil
}

type normalizer struct {
	prefixes []types.Prefix
	stats    Stats
}

func (n *normalizer) line(line string) {
	n.stats.Lines++

	prefix, kind, _ := ParseLine(line)
	switch kind {
	case KindPrefix:
		n.stats.Valid++
		n.prefixes = append(n.prefixes, prefix)
	case KindIPv6:
		n.stats.Skipped++
	case KindMalformed:
		n.stats.Discarded++
	}
}

func (n *normalizer) overlong() {
	n.stats.Lines++
	n.stats.Discarded++
}

func (n *normalizer) result() (types.PrefixSet, Stats) {
	return types.NewPrefixSet(n.prefixes), n.stats
}

func isComment(line string) bool {
	return line[0] == '#' || line[0] == ';' || strings.HasPrefix(line, "//")
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n' || r == '\v' || r == '\f'
}

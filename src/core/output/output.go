package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cnaize/blgen/src/types"
)

type Mode string

const (
	ModeRaw        Mode = "raw"
	ModeLoadScript Mode = "ipset"
)

const (
	DefaultSetName = "blacklist"
	minMaxElem     = 65536
)

func ParseMode(str string) (Mode, error) {
	switch strings.ToLower(str) {
	case "", string(ModeRaw):
		return ModeRaw, nil
	case string(ModeLoadScript), "loadscript", "load-script":
		return ModeLoadScript, nil
	}

	return "", fmt.Errorf("unknown output mode: %q", str)
}

type Options struct {
	Mode    Mode
	SetName string
	// render /32 entries as a.b.c.d/32 instead of a bare address
	HostSuffix bool
}

func Render(w io.Writer, set types.PrefixSet, opts Options) error {
	bw := bufio.NewWriter(w)

	var err error
	switch opts.Mode {
	case ModeRaw, "":
		err = renderRaw(bw, set, opts)
	case ModeLoadScript:
		err = renderLoadScript(bw, set, opts)
	default:
		return fmt.Errorf("unknown output mode: %q", opts.Mode)
	}
	if err != nil {
		return err
	}

	return bw.Flush()
}

// WriteFile renders into a temp file next to path and renames it into place,
// so readers never see a partial list.
func WriteFile(path string, set types.PrefixSet, opts Options) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := Render(tmp, set, opts); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	return nil
}

func renderRaw(w io.Writer, set types.PrefixSet, opts Options) error {
	for i := 0; i < set.Len(); i++ {
		prefix := set.At(i)

		line := prefix.HostString()
		if opts.HostSuffix {
			line = prefix.String()
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	return nil
}

// renderLoadScript writes an "ipset restore" script that fills a temporary set
// and swaps it with the live one.
func renderLoadScript(w io.Writer, set types.PrefixSet, opts Options) error {
	name := opts.SetName
	if name == "" {
		name = DefaultSetName
	}
	tmpName := name + "-tmp"
	params := fmt.Sprintf("hash:net family inet hashsize 1024 maxelem %d", maxElem(set.Len()))

	// header
	if _, err := fmt.Fprintf(w, "create %s %s -exist\nflush %s\n", tmpName, params, tmpName); err != nil {
		return err
	}

	for i := 0; i < set.Len(); i++ {
		if _, err := fmt.Fprintf(w, "add %s %s\n", tmpName, set.At(i).HostString()); err != nil {
			return err
		}
	}

	// footer
	_, err := fmt.Fprintf(w, "create %s %s -exist\nswap %s %s\ndestroy %s\n", name, params, tmpName, name, tmpName)
	return err
}

func maxElem(n int) int {
	size := minMaxElem
	for size < n {
		size <<= 1
	}

	return size
}

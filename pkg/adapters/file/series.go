// Package file implements the on-disk contracts of the loop: two-column
// frequency-series files, the Delta.dat.prev snapshot, and a JSON run
// checkpoint store.
package file

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmftio/bethe/pkg/domain"
)

// Well-known file names of the solver exchange directory.
const (
	DeltaFile     = "Delta.dat"      // Im(Delta), written after each transform
	DeltaReFile   = "Delta-re.dat"   // Re(Delta), produced by the Kramers-Kronig tool
	DeltaPrevFile = "Delta.dat.prev" // point-in-time copy captured at iteration start

	ImGFile = "c-imG.dat" // correlators produced by the solver pipeline
	ReGFile = "c-reG.dat"
	ImFFile = "c-imF.dat"
	ReFFile = "c-reF.dat"

	SelfFile    = "c-self.dat"  // reconstructor outputs
	ImSigmaFile = "imsigma.dat"
	ReSigmaFile = "resigma.dat"

	GLocFile = "G_loc.dat" // three-column (omega, re, im)
	ImAwFile = "imaw.dat"  // spectral function A(omega)
	ReAwFile = "reaw.dat"  // auxiliary real-part series
)

// Repository implements ports.SeriesRepository over one working directory.
type Repository struct {
	Dir string
}

// NewRepository creates a repository rooted at dir ("." if empty).
func NewRepository(dir string) *Repository {
	if dir == "" {
		dir = "."
	}
	return &Repository{Dir: dir}
}

func (r *Repository) path(name string) string {
	return filepath.Join(r.Dir, name)
}

// Load reads a two-column series file. Blank lines and lines starting with
// '#' are ignored; each remaining line must carry at least two float tokens.
func (r *Repository) Load(_ context.Context, name string) (domain.Series, error) {
	return ReadSeries(r.path(name))
}

// Store writes a two-column series file atomically.
func (r *Repository) Store(_ context.Context, name string, s domain.Series) error {
	return writeAtomic(r.path(name), func(w io.Writer) error {
		for _, p := range s {
			if _, err := fmt.Fprintf(w, "%.12g %.12g\n", p.Omega, p.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

// StoreComplex writes a three-column (omega, re, im) file atomically.
func (r *Repository) StoreComplex(_ context.Context, name string, s domain.ComplexSeries) error {
	return writeAtomic(r.path(name), func(w io.Writer) error {
		for _, p := range s {
			if _, err := fmt.Fprintf(w, "%.12g %.12g %.12g\n", p.Omega, real(p.Value), imag(p.Value)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Snapshot copies name to snapshotName. The copy is captured whole before
// the source is overwritten later in the iteration.
func (r *Repository) Snapshot(_ context.Context, name, snapshotName string) error {
	src, err := os.Open(r.path(name))
	if err != nil {
		return fmt.Errorf("%w: snapshot source %s: %v", domain.ErrDataFormat, name, err)
	}
	defer src.Close()

	return writeAtomic(r.path(snapshotName), func(w io.Writer) error {
		_, err := io.Copy(w, src)
		return err
	})
}

// Exists reports whether the named file is present.
func (r *Repository) Exists(name string) bool {
	_, err := os.Stat(r.path(name))
	return err == nil
}

// ReadSeries parses a whitespace-separated two-column text file.
func ReadSeries(path string) (domain.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrDataFormat, filepath.Base(path), err)
	}
	defer f.Close()

	var out domain.Series
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: %s:%d: expected two columns, got %d",
				domain.ErrDataFormat, filepath.Base(path), line, len(fields))
		}
		omega, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s:%d: bad omega %q", domain.ErrDataFormat, filepath.Base(path), line, fields[0])
		}
		value, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s:%d: bad value %q", domain.ErrDataFormat, filepath.Base(path), line, fields[1])
		}
		out = append(out, domain.Point{Omega: omega, Value: value})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrDataFormat, filepath.Base(path), err)
	}
	return out, nil
}

// writeAtomic writes via a temp file in the same directory, fsyncs, and
// renames over the destination so readers never observe a partial file.
func writeAtomic(path string, fill func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to ensure directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	w := bufio.NewWriter(tmp)
	if err := fill(w); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to fsync %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename into place: %w", err)
	}
	return nil
}

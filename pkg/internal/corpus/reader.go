// Package corpus turns a directory of labeled waveforms into conditioned, featurized
// examples. Extraction runs on a wire worker pool, records every item as a success or a
// skip, and can resume from a bbolt ledger after an interrupted run.
package corpus

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joeydtaylor/tremor/pkg/internal/codec"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
	"github.com/joeydtaylor/tremor/pkg/internal/utils"
)

// DirReader reads waveform containers stored as <dir>/<id>.
type DirReader struct {
	dir   string
	ext   string
	codec *codec.WaveformCodec
}

var _ types.WaveformReader = (*DirReader)(nil)

// NewDirReader returns a reader over dir. ext filters List, e.g. "mseed".
func NewDirReader(dir, ext string) *DirReader {
	return &DirReader{dir: dir, ext: strings.TrimPrefix(ext, "."), codec: codec.NewWaveformCodec()}
}

// Dir returns the directory the reader serves.
func (r *DirReader) Dir() string { return r.dir }

func (r *DirReader) path(id string) (string, error) {
	if id == "" || filepath.Base(id) != id || id == "." || id == ".." {
		return "", fmt.Errorf("corpus: invalid source identity %q", id)
	}
	return filepath.Join(r.dir, id), nil
}

// Read decodes the container for id. The returned waveform always carries id as its identity.
func (r *DirReader) Read(ctx context.Context, id string) (types.Waveform, error) {
	if err := ctx.Err(); err != nil {
		return types.Waveform{}, err
	}
	p, err := r.path(id)
	if err != nil {
		return types.Waveform{}, err
	}
	f, err := os.Open(p)
	if err != nil {
		return types.Waveform{}, err
	}
	defer f.Close()
	w, err := r.codec.Decode(bufio.NewReader(f))
	if err != nil {
		return types.Waveform{}, fmt.Errorf("corpus: decode %s: %w", id, err)
	}
	w.ID = id
	return w, nil
}

// List returns the identities of all files in the directory with the reader's extension,
// sorted ascending.
func (r *DirReader) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() {
			continue
		}
		if r.ext != "" && strings.TrimPrefix(filepath.Ext(e.Name()), ".") != r.ext {
			continue
		}
		ids = append(ids, e.Name())
	}
	sort.Strings(ids)
	return ids, nil
}

// Write stores w as <dir>/<w.ID>.
func (r *DirReader) Write(w types.Waveform) error {
	p, err := r.path(w.ID)
	if err != nil {
		return err
	}
	if err := utils.EnsureParentDir(p); err != nil {
		return err
	}
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := r.codec.Encode(bw, w); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

package codec

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
)

// Compression identifies the algorithm applied to a checkpoint payload.
type Compression uint8

const (
	CompressNone Compression = iota
	CompressGzip
	CompressSnappy
	CompressZstd
	CompressBrotli
	CompressLZ4
)

var compressionNames = map[Compression]string{
	CompressNone:   "none",
	CompressGzip:   "gzip",
	CompressSnappy: "snappy",
	CompressZstd:   "zstd",
	CompressBrotli: "brotli",
	CompressLZ4:    "lz4",
}

func (c Compression) String() string {
	if name, ok := compressionNames[c]; ok {
		return name
	}
	return fmt.Sprintf("compression(%d)", uint8(c))
}

// ParseCompression maps a configuration name to a Compression. The empty string is "none".
func ParseCompression(name string) (Compression, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return CompressNone, nil
	}
	if n == "deflate" {
		return CompressGzip, nil
	}
	for c, cname := range compressionNames {
		if cname == n {
			return c, nil
		}
	}
	return CompressNone, fmt.Errorf("unsupported compression %q", name)
}

func compressData(data []byte, algorithm Compression) ([]byte, error) {
	var b bytes.Buffer
	var w io.WriteCloser

	switch algorithm {
	case CompressNone:
		return data, nil
	case CompressGzip:
		w = gzip.NewWriter(&b)
	case CompressSnappy:
		w = snappy.NewBufferedWriter(&b)
	case CompressZstd:
		var err error
		w, err = zstd.NewWriter(&b)
		if err != nil {
			return nil, err
		}
	case CompressBrotli:
		w = brotli.NewWriterLevel(&b, brotli.BestCompression)
	case CompressLZ4:
		w = lz4.NewWriter(&b)
	default:
		return nil, fmt.Errorf("unsupported compression %s", algorithm)
	}

	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func decompressData(data []byte, algorithm Compression) ([]byte, error) {
	var r io.Reader

	switch algorithm {
	case CompressNone:
		return data, nil
	case CompressGzip:
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	case CompressSnappy:
		r = snappy.NewReader(bytes.NewReader(data))
	case CompressZstd:
		zr, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	case CompressBrotli:
		r = brotli.NewReader(bytes.NewReader(data))
	case CompressLZ4:
		r = lz4.NewReader(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported compression %s", algorithm)
	}

	return io.ReadAll(r)
}

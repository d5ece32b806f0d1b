package loader

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

type codec uint8

const (
	codecNone codec = iota
	codecZstd
	codecLZ4
)

func (c codec) String() string {
	switch c {
	case codecZstd:
		return "zstd"
	case codecLZ4:
		return "lz4"
	default:
		return "none"
	}
}

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// splitCompression strips a compression suffix from name.
func splitCompression(name string) (string, codec) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".zst", ".zstd":
		return strings.TrimSuffix(name, filepath.Ext(name)), codecZstd
	case ".lz4":
		return strings.TrimSuffix(name, filepath.Ext(name)), codecLZ4
	default:
		return name, codecNone
	}
}

var zstdDecoderPool sync.Pool

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil)
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

func decompress(c codec, raw []byte) ([]byte, error) {
	switch c {
	case codecNone:
		return raw, nil
	case codecZstd:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, fmt.Errorf("zstd decoder: %w", err)
		}
		defer putZstdDecoder(dec)
		out, err := dec.DecodeAll(raw, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decode: %w", err)
		}
		return out, nil
	case codecLZ4:
		out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(raw)))
		if err != nil {
			return nil, fmt.Errorf("lz4 decode: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown codec %s", c)
	}
}

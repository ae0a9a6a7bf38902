package storage

import (
	"bytes"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// zstd decoder 는 생성 비용이 크므로 하나를 공유한다. DecodeAll 은 동시 호출에 안전하다.
var zstdDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))

// decompress 는 확장자 또는 magic bytes 로 압축 형식을 판단해서 푼다.
// 둘 다 해당하지 않으면 data 를 그대로 반환한다.
func decompress(key string, data []byte) ([]byte, error) {
	lower := strings.ToLower(key)

	switch {
	case strings.HasSuffix(lower, ".gz") || bytes.HasPrefix(data, gzipMagic):
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)

	case strings.HasSuffix(lower, ".zst") || bytes.HasPrefix(data, zstdMagic):
		return zstdDecoder.DecodeAll(data, nil)
	}

	return data, nil
}

// DecodeText
// ------------------------------------------------------------
// 로그 바이트를 UTF-8 문자열로 바꾼다. 실패하지 않는다.
// 잘못된 UTF-8 시퀀스는 U+FFFD 로 치환된다.
func DecodeText(b []byte) string {
	s, _, err := transform.String(runes.ReplaceIllFormed(), string(b))
	if err != nil {
		return strings.ToValidUTF8(string(b), "\uFFFD")
	}
	return s
}

package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// FileReader 는 로컬 파일을 ObjectReader 로 노출한다 (CLI --file).
// bucket 은 무시하고 key 를 파일 경로로 사용한다. Root 가 있으면 그 아래에서 찾는다.
type FileReader struct {
	Root string
}

func (f FileReader) Read(ctx context.Context, _ string, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Op: "read", Key: key, Err: err}
	}

	path := key
	if f.Root != "" {
		path = filepath.Join(f.Root, key)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = notFound(err)
		}
		return nil, &Error{Op: "read", Key: path, Err: err}
	}

	data, err := decompress(path, raw)
	if err != nil {
		return nil, &Error{Op: "decode", Key: path, Err: err}
	}
	return data, nil
}

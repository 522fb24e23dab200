package pdf

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// HashReader fingerprints a document by streaming it through SHA-256 in
// 64 KiB chunks, so large uploads never need to be buffered twice.
func HashReader(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, 64*1024)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashBytes fingerprints in-memory document bytes through the same chunked
// path as HashReader.
func HashBytes(data []byte) string {
	sum, _ := HashReader(bytes.NewReader(data))
	return sum
}

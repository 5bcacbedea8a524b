package memstore

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// BlobSHA returns the git blob id for content, matching the sha GitHub
// reports for a file.
func BlobSHA(content string) string {
	h := sha1.New()
	fmt.Fprintf(h, "blob %d\x00", len(content))
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}

// commitSHA derives a stable id for a commit from its parent and message.
func commitSHA(parent, path, blob, message string) string {
	h := sha1.New()
	fmt.Fprintf(h, "commit\x00%s\x00%s\x00%s\x00%s", parent, path, blob, message)
	return hex.EncodeToString(h.Sum(nil))
}

// Package file implements the upload pipeline and retrieval endpoints:
// key derivation, the durable write, best-effort event emission, and
// streaming objects back out.
package file

import (
	"strconv"
	"strings"
	"time"
)

var filenameSanitizer = strings.NewReplacer("/", "_", "\\", "_", " ", "_")

// SanitizeFilename replaces path separators and spaces with underscores so the
// original filename can be embedded in a storage key. Only those three
// characters are rewritten; everything else passes through unchanged. The
// mapping is lossy and idempotent.
func SanitizeFilename(name string) string {
	return filenameSanitizer.Replace(name)
}

// DeriveKey builds the storage key for one upload:
//
//	<ownerID>/<entryID>/<unixMillis>-<sanitized filename>
//
// The owner prefix partitions the bucket's namespace and the timestamp makes
// repeated uploads of the same file land under distinct keys. Two identical
// uploads within the same millisecond collide and the second overwrites the
// first; the window is narrower than any real multipart round trip, so the
// key format stays parseable by downstream consumers instead of growing a
// nonce. ownerID and entryID are trusted to be validated non-empty upstream.
func DeriveKey(ownerID, entryID, filename string, now time.Time) string {
	return ownerID + "/" + entryID + "/" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + SanitizeFilename(filename)
}

/*
Package filesystem provides resilient filesystem operations for the gallery
pipeline: retrying stat/open, atomic whole-file writes, and byte-identical copies.

# Retry Behavior

StatWithRetry and OpenWithRetry wrap os.Stat and os.Open. Transient errors
(ESTALE from NFS-mounted gallery roots, EINTR) are retried with exponential
backoff:
  - MaxRetries: 3 attempts
  - InitialBackoff: 50ms
  - MaxBackoff: 500ms

All other errors fail immediately.

# Atomic Writes

WriteFileAtomic and WriteAtomic write to a temporary file in the destination
directory, fsync it, and rename it over the target. A process killed mid-write
leaves the previous file intact; this is what the catalog save and thumbnail
encode paths rely on.

	err := filesystem.WriteFileAtomic("photos.json", data, 0o644)

# Copies

CopyFile produces a byte-identical copy that keeps the source's permissions and
modification time. Thumbnails for images that already fit the bounds, and the
fallback thumbnails for undecodable images, are produced this way.
*/
package filesystem

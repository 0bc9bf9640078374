package media

import "errors"

var (
	// ErrDecode is returned when an image or its tag block cannot be decoded.
	ErrDecode = errors.New("image decode failed")

	// ErrNoMetadata is returned for a readable image that carries no EXIF
	// block, or whose block holds no tag the table knows. It is a negative
	// result rather than a failure.
	ErrNoMetadata = errors.New("no EXIF metadata")

	// ErrEncode is returned when a resized thumbnail cannot be encoded or saved.
	ErrEncode = errors.New("thumbnail encode failed")
)

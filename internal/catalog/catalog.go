package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gallery-admin/internal/filesystem"
)

var (
	// ErrCatalogMissing is returned when the catalog file does not exist.
	ErrCatalogMissing = errors.New("catalog file not found")

	// ErrCatalogEmpty is returned when the catalog has no photos array or
	// the array is empty.
	ErrCatalogEmpty = errors.New("catalog has no photos")

	// ErrSourceMissing marks a record whose image cannot be resolved on disk.
	// It never aborts a run; the record is skipped.
	ErrSourceMissing = errors.New("photo source not found")

	// ErrInvalidCatalog is returned for documents that are not a JSON object
	// or whose photos field is not an array of objects.
	ErrInvalidCatalog = errors.New("invalid catalog document")
)

// JSON keys owned by the pipeline.
const (
	keyPhotos    = "photos"
	keySrc       = "src"
	keyExif      = "exif"
	keyThumbnail = "thumbnailPath"
)

// PhotoRecord is one entry of the photos array. Fields the pipeline does not
// own are kept in Extra and written back verbatim.
type PhotoRecord struct {
	Src           string
	Exif          map[string]string
	ThumbnailPath string
	Extra         map[string]json.RawMessage

	hasSrc       bool
	hasThumbnail bool
}

// SetExif replaces the record's metadata.
func (r *PhotoRecord) SetExif(md map[string]string) {
	r.Exif = md
	delete(r.Extra, keyExif)
}

// SetThumbnailPath replaces the record's thumbnail path.
func (r *PhotoRecord) SetThumbnailPath(path string) {
	r.ThumbnailPath = path
	r.hasThumbnail = true
	delete(r.Extra, keyThumbnail)
}

// UnmarshalJSON keeps every key. src, exif and thumbnailPath are lifted into
// typed fields only when they have the expected JSON type; anything else
// stays in Extra untouched.
func (r *PhotoRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("%w: photo record is not an object", ErrInvalidCatalog)
	}

	if err := normalizeFields(fields); err != nil {
		return err
	}
	*r = PhotoRecord{Extra: fields}

	if raw, ok := fields[keySrc]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &r.Src); err == nil {
			r.hasSrc = true
			delete(fields, keySrc)
		}
	}
	if raw, ok := fields[keyExif]; ok && !isNull(raw) {
		var md map[string]string
		if err := json.Unmarshal(raw, &md); err == nil {
			r.Exif = md
			delete(fields, keyExif)
		}
	}
	if raw, ok := fields[keyThumbnail]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &r.ThumbnailPath); err == nil {
			r.hasThumbnail = true
			delete(fields, keyThumbnail)
		}
	}
	return nil
}

// MarshalJSON writes Extra plus the typed fields that are set.
func (r PhotoRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Extra)+3)
	for k, v := range r.Extra {
		out[k] = v
	}
	if r.hasSrc || r.Src != "" {
		out[keySrc] = r.Src
	}
	if r.Exif != nil {
		out[keyExif] = r.Exif
	}
	if r.hasThumbnail || r.ThumbnailPath != "" {
		out[keyThumbnail] = r.ThumbnailPath
	}
	return marshalLiteral(out)
}

// Catalog is the parsed photos.json document.
type Catalog struct {
	Photos []PhotoRecord
	// Extra holds the top-level siblings of photos.
	Extra map[string]json.RawMessage

	hasPhotos bool
}

// Parse decodes a catalog document. The document must be a JSON object; a
// missing photos key is allowed here and reported by callers that need
// records.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		if errors.Is(err, ErrInvalidCatalog) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return &c, nil
}

// HasPhotosArray reports whether the document carried a photos array.
func (c *Catalog) HasPhotosArray() bool {
	return c.hasPhotos
}

func (c *Catalog) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("%w: document is not an object", ErrInvalidCatalog)
	}

	raw, ok := fields[keyPhotos]
	delete(fields, keyPhotos)
	if err := normalizeFields(fields); err != nil {
		return err
	}
	if ok {
		fields[keyPhotos] = raw
	}

	*c = Catalog{Extra: fields}

	if !ok || isNull(raw) {
		return nil
	}
	var photos []PhotoRecord
	if err := json.Unmarshal(raw, &photos); err != nil {
		return fmt.Errorf("%w: photos: %v", ErrInvalidCatalog, err)
	}
	c.Photos = photos
	c.hasPhotos = true
	delete(fields, keyPhotos)
	return nil
}

func (c Catalog) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+1)
	for k, v := range c.Extra {
		out[k] = v
	}
	if c.hasPhotos || c.Photos != nil {
		photos := c.Photos
		if photos == nil {
			photos = []PhotoRecord{}
		}
		out[keyPhotos] = photos
	}
	return marshalLiteral(out)
}

// Encode renders the catalog the way it is stored on disk: two-space
// indentation, non-ASCII text and HTML characters written literally, and a
// trailing newline.
func (c *Catalog) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load reads and parses the catalog at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCatalogMissing, path)
		}
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Save writes the catalog to path atomically.
func Save(path string, c *Catalog) error {
	data, err := c.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := filesystem.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write catalog %s: %w", path, err)
	}
	return nil
}

// marshalLiteral is json.Marshal without HTML escaping. Nested Marshalers
// would otherwise escape <, > and & before the outer encoder sees them.
func marshalLiteral(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// normalizeFields re-encodes every value so that \uXXXX escapes from the
// input are written back as literal characters. Numbers keep their exact
// text.
func normalizeFields(fields map[string]json.RawMessage) error {
	for k, raw := range fields {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, k, err)
		}
		out, err := marshalLiteral(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, k, err)
		}
		fields[k] = out
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

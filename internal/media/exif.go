package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	"github.com/rwcarlsen/goexif/tiff"

	"gallery-admin/internal/filesystem"
	"gallery-admin/internal/logging"
	"gallery-admin/internal/metrics"
)

func init() {
	// Maker notes carry lens data for some bodies; unknown names are dropped by the table.
	exif.RegisterParsers(mknote.All...)
	exif.RegisterParsers(bodyLensParser{})
}

// Exif 2.3 body and lens tags that goexif has no field names for.
const (
	CameraOwnerName   exif.FieldName = "CameraOwnerName"
	BodySerialNumber  exif.FieldName = "BodySerialNumber"
	LensSpecification exif.FieldName = "LensSpecification"
	LensSerialNumber  exif.FieldName = "LensSerialNumber"
)

var bodyLensFields = map[uint16]exif.FieldName{
	0xA430: CameraOwnerName,
	0xA431: BodySerialNumber,
	0xA432: LensSpecification,
	0xA435: LensSerialNumber,
}

// bodyLensParser re-reads the EXIF sub-IFD and loads the tags listed in
// bodyLensFields. goexif only runs it when the built-in parser succeeded.
type bodyLensParser struct{}

func (bodyLensParser) Parse(x *exif.Exif) error {
	ptr, err := x.Get(exif.ExifIFDPointer)
	if err != nil {
		return nil
	}
	offset, err := ptr.Int64(0)
	if err != nil || offset <= 0 || offset >= int64(len(x.Raw)) {
		return nil
	}

	r := bytes.NewReader(x.Raw)
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return nil
	}
	dir, _, err := tiff.DecodeDir(r, x.Tiff.Order)
	if err != nil {
		// The built-in parser already read this directory; a failure here
		// only means the extra tags are unavailable.
		return nil
	}
	x.LoadTags(dir, bodyLensFields, false)
	return nil
}

// Metadata maps display labels to formatted tag values.
type Metadata map[string]string

// MetadataExtractor reads the EXIF block of an image and renders the tags
// its table knows into display labels.
type MetadataExtractor struct {
	tags TagTable
}

// NewMetadataExtractor creates an extractor using DefaultTagTable.
func NewMetadataExtractor() *MetadataExtractor {
	return NewMetadataExtractorWithTable(DefaultTagTable)
}

// NewMetadataExtractorWithTable creates an extractor with a custom label table.
func NewMetadataExtractorWithTable(tags TagTable) *MetadataExtractor {
	return &MetadataExtractor{tags: tags}
}

// Extract reads the metadata of the image at path.
//
// It returns ErrNoMetadata for a readable image without EXIF data and
// ErrDecode when the file cannot be parsed at all. Neither case should abort
// a batch: callers log and move on to the next record.
func (e *MetadataExtractor) Extract(path string) (md Metadata, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			md = nil
			err = fmt.Errorf("%w: %s: panic while reading EXIF: %v", ErrDecode, path, r)
		}
		metrics.ExifExtractionDuration.Observe(time.Since(start).Seconds())
		switch {
		case err == nil:
			metrics.ExifExtractionsTotal.WithLabelValues("success").Inc()
			metrics.ExifTagsExtracted.Observe(float64(len(md)))
		case errors.Is(err, ErrNoMetadata):
			metrics.ExifExtractionsTotal.WithLabelValues("no_metadata").Inc()
			logging.Debug("No EXIF metadata in %s", path)
		default:
			metrics.ExifExtractionsTotal.WithLabelValues("error").Inc()
			logging.Warn("EXIF extraction failed for %s: %v", path, err)
		}
	}()

	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	defer f.Close()

	return e.extract(f, path)
}

// ExtractReader is Extract for an already opened image.
func (e *MetadataExtractor) ExtractReader(r io.ReadSeeker) (Metadata, error) {
	return e.extract(r, "<reader>")
}

func (e *MetadataExtractor) extract(r io.ReadSeeker, name string) (Metadata, error) {
	x, err := exif.Decode(r)
	if x == nil {
		if err == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoMetadata, name)
		}
		// goexif cannot tell "no block" from "broken file"; ask the image decoders.
		if _, seekErr := r.Seek(0, io.SeekStart); seekErr == nil {
			if _, _, cfgErr := image.DecodeConfig(r); cfgErr == nil {
				return nil, fmt.Errorf("%w: %s", ErrNoMetadata, name)
			}
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, name, err)
	}
	if err != nil {
		// A sub-IFD or maker note failed; the main directory is still usable.
		logging.Debug("Partial EXIF data in %s: %v", name, err)
	}

	c := &tagCollector{tags: e.tags, raw: make(map[exif.FieldName]string)}
	if err := x.Walk(c); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, name, err)
	}

	md := c.metadata()
	if len(md) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMetadata, name)
	}
	return md, nil
}

// tagCollector implements exif.Walker, keeping the string form of every
// tag with a known label.
type tagCollector struct {
	tags TagTable
	raw  map[exif.FieldName]string
}

func (c *tagCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if _, ok := c.tags.Label(name); !ok {
		return nil
	}
	value, ok := tagString(tag)
	if !ok {
		return nil
	}
	c.raw[name] = value
	return nil
}

// metadata applies labels and value formatting. FNumber wins over the APEX
// ApertureValue when both are present since they share a label.
func (c *tagCollector) metadata() Metadata {
	md := make(Metadata, len(c.raw))
	_, hasFNumber := c.raw[exif.FNumber]

	for name, value := range c.raw {
		label, _ := c.tags.Label(name)
		switch name {
		case exif.ExposureTime:
			value = FormatExposure(value)
		case exif.FNumber:
			value = FormatAperture(value)
		case exif.ApertureValue:
			if hasFNumber {
				continue
			}
			value = FormatApexAperture(value)
		case exif.FocalLength:
			value = FormatFocalLength(value)
		case exif.ISOSpeedRatings:
			value = FormatISO(value)
		}
		md[label] = value
	}
	return md
}

// tagString renders a tag value as text. Multi-valued tags are joined with
// ", "; rationals keep their "num/den" form for the formatters.
func tagString(tag *tiff.Tag) (string, bool) {
	count := int(tag.Count)

	switch tag.Format() {
	case tiff.StringVal:
		s, err := tag.StringVal()
		if err != nil {
			return "", false
		}
		s = strings.TrimSpace(strings.Trim(s, "\x00"))
		return s, s != ""
	case tiff.IntVal:
		parts := make([]string, 0, count)
		for i := 0; i < count; i++ {
			v, err := tag.Int64(i)
			if err != nil {
				return "", false
			}
			parts = append(parts, strconv.FormatInt(v, 10))
		}
		return strings.Join(parts, ", "), len(parts) > 0
	case tiff.RatVal:
		parts := make([]string, 0, count)
		for i := 0; i < count; i++ {
			num, den, err := tag.Rat2(i)
			if err != nil {
				return "", false
			}
			parts = append(parts, fmt.Sprintf("%d/%d", num, den))
		}
		return strings.Join(parts, ", "), len(parts) > 0
	case tiff.FloatVal:
		parts := make([]string, 0, count)
		for i := 0; i < count; i++ {
			v, err := tag.Float(i)
			if err != nil {
				return "", false
			}
			parts = append(parts, strconv.FormatFloat(v, 'f', -1, 64))
		}
		return strings.Join(parts, ", "), len(parts) > 0
	case tiff.UndefVal:
		return undefinedString(tag.Val)
	default:
		return "", false
	}
}

// Character code prefixes used by UserComment.
var commentPrefixes = []string{"ASCII\x00\x00\x00", "UNICODE\x00", "JIS\x00\x00\x00\x00\x00", "\x00\x00\x00\x00\x00\x00\x00\x00"}

// undefinedString returns printable blobs as text and summarises binary ones.
func undefinedString(b []byte) (string, bool) {
	for _, prefix := range commentPrefixes {
		if len(b) >= len(prefix) && string(b[:len(prefix)]) == prefix {
			b = b[len(prefix):]
			break
		}
	}
	s := strings.TrimSpace(strings.TrimRight(string(b), "\x00"))
	if s == "" {
		return "", false
	}
	if utf8.ValidString(s) && isPrintable(s) {
		return s, true
	}
	return fmt.Sprintf("<%d bytes>", len(b)), true
}

func isPrintable(s string) bool {
	for _, r := range s {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

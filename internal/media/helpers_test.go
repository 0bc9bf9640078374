package media

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"testing"
)

// createTestImage creates a gradient test image and saves it to the given path
func createTestImage(t *testing.T, path string, width, height int, format string) {
	t.Helper()

	if err := os.WriteFile(path, encodeTestImage(t, gradient(width, height), format), 0o644); err != nil {
		t.Fatalf("Failed to write test image: %v", err)
	}
}

func gradient(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 255) / width),
				G: uint8((y * 255) / height),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

func encodeTestImage(t *testing.T, img image.Image, format string) []byte {
	t.Helper()

	var buf bytes.Buffer
	var err error
	switch format {
	case "jpeg", "jpg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	case "png":
		err = png.Encode(&buf, img)
	default:
		t.Fatalf("Unsupported test image format: %s", format)
	}
	if err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

// TIFF field types used by the EXIF fixtures.
const (
	typeASCII     = 2
	typeShort     = 3
	typeLong      = 4
	typeRational  = 5
	typeUndefined = 7

	tagExifPointer = 0x8769
)

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

func asciiEntry(tag uint16, s string) ifdEntry {
	return ifdEntry{tag: tag, typ: typeASCII, count: uint32(len(s) + 1), data: append([]byte(s), 0)}
}

func shortEntry(tag uint16, v uint16) ifdEntry {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return ifdEntry{tag: tag, typ: typeShort, count: 1, data: b}
}

func rationalEntry(tag uint16, num, den uint32) ifdEntry {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b, num)
	binary.LittleEndian.PutUint32(b[4:], den)
	return ifdEntry{tag: tag, typ: typeRational, count: 1, data: b}
}

func undefinedEntry(tag uint16, b []byte) ifdEntry {
	return ifdEntry{tag: tag, typ: typeUndefined, count: uint32(len(b)), data: b}
}

// buildTIFF lays out a little-endian TIFF block with IFD0 followed by an
// optional EXIF sub-IFD and then the out-of-line values.
func buildTIFF(ifd0, exifIFD []ifdEntry) []byte {
	le := binary.LittleEndian
	if len(exifIFD) > 0 {
		ifd0 = append(ifd0, ifdEntry{tag: tagExifPointer, typ: typeLong, count: 1})
	}

	ifdSize := func(n int) int { return 2 + 12*n + 4 }
	exifOff := 8 + ifdSize(len(ifd0))
	dataOff := exifOff
	if len(exifIFD) > 0 {
		dataOff += ifdSize(len(exifIFD))
	}

	var data []byte
	writeIFD := func(entries []ifdEntry) []byte {
		buf := make([]byte, 2, ifdSize(len(entries)))
		le.PutUint16(buf, uint16(len(entries)))
		for _, e := range entries {
			ent := make([]byte, 12)
			le.PutUint16(ent[0:], e.tag)
			le.PutUint16(ent[2:], e.typ)
			le.PutUint32(ent[4:], e.count)
			switch {
			case e.tag == tagExifPointer && e.data == nil:
				le.PutUint32(ent[8:], uint32(exifOff))
			case len(e.data) <= 4:
				copy(ent[8:], e.data)
			default:
				le.PutUint32(ent[8:], uint32(dataOff+len(data)))
				data = append(data, e.data...)
				if len(data)%2 == 1 {
					data = append(data, 0)
				}
			}
			buf = append(buf, ent...)
		}
		return append(buf, 0, 0, 0, 0)
	}

	out := []byte{'I', 'I', 42, 0, 8, 0, 0, 0}
	out = append(out, writeIFD(ifd0)...)
	if len(exifIFD) > 0 {
		out = append(out, writeIFD(exifIFD)...)
	}
	return append(out, data...)
}

// jpegWithExif encodes a width x height JPEG and inserts an APP1 segment
// holding tiffData right after the SOI marker.
func jpegWithExif(t *testing.T, width, height int, tiffData []byte) []byte {
	t.Helper()

	raw := encodeTestImage(t, gradient(width, height), "jpeg")
	payload := append([]byte("Exif\x00\x00"), tiffData...)
	length := len(payload) + 2

	out := []byte{0xFF, 0xD8, 0xFF, 0xE1, byte(length >> 8), byte(length)}
	out = append(out, payload...)
	return append(out, raw[2:]...)
}

// cameraTIFF is a typical camera block: make and model in IFD0, exposure
// settings in the EXIF sub-IFD.
func cameraTIFF() []byte {
	return buildTIFF(
		[]ifdEntry{
			asciiEntry(0x010F, "Canon"),
			asciiEntry(0x0110, "EOS R5"),
			asciiEntry(0x010E, "holiday snapshot"),
		},
		[]ifdEntry{
			rationalEntry(0x829A, 1, 250),
			rationalEntry(0x829D, 28, 10),
			shortEntry(0x8822, 2),
			shortEntry(0x8827, 400),
			asciiEntry(0x9003, "2024:05:01 10:30:00"),
			rationalEntry(0x920A, 50, 1),
			undefinedEntry(0x9000, []byte("0231")),
		},
	)
}

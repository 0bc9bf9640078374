// Package media turns gallery images into the two derived artifacts the
// front end needs: a labelled EXIF summary and a bounded thumbnail.
//
// MetadataExtractor decodes the EXIF block with goexif and maps each known
// tag to a Chinese display label, formatting exposure time, aperture, focal
// length and ISO for display.
//
// ThumbnailGenerator scales images into a 400x300 box (configurable) with
// Lanczos resampling. Images that already fit are copied verbatim, PNG stays
// PNG, everything else becomes JPEG. Undecodable images fall back to a copy
// of the original so every photo still gets a thumbnail. libvips is an
// optional secondary decoder and pre-shrinker for very large sources.
package media

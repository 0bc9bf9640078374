/*
Package catalog reads, updates and rewrites the gallery's photos.json.

The catalog is a JSON object whose "photos" array holds one record per image.
The pipeline owns three record keys: "src" (the image path relative to the
gallery root), "exif" (display label to value) and "thumbnailPath". Every other
key, both on records and beside "photos", is preserved verbatim.

# Runs

Updater.Run visits the records in order and, depending on the Mode, fills in
metadata, thumbnails or both. Records that cannot be resolved to a file under
the gallery root are counted as skipped. Per-image failures are logged and the
run continues; a missing or empty catalog aborts before anything is touched.

The catalog is written once, atomically, at the end of a successful run:

	u := catalog.NewUpdater(cfg, catalog.NewStore("photos.json"), extractor, thumbnails)
	res, err := u.Run(ctx, catalog.ModeBoth)

# Encoding

Saved documents use two-space indentation, keep non-ASCII text and HTML
characters literal, and end with a newline.
*/
package catalog

// Package mediatypes holds the image and video extension allow-lists and the
// MediaType enum shared by the walker, the metadata extractor and the stores.
//
// It has no dependencies beyond the standard library so every other package
// can import it without creating cycles.
//
// Extensions are stored lower-case and without the leading dot, the same form
// persisted in the catalog:
//
//	mediatypes.ExtensionOf("/lib/Holiday.JPG") // "jpg"
//	mediatypes.Classify("jpg")                // mediatypes.MediaTypeImage
//	mediatypes.Classify(".MOV")               // mediatypes.MediaTypeVideo
//	mediatypes.Classify("txt")                // mediatypes.MediaTypeUnknown
package mediatypes

// Package artwork selects and caches release artwork.
//
// Resolution prefers artwork embedded in a track's own metadata and falls
// back to conventionally named images (cover, folder, ...) in the track's
// directory. Candidates must carry a recognized image file signature; name
// and extension alone are not trusted.
//
// The Cache names files by their content digest, so identical artwork is
// stored once no matter how many releases reference it.
package artwork

// Package tags normalizes format-specific audio metadata into one canonical
// record.
//
// Raw values arrive from the decoder as a bag keyed by (namespace, field)
// where the namespaces cover the decoder's cross-format properties, Vorbis
// comments, and ID3/iTunes frames. Normalize resolves each logical field
// independently with first-writer-wins priority across namespaces and
// tolerates malformed numeric and date values by leaving the field absent.
//
// The Decoder interface isolates the taglib dependency so the sync engine
// and its tests can substitute their own tag sources.
package tags

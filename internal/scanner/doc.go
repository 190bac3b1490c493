// Package scanner synchronizes the on-disk music collection with the
// library database. A run walks the library root, identifies each audio
// file by content digest, repairs moved paths, decodes and normalizes tags
// for new content, resolves artist and release entities, attaches artwork,
// and commits everything in a single transaction. Any failure rolls the
// whole batch back so the library never reflects a partial scan.
package scanner

// Package library persists the entity graph behind a music library: tracks,
// releases, artists, and the role links between them, backed by SQLite.
//
// The Store manages the database connection, schema migrations, bookkeeping
// metadata, and the read queries the CLI renders. The Resolver carries all
// entity resolution and mutation for one scan inside a single transaction;
// nothing a scan does is visible until that transaction commits.
//
// Entities reference each other by synthetic ids only, so the graph survives
// process restarts. Cascade rules live in the schema: deleting a release
// removes its tracks and artist links.
package library

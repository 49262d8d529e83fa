// Package session persists serialized authentication state between runs.
//
// Each account gets one file, session_<username>.json, holding whatever
// settings blob the Instagram client exports. The store never inspects the
// blob; validity is decided purely by file age against a fixed TTL
// (24 hours by default). A stale file is treated as absent on load and
// deleted lazily at the end of a run; there is no background eviction.
//
// Files are written atomically (temp file, sync, rename) and created with
// mode 0600 since the blob carries login cookies.
package session

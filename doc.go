// Package recruitprefs provides department-preference selection and application intake
// for recruitment drives.
//
// The core is PreferenceSelector, a two-slot (primary, secondary) picker over a fixed
// Catalog of options that never lets both slots hold the same option. Around it sit a
// submission Manager that validates, rate limits and persists applications through
// pluggable storage backends (PostgreSQL, SQLite, in-memory), optional caching (Redis,
// in-memory) and optional field encryption.
package recruitprefs

// Package journal records live captioning sessions in SQLite.
//
// Each session row tracks language, start and end times, the end reason, and
// the final transcript; every corrected final result is stored as an ordered
// row so a session can be reviewed after the fact. Schema changes bump the
// version in schema.go; users delete the database to adopt the new schema.
package journal

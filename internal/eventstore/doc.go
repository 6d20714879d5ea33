// Package eventstore is the opt-in run journal: every buildproj run appends a
// RunStarted event, one StageCompleted event per stage it reached and a
// closing RunFinished event to a SQLite database. The history command reads
// the journal back through Summarize.
package eventstore

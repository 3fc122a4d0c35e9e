// Package runlog keeps a queryable history of pipeline runs in JSONL files.
package runlog

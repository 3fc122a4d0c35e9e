package runlog

import "fmt"

// Options select and tune a Store.
type Options struct {
	// Backend is "jsonl", "jsonl-rotating" or "none".
	Backend    string
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Open creates the Store described by opts.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "", "none":
		return NopStore{}, nil
	case "jsonl":
		return NewJSONLStore(opts.Path)
	case "jsonl-rotating":
		return NewRotatingJSONLStore(opts.Path, opts.MaxSizeMB, opts.MaxBackups, opts.MaxAgeDays)
	default:
		return nil, fmt.Errorf("runlog: unknown backend %q", opts.Backend)
	}
}

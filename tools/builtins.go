package tools

import (
	"path/filepath"
)

// BuiltinOptions configures the stock tool set.
type BuiltinOptions struct {
	// DataDir holds contacts.json and calendar.json.
	DataDir string
	// Search overrides the web search backend; nil leaves the stub in place.
	Search SearchProvider
}

// RegisterBuiltins installs the stock tools into the registry.
func RegisterBuiltins(r *Registry, opts BuiltinOptions) error {
	contacts := &FileContactSource{Path: filepath.Join(opts.DataDir, "contacts.json")}
	calendar := &FileEventSource{Path: filepath.Join(opts.DataDir, "calendar.json")}

	if err := r.Register(WebSearchSchema(), WebSearchExecutor(opts.Search)); err != nil {
		return err
	}
	if err := r.Register(ReadWebpageSchema(), ReadWebpageExecutor(nil)); err != nil {
		return err
	}
	if err := r.Register(ReadFileSchema(), ReadFileExecutor()); err != nil {
		return err
	}
	if err := r.Register(FindContactSchema(), FindContactExecutor(contacts)); err != nil {
		return err
	}
	if err := r.Register(ListEventsSchema(), ListEventsExecutor(calendar)); err != nil {
		return err
	}
	return nil
}

package extract

import (
	"fmt"
	"path/filepath"

	"github.com/codestory/codestory/internal/lang"
)

// ForPath returns the Extractor registered for path's extension, and
// false if the extension is unrecognized — callers skip such files
// without error, per the extractor's unknown-extension contract.
func ForPath(path string) (Extractor, lang.Language, bool) {
	ext := filepath.Ext(path)
	l, ok := lang.LanguageForExtension(ext)
	if !ok {
		return nil, "", false
	}
	e, err := New(l)
	if err != nil {
		return nil, "", false
	}
	return e, l, true
}

// ExtractFile reads source for path, dispatches to the registered
// extractor, and returns its IndexResult. Unknown extensions return a
// nil result and no error (the caller should skip the file).
func ExtractFile(path string, source []byte) (*IndexResult, error) {
	e, l, ok := ForPath(path)
	if !ok {
		return nil, nil
	}
	result, err := e.Extract(FileInput{Path: path, Language: l, Source: source})
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}
	return result, nil
}

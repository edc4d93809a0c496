package mime

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// textRefinements narrows "text/plain" for the export formats we produce.
var textRefinements = map[string]string{
	".csv":  "text/csv",
	".json": "application/json",
	".tsv":  "text/tab-separated-values",
}

// Detect sniffs content and returns its MIME type and canonical extension.
// Plain text is refined by the filename's extension.
func Detect(content []byte, filename string) (string, string) {
	m := mimetype.Detect(content)
	contentType := m.String()
	ext := m.Extension()

	if strings.HasPrefix(contentType, "text/plain") {
		fileExt := strings.ToLower(filepath.Ext(filename))
		if refined, ok := textRefinements[fileExt]; ok {
			return strings.Replace(contentType, "text/plain", refined, 1), fileExt
		}
	}
	return contentType, ext
}

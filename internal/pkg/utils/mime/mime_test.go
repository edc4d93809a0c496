package mime

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect_Zip(t *testing.T) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	w, err := zw.Create("manifest.json")
	require.NoError(t, err)
	_, err = w.Write([]byte(`{"count":0}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	contentType, ext := Detect(buf.Bytes(), "export.zip")
	assert.Equal(t, "application/zip", contentType)
	assert.Equal(t, ".zip", ext)
}

func TestDetect_TextRefinement(t *testing.T) {
	contentType, ext := Detect([]byte("id,room\n1,abc\n"), "curves.csv")
	assert.Contains(t, contentType, "text/csv")
	assert.Equal(t, ".csv", ext)
}

func TestDetect_JSON(t *testing.T) {
	contentType, _ := Detect([]byte(`{"a":1}`), "manifest.json")
	assert.Contains(t, contentType, "application/json")
}

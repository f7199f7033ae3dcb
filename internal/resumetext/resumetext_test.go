package resumetext

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResume = `Jane Q Doe | Backend Engineer
jane.doe@example.com • +1 (555) 123-4567
https://linkedin.com/in/janedoe, https://github.com/janedoe.
https://janedoe.dev
Location: Pune, Maharashtra
Summary: Backend engineer building payment APIs in Go and Python.
Skills: Go, Python, PostgreSQL
`

func buildDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	doc := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Validate("cv.PDF", 1024))
	assert.NoError(t, Validate("cv.docx", MaxFileSize))
	assert.ErrorIs(t, Validate("cv.pdf", 0), ErrEmpty)
	assert.ErrorIs(t, Validate("cv.pdf", MaxFileSize+1), ErrTooLarge)
	assert.ErrorIs(t, Validate("cv.odt", 10), ErrUnsupportedFormat)
	assert.ErrorIs(t, Validate("cv", 10), ErrUnsupportedFormat)
}

func TestExtract(t *testing.T) {
	t.Parallel()

	text, err := Extract("cv.txt", []byte("  Python developer\n"))
	require.NoError(t, err)
	assert.Equal(t, "Python developer", text)

	text, err = Extract("cv.docx", buildDOCX(t, "Jane Doe", "Go &amp; Kafka"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nGo & Kafka", text)

	_, err = Extract("cv.pdf", []byte("not a pdf"))
	require.Error(t, err)

	_, err = Extract("cv.docx", []byte("not a zip"))
	require.Error(t, err)

	_, err = Extract("cv.txt", []byte{0xff, 0xfe, 0xfd})
	require.Error(t, err)

	_, err = Extract("cv.rtf", []byte("text"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseFields(t *testing.T) {
	t.Parallel()

	f := ParseFields(sampleResume)
	assert.Equal(t, "Jane", f.FirstName)
	assert.Equal(t, "Q", f.LastName)
	assert.Equal(t, "jane.doe@example.com", f.Email)
	assert.Equal(t, "+1 (555) 123-4567", f.Phone)
	assert.Equal(t, "https://linkedin.com/in/janedoe", f.LinkedIn)
	assert.Equal(t, "https://github.com/janedoe", f.GitHub)
	assert.Equal(t, "https://janedoe.dev", f.Portfolio)
	assert.Equal(t, "Pune", f.Location)
	assert.Equal(t, "Backend engineer building payment APIs in Go and Python.", f.Summary)
	assert.Equal(t, sampleResume, f.RawText)
	assert.Equal(t, "Jane Q", f.FullName())
}

func TestParseFieldsCityFallback(t *testing.T) {
	t.Parallel()

	f := ParseFields("Alex Kim\nBangalore • alex@example.org")
	assert.Equal(t, "Bengaluru, Karnataka, India", f.Location)
	assert.Equal(t, "Alex", f.FirstName)
	assert.Equal(t, "Kim", f.LastName)

	empty := ParseFields("")
	assert.Equal(t, Fields{}, empty)
}

func TestFieldsFromMap(t *testing.T) {
	t.Parallel()

	f, err := FieldsFromMap(map[string]any{
		"first_name": "Janet",
		"phone":      5551234567,
		"raw_text":   sampleResume,
		"skills":     []string{"go"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Janet", f.FirstName, "explicit values win over parsed ones")
	assert.Equal(t, "5551234567", f.Phone)
	assert.Equal(t, "jane.doe@example.com", f.Email)
	assert.Equal(t, "Q", f.LastName)

	f, err = FieldsFromMap(map[string]any{"email": "a@b.co"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", f.Email)
	assert.Empty(t, f.RawText)

	_, err = FieldsFromMap(map[string]any{"email": map[string]any{"nested": true}})
	require.Error(t, err)
}

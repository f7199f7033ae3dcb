// Package resumetext turns uploaded resume files into plain text and pulls
// contact details out of that text.
package resumetext

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// MaxFileSize is the largest accepted upload.
const MaxFileSize = 10 * 1024 * 1024

var (
	// ErrUnsupportedFormat is returned for extensions other than .pdf, .docx
	// and .txt.
	ErrUnsupportedFormat = errors.New("unsupported resume format")
	// ErrTooLarge is returned for files above MaxFileSize.
	ErrTooLarge = errors.New("resume file too large")
	// ErrEmpty is returned for zero-length files.
	ErrEmpty = errors.New("resume file is empty")
)

var allowedExtensions = []string{".pdf", ".docx", ".txt"}

// AllowedExtensions lists the accepted file extensions.
func AllowedExtensions() []string {
	return append([]string(nil), allowedExtensions...)
}

// Validate checks an upload's name and size before it is read.
func Validate(name string, size int64) error {
	if size == 0 {
		return ErrEmpty
	}
	if size > MaxFileSize {
		return fmt.Errorf("%w: %.2f MB exceeds %d MB", ErrTooLarge, float64(size)/1024/1024, MaxFileSize/1024/1024)
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range allowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w %q, allowed: %s", ErrUnsupportedFormat, ext, strings.Join(allowedExtensions, ", "))
}

// Extract returns the text of a resume file, choosing the reader by
// extension.
func Extract(name string, data []byte) (string, error) {
	if err := Validate(name, int64(len(data))); err != nil {
		return "", err
	}

	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx":
		text, err = extractDOCX(data)
	default:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("read %s: not valid utf-8 text", name)
		}
		text = string(data)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return strings.TrimSpace(text), nil
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("pdf text: %w", err)
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open document.xml: %w", err)
		}
		defer rc.Close()
		return paragraphs(rc)
	}
	return "", errors.New("document.xml not found")
}

// paragraphs concatenates w:t runs, one line per w:p.
func paragraphs(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.EndElement:
			if (t.Name.Local == "p" || t.Name.Local == "br") && buf.Len() > 0 {
				buf.WriteString("\n")
			}
		}
	}
	return buf.String(), nil
}

package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"resume-screener/internal/shared/storage/object"
)

// ErrUnsupported is returned for files that are not PDF, DOCX or plain text.
var ErrUnsupported = errors.New("unsupported file type")

// ErrEmpty is returned when a file yields no text.
var ErrEmpty = errors.New("no text extracted")

// SupportedExtensions lists the accepted résumé file extensions.
var SupportedExtensions = []string{".pdf", ".docx", ".txt"}

const (
	docxBody      = "word/document.xml"
	extractedExt  = ".extracted.txt"
	extractedMime = "text/plain; charset=utf-8"
)

type format struct {
	mime    string
	ext     string
	extract func([]byte) (string, error)
}

var formats = []format{
	{mime: "application/pdf", ext: ".pdf", extract: pdfText},
	{mime: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", ext: ".docx", extract: docxText},
	{mime: "text/plain", ext: ".txt", extract: plainText},
}

// ExtractText reads a stored upload, extracts its text and stores the text next
// to it under <key>.extracted.txt. It returns the text and the derived key.
func ExtractText(ctx context.Context, store object.ObjectStore, fileKey, mimeType, fileName string) (string, string, error) {
	raw, err := readObject(ctx, store, fileKey)
	if err != nil {
		return "", "", fmt.Errorf("extract %s: %w", fileKey, err)
	}
	text, err := ExtractTextFromBytes(ctx, raw, mimeType, fileName)
	if err != nil {
		return "", "", fmt.Errorf("extract %s: %w", fileKey, err)
	}
	derived := fileKey + extractedExt
	if _, err := store.SaveWithKey(ctx, derived, extractedMime, strings.NewReader(text)); err != nil {
		return "", "", fmt.Errorf("extract %s: save text: %w", fileKey, err)
	}
	return text, derived, nil
}

// ExtractTextFromBytes extracts text from an in-memory upload. A specific MIME
// type wins; generic or missing types fall back to the file extension.
func ExtractTextFromBytes(ctx context.Context, data []byte, mimeType, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, ok := resolveFormat(mimeType, fileName, data)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, describeType(mimeType, fileName))
	}
	text, err := f.extract(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", f.ext, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmpty
	}
	return text, nil
}

func readObject(ctx context.Context, store object.ObjectStore, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}

func resolveFormat(mimeType, fileName string, data []byte) (format, bool) {
	mime := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	for _, f := range formats {
		if f.mime == mime {
			return f, true
		}
	}
	// Browsers and sniffers report DOCX as a zip archive.
	if mime == "application/zip" && zipHas(data, docxBody) {
		return formats[1], true
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	for _, f := range formats {
		if f.ext == ext {
			return f, true
		}
	}
	return format{}, false
}

func describeType(mimeType, fileName string) string {
	if m := strings.TrimSpace(strings.Split(mimeType, ";")[0]); m != "" {
		return m
	}
	if ext := filepath.Ext(fileName); ext != "" {
		return ext
	}
	return "unknown"
}

func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return string(out), nil
}

func plainText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", errors.New("text is not valid utf-8")
	}
	return string(data), nil
}

func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	entry := zipEntry(zr, docxBody)
	if entry == nil {
		return "", fmt.Errorf("open docx: %s missing", docxBody)
	}
	rc, err := entry.Open()
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer rc.Close()
	return paragraphs(xml.NewDecoder(rc))
}

// paragraphs joins the character data of a WordprocessingML body, one line per
// paragraph or explicit break.
func paragraphs(dec *xml.Decoder) (string, error) {
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse docx: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.EndElement:
			if (t.Name.Local == "p" || t.Name.Local == "br") && b.Len() > 0 {
				b.WriteByte('\n')
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func zipHas(data []byte, name string) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	return err == nil && zipEntry(zr, name) != nil
}

func zipEntry(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == name {
			return f
		}
	}
	return nil
}

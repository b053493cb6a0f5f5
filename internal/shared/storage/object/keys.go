package object

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const (
	sniffLen          = 512
	maxFileNameLength = 200
)

// ErrInvalidFileName is returned for names that are empty or try to escape the owner directory.
var ErrInvalidFileName = errors.New("invalid file name")

var extensionTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain; charset=utf-8",
}

// NewKey builds the key of a new upload: the hashed owner, then a random id
// joined to the sanitized file name. Owner IDs never appear in keys verbatim.
func NewKey(owner, fileName string) (string, error) {
	name, err := sanitizeFileName(fileName)
	if err != nil {
		return "", err
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return path.Join(ownerDir(owner), id+"_"+name), nil
}

func ownerDir(owner string) string {
	sum := sha256.Sum256([]byte(owner))
	return hex.EncodeToString(sum[:])
}

// sanitizeFileName flattens separators and drops control runes. Long names keep
// their tail so the extension survives.
func sanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	}
	clean := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if clean == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	}
	if r := []rune(clean); len(r) > maxFileNameLength {
		clean = string(r[len(r)-maxFileNameLength:])
	}
	return clean, nil
}

// Sniff reads the head of r for content detection and returns a reader that
// replays it before the rest of r.
func Sniff(r io.Reader) ([]byte, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, nil, fmt.Errorf("read head: %w", err)
	}
	head = head[:n]
	return head, io.MultiReader(bytes.NewReader(head), r), nil
}

// DetectContentType prefers the résumé formats named by the extension, since
// content sniffing reports DOCX as a plain zip archive.
func DetectContentType(fileName string, head []byte) string {
	if ct, ok := extensionTypes[strings.ToLower(filepath.Ext(fileName))]; ok {
		return ct
	}
	return http.DetectContentType(head)
}

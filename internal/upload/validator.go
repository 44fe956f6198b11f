package upload

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/AyaSox/Recruitment-system-sub000/pkg/config"
)

// FileType declares what kind of upload is being validated.
type FileType string

const (
	FileTypeResume   FileType = "resume"
	FileTypeImage    FileType = "image"
	FileTypeDocument FileType = "document"
)

// ValidationResult accumulates every failed check for an upload. Checks do
// not short-circuit so the caller can report all problems at once.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

func (r *ValidationResult) add(msg string) {
	r.Errors = append(r.Errors, msg)
}

var extensionAllowList = map[FileType][]string{
	FileTypeResume:   {".pdf", ".doc", ".docx"},
	FileTypeImage:    {".jpg", ".jpeg", ".png", ".gif"},
	FileTypeDocument: {".pdf", ".doc", ".docx", ".jpg", ".jpeg", ".png", ".gif", ".txt", ".rtf"},
}

var mimeAllowList = map[FileType][]string{
	FileTypeResume: {
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	},
	FileTypeImage: {
		"image/jpeg",
		"image/png",
		"image/gif",
	},
	FileTypeDocument: {
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"image/jpeg",
		"image/png",
		"image/gif",
		"text/plain",
		"application/rtf",
		"text/rtf",
	},
}

// signature is a byte prefix that identifies a file format. Alternates cover
// formats with several valid markers (ZIP local headers 03/05/07).
type signature struct {
	name     string
	prefixes [][]byte
}

var (
	sigPDF = signature{"pdf", [][]byte{{0x25, 0x50, 0x44, 0x46}}}
	sigDOC = signature{"doc", [][]byte{{0xD0, 0xCF, 0x11, 0xE0}}}
	sigZIP = signature{"zip", [][]byte{
		{0x50, 0x4B, 0x03},
		{0x50, 0x4B, 0x05},
		{0x50, 0x4B, 0x07},
	}}
	sigJPEG = signature{"jpeg", [][]byte{{0xFF, 0xD8, 0xFF}}}
	sigPNG  = signature{"png", [][]byte{{0x89, 0x50, 0x4E, 0x47}}}
	sigGIF  = signature{"gif", [][]byte{{0x47, 0x49, 0x46, 0x38}}}
	sigRTF  = signature{"rtf", [][]byte{{0x7B, 0x5C, 0x72, 0x74, 0x66, 0x31, 0x2E, 0x30}}}
)

var signatureAllowList = map[FileType][]signature{
	FileTypeResume:   {sigPDF, sigDOC, sigZIP},
	FileTypeImage:    {sigJPEG, sigPNG, sigGIF},
	FileTypeDocument: {sigPDF, sigDOC, sigZIP, sigJPEG, sigPNG, sigGIF, sigRTF},
}

// invalidFilenameChars are rejected regardless of the host filesystem so
// stored names stay portable.
const invalidFilenameChars = `<>:"/\|?*`

const sniffLen = 8

// Validator gatekeeps uploaded files before they reach storage. Extension
// and declared MIME type are attacker-controlled metadata; the binary
// signature check is the only check that inspects actual content.
type Validator struct {
	maxBytes map[FileType]int64
}

// NewValidator builds a validator from upload configuration.
func NewValidator(cfg config.UploadsConfig) *Validator {
	maxResume := cfg.MaxResumeBytes
	if maxResume <= 0 {
		maxResume = 5 * 1024 * 1024
	}
	maxImage := cfg.MaxImageBytes
	if maxImage <= 0 {
		maxImage = 2 * 1024 * 1024
	}
	maxDocument := cfg.MaxDocumentBytes
	if maxDocument <= 0 {
		maxDocument = 10 * 1024 * 1024
	}
	return &Validator{
		maxBytes: map[FileType]int64{
			FileTypeResume:   maxResume,
			FileTypeImage:    maxImage,
			FileTypeDocument: maxDocument,
		},
	}
}

// Validate runs every intake check against the upload and returns the
// accumulated result. The same inputs always yield the same result.
func (v *Validator) Validate(filename string, size int64, declaredMIME string, content []byte, fileType FileType) ValidationResult {
	result := ValidationResult{}

	limit, known := v.maxBytes[fileType]
	if !known {
		result.add(fmt.Sprintf("unsupported file type %q", fileType))
		return result
	}

	if size <= 0 || len(content) == 0 {
		result.add("file is empty or missing")
	}
	if size > limit {
		result.add(fmt.Sprintf("file size %d exceeds the %d byte limit for %s uploads", size, limit, fileType))
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !contains(extensionAllowList[fileType], ext) {
		result.add(fmt.Sprintf("file extension %q is not allowed for %s uploads", ext, fileType))
	}

	// An absent content-type header passes; only a present, disallowed one fails.
	if declaredMIME != "" {
		mime := strings.ToLower(strings.TrimSpace(declaredMIME))
		if idx := strings.Index(mime, ";"); idx >= 0 {
			mime = strings.TrimSpace(mime[:idx])
		}
		if !contains(mimeAllowList[fileType], mime) {
			result.add(fmt.Sprintf("content type %q is not allowed for %s uploads", declaredMIME, fileType))
		}
	}

	if filename == "" || strings.ContainsAny(filename, invalidFilenameChars) || hasControlChars(filename) {
		result.add("filename contains invalid characters")
	}

	if len(content) > 0 && !matchesSignature(content, fileType, ext) {
		result.add(fmt.Sprintf("file content does not match a known %s format signature", fileType))
	}

	result.Valid = len(result.Errors) == 0
	return result
}

func matchesSignature(content []byte, fileType FileType, ext string) bool {
	// Plain text carries no magic number; only the document type admits it.
	if fileType == FileTypeDocument && ext == ".txt" {
		return true
	}
	head := content
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	for _, sig := range signatureAllowList[fileType] {
		for _, prefix := range sig.prefixes {
			if bytes.HasPrefix(head, prefix) {
				return true
			}
		}
	}
	return false
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func hasControlChars(name string) bool {
	for _, r := range name {
		if r < 0x20 || r == 0x7F {
			return true
		}
	}
	return false
}

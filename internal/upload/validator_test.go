package upload

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AyaSox/Recruitment-system-sub000/pkg/config"
)

func newValidator() *Validator {
	return NewValidator(config.UploadsConfig{
		MaxResumeBytes:   5 * 1024 * 1024,
		MaxImageBytes:    2 * 1024 * 1024,
		MaxDocumentBytes: 10 * 1024 * 1024,
	})
}

func pdfBytes() []byte {
	return append([]byte("%PDF-1.7"), bytes.Repeat([]byte{0x20}, 64)...)
}

func TestValidateAcceptsWellFormedPDFResume(t *testing.T) {
	v := newValidator()
	content := pdfBytes()
	result := v.Validate("resume.pdf", int64(len(content)), "application/pdf", content, FileTypeResume)
	require.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidateRejectsEmptyFile(t *testing.T) {
	v := newValidator()
	result := v.Validate("resume.pdf", 0, "application/pdf", nil, FileTypeResume)
	require.False(t, result.Valid)
	assert.Contains(t, result.Errors, "file is empty or missing")
}

func TestValidateRejectsOversizedResume(t *testing.T) {
	v := newValidator()
	content := pdfBytes()
	result := v.Validate("resume.pdf", 6*1024*1024, "application/pdf", content, FileTypeResume)
	require.False(t, result.Valid)
	assert.Len(t, result.Errors, 1)
}

func TestValidateSignatureBeatsExtension(t *testing.T) {
	// An executable renamed to .pdf: extension and declared MIME pass, the
	// content sniff must still fail.
	v := newValidator()
	content := append([]byte{0x4D, 0x5A, 0x90, 0x00}, bytes.Repeat([]byte{0x00}, 64)...)
	result := v.Validate("resume.pdf", int64(len(content)), "application/pdf", content, FileTypeResume)
	require.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "does not match a known resume format signature")
}

func TestValidateAccumulatesAllFailures(t *testing.T) {
	v := newValidator()
	content := []byte{0x00, 0x01}
	result := v.Validate("bad|name.exe", 6*1024*1024, "application/octet-stream", content, FileTypeResume)
	require.False(t, result.Valid)
	// oversized + extension + mime + filename + signature
	assert.Len(t, result.Errors, 5)
}

func TestValidateIsDeterministic(t *testing.T) {
	v := newValidator()
	content := []byte{0x00, 0x01, 0x02}
	first := v.Validate("resume.pdf", int64(len(content)), "", content, FileTypeResume)
	second := v.Validate("resume.pdf", int64(len(content)), "", content, FileTypeResume)
	assert.Equal(t, first, second)
}

func TestValidateAbsentContentTypePasses(t *testing.T) {
	v := newValidator()
	content := pdfBytes()
	result := v.Validate("resume.pdf", int64(len(content)), "", content, FileTypeResume)
	assert.True(t, result.Valid)
}

func TestValidateDocxZipSignatures(t *testing.T) {
	v := newValidator()
	for _, third := range []byte{0x03, 0x05, 0x07} {
		content := append([]byte{0x50, 0x4B, third, 0x04}, bytes.Repeat([]byte{0x00}, 32)...)
		result := v.Validate("resume.docx", int64(len(content)), "", content, FileTypeResume)
		assert.True(t, result.Valid, "third byte 0x%02X should be accepted", third)
	}
}

func TestValidateImageSignatures(t *testing.T) {
	v := newValidator()
	cases := map[string][]byte{
		"photo.jpg": {0xFF, 0xD8, 0xFF, 0xE0},
		"photo.png": {0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
		"photo.gif": {0x47, 0x49, 0x46, 0x38, 0x39, 0x61},
	}
	for name, head := range cases {
		content := append(head, bytes.Repeat([]byte{0x00}, 32)...)
		result := v.Validate(name, int64(len(content)), "", content, FileTypeImage)
		assert.True(t, result.Valid, "%s should be accepted", name)
	}
}

func TestValidateRTFDocument(t *testing.T) {
	v := newValidator()
	content := []byte(`{\rtf1.0 hello}`)
	result := v.Validate("notes.rtf", int64(len(content)), "application/rtf", content, FileTypeDocument)
	assert.True(t, result.Valid)
}

func TestValidatePlainTextDocumentSkipsSniff(t *testing.T) {
	v := newValidator()
	content := []byte("plain text resume")
	result := v.Validate("notes.txt", int64(len(content)), "text/plain", content, FileTypeDocument)
	assert.True(t, result.Valid)
}

func TestValidateRejectsImageAsResume(t *testing.T) {
	v := newValidator()
	content := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0x00}, 32)...)
	result := v.Validate("photo.jpg", int64(len(content)), "image/jpeg", content, FileTypeResume)
	require.False(t, result.Valid)
}

func TestValidateMIMEParameterStripped(t *testing.T) {
	v := newValidator()
	content := []byte("plain text")
	result := v.Validate("notes.txt", int64(len(content)), "text/plain; charset=utf-8", content, FileTypeDocument)
	assert.True(t, result.Valid)
}

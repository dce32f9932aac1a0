package security

import (
	"bytes"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
)

// FileKind selects the whitelist a file is validated against.
type FileKind int

const (
	KindImage FileKind = iota
	KindDocument
)

// FileValidationResult contains the result of file validation
type FileValidationResult struct {
	Valid        bool
	Extension    string
	DetectedMIME string
	Error        string
}

// Magic byte prefixes per lowercase extension
var magicBytes = map[string][][]byte{
	".jpg":  {{0xFF, 0xD8, 0xFF}},
	".jpeg": {{0xFF, 0xD8, 0xFF}},
	".png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	".gif":  {{0x47, 0x49, 0x46, 0x38, 0x37, 0x61}, {0x47, 0x49, 0x46, 0x38, 0x39, 0x61}}, // GIF87a & GIF89a
	".webp": {{0x52, 0x49, 0x46, 0x46}},                                                   // RIFF
	".pdf":  {{0x25, 0x50, 0x44, 0x46}},                                                   // %PDF
	".doc":  {{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}},                           // OLE
	".docx": {{0x50, 0x4B, 0x03, 0x04}},                                                   // ZIP
	".txt":  {},
}

var allowedExtensions = map[FileKind]map[string]bool{
	KindImage: {
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".gif":  true,
		".webp": true,
	},
	KindDocument: {
		".pdf":  true,
		".doc":  true,
		".docx": true,
		".txt":  true,
	},
}

// application/octet-stream is deliberately absent
var strictMIMETypes = map[string]bool{
	"image/jpeg":         true,
	"image/png":          true,
	"image/gif":          true,
	"image/webp":         true,
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"text/plain":      true,
	"application/zip": true,
}

// ValidateFile checks the extension whitelist for kind, the magic bytes and the MIME type.
// An empty detectedMIME is sniffed from data.
func ValidateFile(kind FileKind, filename string, data []byte, detectedMIME string) FileValidationResult {
	if detectedMIME == "" {
		detectedMIME = DetectMIME(data)
	}
	result := FileValidationResult{DetectedMIME: detectedMIME}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		result.Error = "file has no extension"
		return result
	}
	result.Extension = ext

	if !allowedExtensions[kind][ext] {
		result.Error = "file extension not allowed: " + ext
		return result
	}

	if ext != ".txt" && !validateMagicBytes(ext, data) {
		result.Error = "file content does not match extension"
		return result
	}

	if detectedMIME == "application/octet-stream" {
		// Word documents are often sniffed as octet-stream; their magic bytes already matched
		if ext != ".docx" && ext != ".doc" {
			result.Error = "binary files not allowed; file type could not be determined"
			return result
		}
	} else if !strictMIMETypes[detectedMIME] {
		result.Error = "MIME type not allowed: " + detectedMIME
		return result
	}

	result.Valid = true
	return result
}

// DetectMIME sniffs the content type without parameters.
func DetectMIME(data []byte) string {
	mime := http.DetectContentType(data)
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	return strings.TrimSpace(mime)
}

func validateMagicBytes(ext string, data []byte) bool {
	if len(data) < 4 {
		return false
	}

	signatures, ok := magicBytes[ext]
	if !ok {
		return false
	}
	if len(signatures) == 0 {
		return true
	}

	for _, sig := range signatures {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

// ValidateFileExtension checks only the extension (for quick pre-validation)
func ValidateFileExtension(kind FileKind, filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return errors.New("file has no extension")
	}
	if !allowedExtensions[kind][ext] {
		return errors.New("file extension not allowed: " + ext)
	}
	return nil
}

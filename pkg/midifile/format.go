package midifile

import (
	"path/filepath"
	"strings"
)

// Format represents a file format
type Format string

const (
	FormatMIDI    Format = "midi"
	FormatUnknown Format = "unknown"
)

// Extension is appended to generated file names
const Extension = ".mid"

// DetectFormat detects the format of a file based on extension
func DetectFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mid", ".midi":
		return FormatMIDI
	default:
		return FormatUnknown
	}
}

// IsMIDI checks for the "MThd" header chunk signature
func IsMIDI(data []byte) bool {
	return len(data) >= 4 && string(data[:4]) == "MThd"
}

// EnsureExtension appends .mid unless the name already ends with it
func EnsureExtension(name string) string {
	if strings.HasSuffix(name, Extension) {
		return name
	}
	return name + Extension
}

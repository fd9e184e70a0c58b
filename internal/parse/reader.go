package parse

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"

	"github.com/bladeworks/qloft/internal/blade"
)

// readLines reads a text file and returns its lines decoded to UTF-8.
// Blade and airfoil files come from external authoring tools on assorted
// platforms, so the encoding is detected rather than assumed.
func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &blade.IOError{Path: path, Err: err}
	}
	return splitLines(decodeText(data)), nil
}

// decodeText converts raw file bytes to a UTF-8 string using charset
// detection, falling back to the raw bytes when detection or decoding
// fails (ASCII content always survives the fallback).
func decodeText(data []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return string(data)
	}

	reader, err := charset.NewReaderLabel(strings.ToLower(result.Charset), bytes.NewReader(data))
	if err != nil {
		return string(data)
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

func splitLines(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	// Strip a UTF-8 BOM the decoder may have left on the first line.
	if len(lines) > 0 {
		lines[0] = strings.TrimPrefix(lines[0], "\ufeff")
	}
	return lines
}

package sfx

import (
	"io"
	"path/filepath"
	"sort"
	"strings"
)

type decodeFunc func(io.ReadSeeker) (*Sample, error)

var decoders = map[string]decodeFunc{
	".mp3":  func(r io.ReadSeeker) (*Sample, error) { return decodeMP3(r) },
	".wav":  decodeWAV,
	".flac": func(r io.ReadSeeker) (*Sample, error) { return decodeFLAC(r) },
	".ogg":  func(r io.ReadSeeker) (*Sample, error) { return decodeOGG(r) },
}

// IsSupportedExt reports whether a chime sample with extension ext can be
// decoded.
func IsSupportedExt(ext string) bool {
	_, ok := decoders[strings.ToLower(ext)]
	return ok
}

// IsSupportedPath reports whether path names a decodable sample.
func IsSupportedPath(path string) bool {
	return IsSupportedExt(filepath.Ext(path))
}

// SupportedExtsList returns the decodable extensions for messages.
func SupportedExtsList() string {
	exts := make([]string, 0, len(decoders))
	for ext := range decoders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}

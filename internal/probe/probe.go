// Package probe classifies library files into the type identifiers an item
// provider declares for them.
package probe

import (
	"path/filepath"
	"strings"
)

// Uniform type identifiers declared for video assets.
const (
	TypeQuickTimeMovie = "com.apple.quicktime-movie"
	TypeMPEG4          = "public.mpeg-4"
	TypeM4V            = "com.apple.m4v-video"
	TypeAVI            = "public.avi"
	TypeMPEG2TS        = "public.mpeg-2-transport-stream"
	TypeMovie          = "public.movie"
)

var byExt = map[string]string{
	".mov":  TypeQuickTimeMovie,
	".qt":   TypeQuickTimeMovie,
	".mp4":  TypeMPEG4,
	".m4v":  TypeM4V,
	".avi":  TypeAVI,
	".ts":   TypeMPEG2TS,
	".m2ts": TypeMPEG2TS,
	".mkv":  TypeMovie,
	".webm": TypeMovie,
}

// IsVideo reports whether path has a recognised video extension.
func IsVideo(path string) bool {
	_, ok := byExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// TypeIdentifiers returns the identifiers for path, most specific first, ending
// with the generic movie type. Non-video files get none.
func TypeIdentifiers(path string) []string {
	t, ok := byExt[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil
	}
	if t == TypeMovie {
		return []string{TypeMovie}
	}
	return []string{t, TypeMovie}
}

// Extension returns the file extension conventionally used for typeID, or "" if unknown.
func Extension(typeID string) string {
	switch typeID {
	case TypeQuickTimeMovie:
		return ".mov"
	case TypeMPEG4:
		return ".mp4"
	case TypeM4V:
		return ".m4v"
	case TypeAVI:
		return ".avi"
	case TypeMPEG2TS:
		return ".ts"
	}
	return ""
}

package router

import (
	"net/url"
	"strings"
)

// SegmentKind classifies one path segment of a route pattern.
type SegmentKind int

const (
	Static SegmentKind = iota
	Root
	Dynamic
	Splat
)

func (k SegmentKind) String() string {
	switch k {
	case Root:
		return "root"
	case Dynamic:
		return "dynamic"
	case Splat:
		return "splat"
	default:
		return "static"
	}
}

// SplatKey is the params key used by an unnamed splat segment.
const SplatKey = "*"

// Segmentize splits a path on "/" after stripping leading and trailing
// slashes. The root path yields a single empty segment.
func Segmentize(uri string) []string {
	return strings.Split(StripSlashes(uri), "/")
}

// StripSlashes removes every leading and trailing "/".
func StripSlashes(s string) string {
	return strings.Trim(s, "/")
}

// Classify reports the kind of a pattern segment and, for dynamic and splat
// segments, the parameter name it binds.
func Classify(segment string) (SegmentKind, string) {
	switch {
	case segment == "":
		return Root, ""
	case len(segment) > 1 && segment[0] == ':':
		return Dynamic, segment[1:]
	case segment[0] == '*':
		if segment == "*" {
			return Splat, SplatKey
		}
		return Splat, segment[1:]
	default:
		return Static, ""
	}
}

// decodeSegment unescapes a uri segment. Malformed escapes keep the raw text.
func decodeSegment(segment string) string {
	if v, err := url.PathUnescape(segment); err == nil {
		return v
	}
	return segment
}

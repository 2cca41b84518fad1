package tlog

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Source is a bitmask identifying the subsystem that wrote a line.
type Source uint32

const (
	SourceNone   Source = 0x00000000
	SourceSDL    Source = 0x00000001
	SourceVulkan Source = 0x00000002

	SourceDebug Source = 0x40000000
	SourceAll   Source = 0x7fffffff
)

func (s Source) String() string {
	switch s {
	case SourceSDL:
		return "SDL"
	case SourceVulkan:
		return "Vulkan"
	case SourceDebug:
		return "Debug"
	default:
		return "UNKNOWN"
	}
}

var sourceNames = map[string]Source{
	"none":   SourceNone,
	"sdl":    SourceSDL,
	"vulkan": SourceVulkan,
	"debug":  SourceDebug,
	"all":    SourceAll,
}

// ParseSources turns a comma separated list such as "sdl,vulkan" into a
// mask. Names are case insensitive; an empty list is SourceNone.
func ParseSources(list string) (Source, error) {
	var mask Source
	for _, name := range strings.Split(list, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		src, ok := sourceNames[name]
		if !ok {
			return SourceNone, errors.Newf("unknown log source %q", name)
		}
		mask |= src
	}
	return mask, nil
}

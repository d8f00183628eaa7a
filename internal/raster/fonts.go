package raster

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gosmallcaps"
)

// Families the text tool offers. Text is always set bold.
const (
	FamilySans      = "Go Bold"
	FamilyMono      = "Go Mono Bold"
	FamilySmallCaps = "Go Smallcaps"
)

var fontData = map[string][]byte{
	FamilySans:      gobold.TTF,
	FamilyMono:      gomonobold.TTF,
	FamilySmallCaps: gosmallcaps.TTF,
}

var (
	fontMu      sync.Mutex
	fontSources = map[string]*text.FontSource{}
)

// resolveFamily maps CSS-like family names onto the embedded fonts.
func resolveFamily(family string) string {
	f := strings.ToLower(family)
	switch {
	case strings.Contains(f, "mono"), strings.Contains(f, "courier"), strings.Contains(f, "code"):
		return FamilyMono
	case strings.Contains(f, "caps"), strings.Contains(f, "fantasy"), strings.Contains(f, "impact"):
		return FamilySmallCaps
	default:
		return FamilySans
	}
}

// fontSource returns the parsed font for a family, parsing it on first use.
func fontSource(family string) (*text.FontSource, error) {
	name := resolveFamily(family)
	fontMu.Lock()
	defer fontMu.Unlock()
	if src, ok := fontSources[name]; ok {
		return src, nil
	}
	src, err := text.NewFontSource(fontData[name])
	if err != nil {
		return nil, fmt.Errorf("parse font %q: %w", name, err)
	}
	fontSources[name] = src
	return src, nil
}

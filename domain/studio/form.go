package studio

import (
	"image/color"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/prasetyowira/qrstudio/constant"
)

// Level is a QR error-correction level.
type Level string

const (
	LevelLow      Level = "L"
	LevelMedium   Level = "M"
	LevelQuartile Level = "Q"
	LevelHigh     Level = "H"
)

// Size bounds and defaults, in pixels.
const (
	MinSize     = 100
	MaxSize     = 1200
	DefaultSize = 280
)

// Fallbacks used by Generate when a field is empty or invalid.
const (
	FallbackForeground = "#000000"
	FallbackBackground = "#ffffff"
	FallbackLevel      = LevelMedium
)

// Field values restored by Clear.
const (
	ResetForeground = "#0b1220"
	ResetBackground = "#ffffff"
	ResetLevel      = LevelMedium
)

const (
	maxLabelRunes   = 60
	defaultFilename = "qr"
	filenameExt     = ".png"
	replacementRune = '_'
)

// Form is the raw, user-edited form state.
type Form struct {
	Text       string `json:"text"`
	Size       string `json:"size"`
	Foreground string `json:"foreground"`
	Background string `json:"background"`
	Level      string `json:"level"`
}

// DefaultForm returns the form as it looks after a reset.
func DefaultForm() Form {
	return Form{
		Size:       strconv.Itoa(DefaultSize),
		Foreground: ResetForeground,
		Background: ResetBackground,
		Level:      string(ResetLevel),
	}
}

// Options are validated encoder inputs.
type Options struct {
	Text       string
	Size       int
	Foreground string
	Background string
	Level      Level
}

// Options validates the form. The only rejected input is empty text; every
// other field falls back to a default.
func (f Form) Options() (Options, error) {
	text := strings.TrimSpace(f.Text)
	if text == "" {
		return Options{}, ErrEmptyText
	}

	return Options{
		Text:       text,
		Size:       ClampSize(f.Size),
		Foreground: normalizeColor(f.Foreground, FallbackForeground),
		Background: normalizeColor(f.Background, FallbackBackground),
		Level:      ParseLevel(f.Level),
	}, nil
}

// ClampSize parses the leading integer of raw and clamps it into
// [MinSize, MaxSize]. Unparsable input and zero yield DefaultSize.
func ClampSize(raw string) int {
	size, ok := leadingInt(raw)
	if !ok || size == 0 {
		size = DefaultSize
	}
	if size < MinSize {
		return MinSize
	}
	if size > MaxSize {
		return MaxSize
	}
	return size
}

// leadingInt reads an optionally signed run of digits after leading
// whitespace, ignoring whatever follows ("300px" is 300). A 0x prefix switches
// to hexadecimal ("0x1A" is 26).
func leadingInt(raw string) (int, bool) {
	s := strings.TrimLeft(raw, " \t\r\n")
	end := 0
	negative := false
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		negative = s[end] == '-'
		end++
	}

	base, isDigit := 10, isDecimal
	if len(s) >= end+2 && s[end] == '0' && (s[end+1] == 'x' || s[end+1] == 'X') {
		base, isDigit = 16, isHex
		end += 2
	}

	digits := end
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	if end == digits {
		return 0, false
	}

	n, err := strconv.ParseInt(s[digits:end], base, strconv.IntSize)
	if err != nil {
		// overflow
		if negative {
			return MinSize, true
		}
		return MaxSize, true
	}
	if negative {
		n = -n
	}
	return int(n), true
}

func isDecimal(b byte) bool {
	return b >= '0' && b <= '9'
}

func isHex(b byte) bool {
	return isDecimal(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// ParseLevel maps a level name to a Level, defaulting to FallbackLevel.
func ParseLevel(raw string) Level {
	switch Level(strings.ToUpper(strings.TrimSpace(raw))) {
	case LevelLow:
		return LevelLow
	case LevelMedium:
		return LevelMedium
	case LevelQuartile:
		return LevelQuartile
	case LevelHigh:
		return LevelHigh
	}
	return FallbackLevel
}

// ParseHexColor parses "#rgb" or "#rrggbb" (the leading '#' is optional).
func ParseHexColor(raw string) (color.RGBA, bool) {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return color.RGBA{}, false
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}

func normalizeColor(raw, fallback string) string {
	if _, ok := ParseHexColor(raw); !ok {
		return fallback
	}
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	return strings.ToLower(s)
}

// DownloadFilename derives the saved file name from the form text.
func DownloadFilename(text string) string {
	if text == "" {
		text = defaultFilename
	}

	var b strings.Builder
	n := 0
	for _, r := range text {
		if n == maxLabelRunes {
			break
		}
		if isFilenameRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(replacementRune)
		}
		n++
	}

	name := b.String()
	if name == "" {
		name = defaultFilename
	}
	return name + filenameExt
}

func isFilenameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '-', r == '.':
		return true
	}
	return false
}

// MetaText is the one-line description shown under the preview.
func MetaText(text string) string {
	if text == "" {
		return constant.MsgNoContent
	}
	if utf8.RuneCountInString(text) <= maxLabelRunes {
		return constant.MsgPreviewing + text
	}
	runes := []rune(text)
	return constant.MsgPreviewing + string(runes[:maxLabelRunes]) + "..."
}

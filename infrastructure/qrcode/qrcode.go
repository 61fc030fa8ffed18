package qrcode

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/prasetyowira/qrstudio/constant"
	"github.com/prasetyowira/qrstudio/domain/studio"
	"github.com/prasetyowira/qrstudio/infrastructure/logger"
	"github.com/skip2/go-qrcode"
)

const (
	dataURIPrefix = "data:image/png;base64,"

	// margin is the quiet zone around the symbol, in modules
	margin = 1
	// fallbackScale is the module size in pixels when the requested size
	// cannot fit the symbol
	fallbackScale = 4
)

// Generator renders QR codes as PNG data URIs
type Generator struct{}

// NewGenerator creates a new QR code generator
func NewGenerator() *Generator {
	return &Generator{}
}

// Encode implements studio.Encoder.
func (g *Generator) Encode(ctx context.Context, opts studio.Options) (string, error) {
	data, err := g.PNG(ctx, opts)
	if err != nil {
		return "", err
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(data), nil
}

// PNG renders opts as PNG bytes. The image is opts.Size pixels square unless
// the symbol needs more pixels than that.
func (g *Generator) PNG(ctx context.Context, opts studio.Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	qr, err := qrcode.New(opts.Text, recoveryLevel(opts.Level))
	if err != nil {
		logger.CtxWarn(ctx, "QR code rejected the content", logger.LoggerInfo{
			ContextFunction: constant.CtxEncode,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeQRNew,
				Message: err.Error(),
				Type:    constant.ErrTypeQR,
			},
			Data: map[string]interface{}{
				constant.DataTextLength: len(opts.Text),
				constant.DataLevel:      opts.Level,
			},
		})
		return nil, err
	}

	qr.DisableBorder = true
	img := renderSymbol(qr.Bitmap(), opts.Size,
		hexColor(opts.Foreground, color.Black),
		hexColor(opts.Background, color.White))

	var buf bytes.Buffer
	encoder := png.Encoder{CompressionLevel: png.BestCompression}
	if err := encoder.Encode(&buf, img); err != nil {
		logger.CtxError(ctx, "Failed to render QR code", logger.LoggerInfo{
			ContextFunction: constant.CtxEncode,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeQRRender,
				Message: err.Error(),
				Type:    constant.ErrTypeQR,
			},
			Data: map[string]interface{}{
				constant.DataSize: opts.Size,
			},
		})
		return nil, err
	}
	data := buf.Bytes()

	logger.CtxDebug(ctx, "QR code rendered", logger.LoggerInfo{
		ContextFunction: constant.CtxEncode,
		Data: map[string]interface{}{
			constant.DataSize:  opts.Size,
			constant.DataBytes: len(data),
		},
	})

	return data, nil
}

func recoveryLevel(level studio.Level) qrcode.RecoveryLevel {
	switch level {
	case studio.LevelLow:
		return qrcode.Low
	case studio.LevelQuartile:
		return qrcode.High
	case studio.LevelHigh:
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

func hexColor(raw string, fallback color.Color) color.Color {
	if c, ok := studio.ParseHexColor(raw); ok {
		return c
	}
	return fallback
}

// renderSymbol draws bitmap, a borderless symbol, into a size x size image
// with a margin-module quiet zone. Modules get a fractional pixel scale so the
// image is exactly size wide. A size too small for the symbol falls back to
// fallbackScale pixels per module.
func renderSymbol(bitmap [][]bool, size int, fg, bg color.Color) *image.Paletted {
	modules := len(bitmap)
	total := modules + 2*margin

	scale := float64(fallbackScale)
	width := total * fallbackScale
	if size >= total {
		scale = float64(size) / float64(total)
		width = size
	}
	offset := int(math.Floor(margin * scale))

	img := image.NewPaletted(image.Rect(0, 0, width, width), color.Palette{bg, fg})
	for y := offset; y < width-offset; y++ {
		row := int(math.Floor(float64(y-offset) / scale))
		if row >= modules {
			continue
		}
		for x := offset; x < width-offset; x++ {
			col := int(math.Floor(float64(x-offset) / scale))
			if col < modules && bitmap[row][col] {
				img.SetColorIndex(x, y, 1)
			}
		}
	}
	return img
}

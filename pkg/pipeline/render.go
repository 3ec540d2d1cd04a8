package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/drainflow/pkg/gridio"
	"github.com/matzehuels/drainflow/pkg/observability"
	"github.com/matzehuels/drainflow/pkg/render"
)

// ArtifactNames lists the file names a format produces.
func ArtifactNames(format string) []string {
	switch format {
	case FormatASCII, FormatJSON:
		return []string{"direction." + format, "area." + format}
	case FormatDOT, FormatSVG:
		return []string{"network." + format}
	}
	return nil
}

// Render encodes out in every format of opts.Formats.
func Render(ctx context.Context, out *Output, opts Options) (artifacts map[string][]byte, err error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err) }()

	artifacts = make(map[string][]byte)
	var dot string
	for _, format := range opts.Formats {
		switch format {
		case FormatASCII, FormatJSON:
			f := gridio.Format(format)
			dir, err := encodeRaster(gridio.FromInts(out.Direction, out.Header), f)
			if err != nil {
				return nil, fmt.Errorf("render direction %s: %w", format, err)
			}
			area, err := encodeRaster(&gridio.Raster{Header: out.Header, Grid: out.Area}, f)
			if err != nil {
				return nil, fmt.Errorf("render area %s: %w", format, err)
			}
			artifacts["direction."+format] = dir
			artifacts["area."+format] = area
		case FormatDOT, FormatSVG:
			if dot == "" {
				dot = render.ToDOT(out.Direction, out.Area, render.Options{MinArea: opts.MinArea, Detailed: opts.Detailed})
			}
			if format == FormatDOT {
				artifacts["network.dot"] = []byte(dot)
				continue
			}
			svg, err := render.RenderSVG(ctx, dot)
			if err != nil {
				return nil, fmt.Errorf("render svg: %w", err)
			}
			artifacts["network.svg"] = svg
		default:
			return nil, ValidateFormat(format)
		}
	}
	return artifacts, nil
}

func encodeRaster(rs *gridio.Raster, f gridio.Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := gridio.Write(rs, &buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

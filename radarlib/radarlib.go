// Package radarlib runs the whole pipeline: decoding, defaults, validation,
// layout and export.
package radarlib

import (
	"context"

	"oss.terrastruct.com/xdefer"

	"oss.terrastruct.com/techradar/radarconfig"
	"oss.terrastruct.com/techradar/radarexporter"
	"oss.terrastruct.com/techradar/radarlayout"
	"oss.terrastruct.com/techradar/radartarget"
)

type CompileOptions struct {
	// Path picks the input format by extension. Empty or "-" sniffs.
	Path string

	// Override the sizes set in the input.
	Radius        *float64
	EntryRadius   *float64
	SegmentLabels *bool
}

// Compile decodes input and lays it out. The returned config has defaults
// applied.
func Compile(ctx context.Context, input []byte, opts *CompileOptions) (_ *radartarget.Radar, _ *radarconfig.Config, err error) {
	if opts == nil {
		opts = &CompileOptions{}
	}
	path := opts.Path
	if path == "" {
		path = "-"
	}

	cfg, err := radarconfig.Parse(path, input)
	if err != nil {
		return nil, nil, err
	}
	return CompileConfig(ctx, cfg, opts)
}

// CompileConfig is Compile for an already decoded config.
func CompileConfig(ctx context.Context, in *radarconfig.Config, opts *CompileOptions) (_ *radartarget.Radar, _ *radarconfig.Config, err error) {
	defer xdefer.Errorf(&err, "failed to compile radar")

	if opts == nil {
		opts = &CompileOptions{}
	}
	cfg, err := in.WithDefaults()
	if err != nil {
		return nil, nil, err
	}
	if opts.Radius != nil {
		cfg.Radius = opts.Radius
	}
	if opts.EntryRadius != nil {
		cfg.EntryRadius = opts.EntryRadius
	}
	if opts.SegmentLabels != nil {
		cfg.SegmentLabels = *opts.SegmentLabels
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	g, err := radarlayout.GeometryFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	r, err := radarlayout.Layout(ctx, g, cfg)
	if err != nil {
		return nil, nil, err
	}
	out, err := radarexporter.Export(ctx, r, cfg)
	if err != nil {
		return nil, nil, err
	}
	return out, cfg, nil
}

package radarcli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cdr.dev/slog"
	"github.com/spf13/pflag"

	"oss.terrastruct.com/xjson"

	"oss.terrastruct.com/techradar/lib/log"
	"oss.terrastruct.com/techradar/lib/version"
	"oss.terrastruct.com/techradar/lib/xmain"
	"oss.terrastruct.com/techradar/radarlib"
	"oss.terrastruct.com/techradar/radarrenderers/radarsvg"
)

func Run(ctx context.Context, ms *xmain.State) (err error) {
	ctx = log.WithDefault(ctx)
	// Keep in sync with the usage in help.go.
	watchFlag, err := ms.Opts.Bool("TECHRADAR_WATCH", "watch", "w", false, "watch for changes to input and live reload. Use $HOST and $PORT to specify the listening address.\n(default localhost:0, which will open on a randomly available local port).")
	if err != nil {
		return err
	}
	hostFlag := ms.Opts.String("HOST", "host", "", "localhost", "host listening address when used with watch")
	portFlag := ms.Opts.String("PORT", "port", "p", "0", "port listening address when used with watch")
	browserFlag := ms.Opts.String("BROWSER", "browser", "", "", "browser executable that watch opens. Setting to 0 opens no browser.")
	padFlag, err := ms.Opts.Int64("TECHRADAR_PAD", "pad", "", radarsvg.DEFAULT_PADDING, "pixels padded around the rendered radar")
	if err != nil {
		return err
	}
	radiusFlag, err := ms.Opts.Float64("TECHRADAR_RADIUS", "radius", "r", 0, "radius of the radar in pixels. Overrides the radius set in the input, which defaults to 500.")
	if err != nil {
		return err
	}
	entryRadiusFlag, err := ms.Opts.Float64("TECHRADAR_ENTRY_RADIUS", "entry-radius", "", 0, "radius of the entry markers in pixels. Overrides the entryRadius set in the input, which defaults to 10.")
	if err != nil {
		return err
	}
	segmentLabelsFlag, err := ms.Opts.Bool("TECHRADAR_SEGMENT_LABELS", "segment-labels", "", false, "draw each segment's label along the outside of the radar")
	if err != nil {
		return err
	}
	formatFlag := ms.Opts.String("TECHRADAR_FORMAT", "format", "f", "", "output format (svg, json). Defaults to the extension of the output path and to svg when writing to stdout.")
	noXMLTagFlag, err := ms.Opts.Bool("TECHRADAR_NO_XML_TAG", "no-xml-tag", "", false, "omit XML tag (<?xml ...?>) from output SVG files. Useful when generating SVGs for direct HTML embedding")
	if err != nil {
		return err
	}
	omitVersionFlag, err := ms.Opts.Bool("OMIT_VERSION", "omit-version", "", false, "omit the techradar version from the generated SVG")
	if err != nil {
		return err
	}
	timeoutFlag, err := ms.Opts.Int64("TECHRADAR_TIMEOUT", "timeout", "", 120, "the maximum number of seconds a render may take before techradar gives up")
	if err != nil {
		return err
	}
	debugFlag, err := ms.Opts.Bool("DEBUG", "debug", "d", false, "print debug logs.")
	if err != nil {
		ms.Log.Warn.Printf("Invalid DEBUG flag value ignored")
		debugFlag = new(bool)
	}
	versionFlag, err := ms.Opts.Bool("", "version", "v", false, "get the version")
	if err != nil {
		return err
	}

	err = ms.Opts.Flags.Parse(ms.Opts.Args)
	if errors.Is(err, pflag.ErrHelp) {
		help(ms)
		return nil
	}
	if err != nil {
		return xmain.UsageErrorf("failed to parse flags: %v", err)
	}

	if *debugFlag {
		ctx = log.Leveled(ctx, slog.LevelDebug)
		ms.Env.Setenv("DEBUG", "1")
	}
	if *browserFlag != "" {
		ms.Env.Setenv("BROWSER", *browserFlag)
	}

	args := ms.Opts.Flags.Args()
	if len(args) > 0 {
		switch args[0] {
		case "validate":
			return validateCmd(ctx, ms)
		case "version":
			if len(args) > 1 {
				return xmain.UsageErrorf("version subcommand accepts no arguments")
			}
			fmt.Fprintln(ms.Stdout, version.Version)
			return nil
		}
	}

	if len(args) == 0 {
		if *versionFlag {
			fmt.Fprintln(ms.Stdout, version.Version)
			return nil
		}
		help(ms)
		return nil
	} else if len(args) >= 3 {
		return xmain.UsageErrorf("too many arguments passed")
	}

	inputPath := ms.AbsPath(args[0])
	outputPath := ""
	if len(args) >= 2 {
		outputPath = args[1]
	}
	format, err := getOutputFormat(*formatFlag, outputPath)
	if err != nil {
		return xmain.UsageErrorf("%v", err)
	}
	if outputPath == "" {
		if inputPath == "-" {
			outputPath = "-"
		} else {
			outputPath = renameExt(inputPath, "."+string(format))
		}
	}
	outputPath = ms.AbsPath(outputPath)

	opts := compileOpts{
		format: format,
		renderOpts: radarsvg.RenderOpts{
			Pad:         padFlag,
			NoXMLTag:    noXMLTagFlag,
			OmitVersion: omitVersionFlag,
		},
	}
	if ms.Opts.Changed("TECHRADAR_RADIUS", "radius") {
		opts.libOpts.Radius = radiusFlag
	}
	if ms.Opts.Changed("TECHRADAR_ENTRY_RADIUS", "entry-radius") {
		opts.libOpts.EntryRadius = entryRadiusFlag
	}
	if ms.Opts.Changed("TECHRADAR_SEGMENT_LABELS", "segment-labels") {
		opts.libOpts.SegmentLabels = segmentLabelsFlag
	}

	if *watchFlag {
		if inputPath == "-" {
			return xmain.UsageErrorf("-w[atch] cannot be combined with reading input from stdin")
		}
		if outputPath == "-" {
			return xmain.UsageErrorf("-w[atch] cannot be combined with writing output to stdout")
		}
		w, err := newWatcher(ctx, ms, watcherOpts{
			host:       *hostFlag,
			port:       *portFlag,
			inputPath:  inputPath,
			outputPath: outputPath,
			compile:    opts,
		})
		if err != nil {
			return err
		}
		return w.run()
	}

	ctx, cancel := log.WithTimeout(ctx, time.Duration(*timeoutFlag)*time.Second)
	defer cancel()

	_, err = compile(ctx, ms, opts, inputPath, outputPath)
	if err != nil {
		return fmt.Errorf("failed to compile %s: %w", ms.HumanPath(inputPath), err)
	}
	return nil
}

type outputFormat string

const (
	formatSVG  outputFormat = "svg"
	formatJSON outputFormat = "json"
)

// getOutputFormat prefers an explicit format and then the output extension.
func getOutputFormat(flag, outputPath string) (outputFormat, error) {
	f := strings.ToLower(strings.TrimPrefix(flag, "."))
	if f == "" {
		switch ext := strings.ToLower(filepath.Ext(outputPath)); ext {
		case "", ".svg":
			return formatSVG, nil
		case ".json":
			return formatJSON, nil
		default:
			return "", fmt.Errorf("unsupported output extension %q, expected .svg or .json", ext)
		}
	}
	switch outputFormat(f) {
	case formatSVG, formatJSON:
		return outputFormat(f), nil
	default:
		return "", fmt.Errorf("unsupported --format %q, expected svg or json", flag)
	}
}

type compileOpts struct {
	format     outputFormat
	libOpts    radarlib.CompileOptions
	renderOpts radarsvg.RenderOpts
}

// compile renders inputPath to outputPath and returns the SVG, which watch
// mode pushes to its clients regardless of the output format.
func compile(ctx context.Context, ms *xmain.State, opts compileOpts, inputPath, outputPath string) ([]byte, error) {
	start := time.Now()
	input, err := ms.ReadPath(inputPath)
	if err != nil {
		return nil, err
	}

	libOpts := opts.libOpts
	libOpts.Path = inputPath
	r, _, err := radarlib.Compile(ctx, input, &libOpts)
	if err != nil {
		return nil, err
	}
	ms.Log.Debug.Printf("laid out %d segments in %v", len(r.Segments), time.Since(start))

	svg, err := radarsvg.Render(r, &opts.renderOpts)
	if err != nil {
		return nil, err
	}

	out := svg
	if opts.format == formatJSON {
		out = []byte(xjson.MarshalIndent(r))
	}
	if outputPath != "-" {
		err = os.MkdirAll(filepath.Dir(outputPath), 0755)
		if err != nil {
			return nil, err
		}
	}
	err = ms.WritePath(outputPath, out)
	if err != nil {
		return nil, err
	}

	if outputPath != "-" {
		ms.Log.Success.Printf("successfully compiled %s to %s in %s", ms.HumanPath(inputPath), ms.HumanPath(outputPath), time.Since(start).Round(time.Millisecond))
	}
	return svg, nil
}

// newExt must include leading .
func renameExt(fp string, newExt string) string {
	ext := filepath.Ext(fp)
	if ext == "" {
		return fp + newExt
	} else {
		return strings.TrimSuffix(fp, ext) + newExt
	}
}

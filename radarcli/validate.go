package radarcli

import (
	"context"

	"oss.terrastruct.com/xdefer"

	"oss.terrastruct.com/techradar/lib/xmain"
	"oss.terrastruct.com/techradar/radarconfig"
)

func validateCmd(ctx context.Context, ms *xmain.State) (err error) {
	defer xdefer.Errorf(&err, "failed to validate")

	args := ms.Opts.Flags.Args()[1:]
	if len(args) == 0 {
		return xmain.UsageErrorf("validate must be passed an input file to be validated")
	} else if len(args) > 1 {
		return xmain.UsageErrorf("validate accepts a single input file")
	}

	inputPath := ms.AbsPath(args[0])
	input, err := ms.ReadPath(inputPath)
	if err != nil {
		return err
	}

	in, err := radarconfig.Parse(inputPath, input)
	if err != nil {
		return err
	}
	cfg, err := in.WithDefaults()
	if err != nil {
		return err
	}
	err = cfg.Validate()
	if err != nil {
		return err
	}

	dangling := cfg.Dangling()
	for _, e := range dangling {
		ms.Log.Warn.Printf("entry %q references unknown segment %q or ring %q and will not be drawn", e.Label, e.Segment, e.Ring)
	}
	ms.Log.Success.Printf("%s is valid: %d segments, %d rings, %d of %d entries placed",
		ms.HumanPath(inputPath), len(cfg.Segments), len(cfg.Rings), len(cfg.Entries)-len(dangling), len(cfg.Entries))
	return nil
}

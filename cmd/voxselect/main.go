package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/pauldmccarthy/fsleyes-sub006/pkg/config"
	"github.com/pauldmccarthy/fsleyes-sub006/pkg/nifti"
	"github.com/pauldmccarthy/fsleyes-sub006/pkg/selection"
	"github.com/pauldmccarthy/fsleyes-sub006/pkg/visualization"
)

func main() {
	input := flag.String("input", "", "Input NIfTI volume (.nii or .nii.gz)")
	output := flag.String("output", "", "Output mask filename (default mask.nii or mask.nii.gz per config)")
	configPath := flag.String("config", "", "Optional YAML configuration file")
	seedArg := flag.String("seed", "", "Flood-fill seed voxel as x,y,z")
	precision := flag.Float64("precision", -1, "Fill tolerance (negative: use config; 0: exact match)")
	radiusArg := flag.String("radius", "", "Fill search radius: a single value or rx,ry,rz")
	local := flag.Bool("local", false, "Restrict fill to voxels connected to the seed")
	blockArg := flag.String("block", "", "Block-select centre voxel as x,y,z")
	blockSize := flag.Int("block-size", 0, "Block edge length in voxels (0: use config)")
	axesArg := flag.String("axes", "", "Block axes, e.g. 0,1 for a single-slice stamp (empty: use config)")
	volIdx := flag.Int("volume", 0, "Volume index for 4D images")
	overlayDir := flag.String("overlay-dir", "", "Directory to save overlay slices (empty: use config)")
	showStats := flag.Bool("stats", true, "Report intensity statistics of the selection")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(1)
	}
	if *seedArg == "" && *blockArg == "" {
		log.Fatal("Nothing to do: supply -seed and/or -block")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *output == "" {
		if cfg.Output.GzipMask {
			*output = "mask.nii.gz"
		} else {
			*output = "mask.nii"
		}
	}

	// Progress chatter is suppressed when the config turns verbosity off;
	// results are always printed.
	say := func(format string, args ...any) {
		if cfg.Output.Verbose {
			fmt.Printf(format, args...)
		}
	}

	say("Loading volume: %s\n", *input)
	vol, err := nifti.Read(*input)
	if err != nil {
		log.Fatalf("Failed to load volume: %v", err)
	}

	dims := vol.Dims()
	say("Volume dimensions: %v, voxel size: %v mm\n", dims, vol.VoxelSize)

	sel, err := selection.New([3]int{dims[0], dims[1], dims[2]})
	if err != nil {
		log.Fatalf("Failed to create selection: %v", err)
	}

	changes := 0
	sel.Register("voxselect", func() { changes++ })

	if *blockArg != "" {
		voxel, err := parseTriple(*blockArg)
		if err != nil {
			log.Fatalf("Invalid -block: %v", err)
		}

		size := *blockSize
		if size < 1 {
			size = cfg.Paint.BlockSize
		}
		axes := cfg.Paint.Axes
		if *axesArg != "" {
			if axes, err = parseInts(*axesArg); err != nil {
				log.Fatalf("Invalid -axes: %v", err)
			}
		}

		say("Selecting a size-%d block at %v along axes %v...\n", size, voxel, axes)
		if err := sel.SelectBlock(voxel, size, axes); err != nil {
			log.Fatalf("Block selection failed: %v", err)
		}
	}

	if *seedArg != "" {
		seed, err := parseTriple(*seedArg)
		if err != nil {
			log.Fatalf("Invalid -seed: %v", err)
		}

		params := selection.FillParams{
			Precision:    cfg.Fill.Precision,
			SearchRadius: cfg.Fill.SearchRadius,
			Local:        cfg.Fill.Local || *local,
			Volume:       *volIdx,
		}
		if *precision >= 0 {
			params.Precision = *precision
		}
		if *radiusArg != "" {
			if params.SearchRadius, err = parseRadius(*radiusArg); err != nil {
				log.Fatalf("Invalid -radius: %v", err)
			}
		}

		say("Flood filling from seed %v (precision %g, radius %v, local %v)...\n",
			seed, params.Precision, params.SearchRadius, params.Local)
		if err := sel.SelectByValue(vol, seed, params); err != nil {
			log.Fatalf("Flood fill failed: %v", err)
		}
	}

	size := sel.SelectionSize()
	fmt.Printf("\nSelected %d voxels (%d change notifications)\n", size, changes)

	if bounds, offset := sel.BoundedSelection(); !bounds.Empty() {
		fmt.Printf("Bounding box: %v at offset %v\n", bounds.Shape, offset)
	}

	if *showStats && size > 0 {
		stats, err := sel.SelectionStats(vol, *volIdx)
		if err != nil {
			log.Fatalf("Failed to compute selection statistics: %v", err)
		}
		fmt.Printf("Intensity under selection: mean %.4f, stddev %.4f, range [%.4f, %.4f]\n",
			stats.Mean, stats.StdDev, stats.Min, stats.Max)
	}

	say("Saving mask to: %s\n", *output)
	if err := nifti.WriteMask(*output, sel.MaskCopy(), sel.Shape(), vol.VoxelSize); err != nil {
		log.Fatalf("Failed to save mask: %v", err)
	}

	dir := cfg.Output.OverlayDir
	if *overlayDir != "" {
		dir = *overlayDir
	}
	if dir != "" {
		say("Saving overlay slices to: %s\n", dir)
		viewer, err := visualization.NewViewer(vol, sel, *volIdx)
		if err != nil {
			log.Fatalf("Failed to create viewer: %v", err)
		}
		if err := viewer.SaveSliceSequence("z", dir); err != nil {
			log.Fatalf("Failed to save overlay slices: %v", err)
		}
	}
}

// parseTriple parses "x,y,z" into voxel coordinates.
func parseTriple(s string) ([3]int, error) {
	parts, err := parseInts(s)
	if err != nil {
		return [3]int{}, err
	}
	if len(parts) != 3 {
		return [3]int{}, fmt.Errorf("want 3 comma-separated values, got %d", len(parts))
	}
	return [3]int{parts[0], parts[1], parts[2]}, nil
}

// parseInts parses a comma-separated integer list.
func parseInts(s string) ([]int, error) {
	var out []int
	for _, p := range strings.Split(s, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("bad integer %q", p)
		}
		out = append(out, v)
	}
	return out, nil
}

// parseRadius parses either a single radius applied to all axes, or a
// comma-separated per-axis triple.
func parseRadius(s string) ([3]float64, error) {
	parts := strings.Split(s, ",")
	vals := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return [3]float64{}, fmt.Errorf("bad radius %q", p)
		}
		vals = append(vals, v)
	}

	switch len(vals) {
	case 1:
		return selection.UniformRadius(vals[0]), nil
	case 3:
		return [3]float64{vals[0], vals[1], vals[2]}, nil
	default:
		return [3]float64{}, fmt.Errorf("want 1 or 3 radius values, got %d", len(vals))
	}
}

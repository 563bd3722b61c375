package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/chainpulse/internal/aggregate"
	"github.com/abelbrown/chainpulse/internal/chart"
	"github.com/abelbrown/chainpulse/internal/config"
)

func runSVG() {
	fs := flag.NewFlagSet("svg", flag.ExitOnError)
	variant := fs.String("variant", "", "Variant to render (default: the configured one)")
	out := fs.String("o", "chainpulse.svg", "Output file, '-' for stdout")
	all := fs.Bool("all", false, "Render every variant to <o>-<variant>.svg")
	offline := fs.Bool("offline", false, "Use the latest stored snapshot instead of the API")
	seed := fs.Uint64("seed", 1, "Layout seed; the same seed and data give the same picture")
	fs.Parse(os.Args[1:])

	cfg := loadConfig()
	items, _, err := loadItems(cfg, *offline)
	if err != nil {
		fatalf("%v", err)
	}
	summaries := aggregate.Aggregate(items)

	if *all {
		paths, err := exportAll(cfg, summaries, *out, *seed)
		if err != nil {
			fatalf("%v", err)
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		return
	}

	name := cfg.Variant
	if *variant != "" {
		name = *variant
	}
	v, err := cfg.Lookup(name)
	if err != nil {
		fatalf("%v", err)
	}

	if *out == "-" {
		err = renderSVG(os.Stdout, v, summaries, *seed)
	} else {
		err = writeSVGFile(*out, v, summaries, *seed)
	}
	if err != nil {
		fatalf("%v", err)
	}
	if *out != "-" {
		fmt.Printf("%s: %d coins, %d articles\n", *out, len(summaries), len(items))
	}
}

// renderSVG settles a layout for summaries under variant v and writes it.
func renderSVG(w io.Writer, v config.Variant, summaries []aggregate.CoinSummary, seed uint64) error {
	opts, err := chart.FromVariant(v, 60)
	if err != nil {
		return err
	}
	opts.Seed = seed
	return chart.WriteSVG(w, chart.Layout(summaries, opts), opts)
}

func writeSVGFile(path string, v config.Variant, summaries []aggregate.CoinSummary, seed uint64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := renderSVG(f, v, summaries, seed); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// exportAll renders every configured variant concurrently, one file each,
// named after out with the variant appended.
func exportAll(cfg *config.Config, summaries []aggregate.CoinSummary, out string, seed uint64) ([]string, error) {
	names := cfg.VariantNames()
	base := strings.TrimSuffix(out, filepath.Ext(out))
	paths := make([]string, len(names))

	var g errgroup.Group
	for i, name := range names {
		paths[i] = fmt.Sprintf("%s-%s.svg", base, name)
		g.Go(func() error {
			v, err := cfg.Lookup(name)
			if err != nil {
				return err
			}
			return writeSVGFile(paths[i], v, summaries, seed)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

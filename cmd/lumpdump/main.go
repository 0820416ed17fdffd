// lumpdump loads graphics lumps from a WAD through a zone-backed cache and prints the state of
// the cache and the zone as JSON.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/calicoport/gfxzone/gfxcache"
	"github.com/calicoport/gfxzone/wad"
	"github.com/calicoport/gfxzone/zone"
	"github.com/cockroachdb/errors"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
)

type options struct {
	wadPath  string
	zoneSize int
	lumps    string
	frames   int
	static   bool
	mapped   bool
	verbose  bool
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "lumpdump --wad <file> --lumps <names>",
		Short: "Fetch WAD graphics through a zone-backed cache and dump the result",
		Long: `lumpdump decodes the requested lumps into a fixed-size zone, preparing them as one
frame as many times as asked, then prints the cache counters and the zone's block map as JSON.

Example:
  lumpdump --wad doom.wad --lumps M_DOOM,M_SKULL1 --zone 65536
  lumpdump --wad doom.wad --lumps 12,13,14 --frames 4 -v`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			return run(cmd.OutOrStdout(), logger, opts)
		},
	}

	cmd.Flags().StringVar(&opts.wadPath, "wad", "", "Path to the WAD file")
	cmd.Flags().IntVar(&opts.zoneSize, "zone", 64*1024, "Zone size in bytes")
	cmd.Flags().StringVar(&opts.lumps, "lumps", "", "Comma separated lump names or numbers to fetch as one frame")
	cmd.Flags().IntVar(&opts.frames, "frames", 1, "Number of times to prepare the frame")
	cmd.Flags().BoolVar(&opts.static, "static", false, "Fetch the lumps as static instead of cache blocks")
	cmd.Flags().BoolVar(&opts.mapped, "mmap", false, "Memory map the WAD instead of reading it")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log zone and cache activity to stderr")
	_ = cmd.MarkFlagRequired("wad")

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(out io.Writer, logger *slog.Logger, opts options) error {
	var file *wad.File
	var err error
	if opts.mapped {
		file, err = wad.OpenMapped(opts.wadPath, wad.Options{})
	} else {
		file, err = wad.Open(osfs.New(filepath.Dir(opts.wadPath)), filepath.Base(opts.wadPath), wad.Options{})
	}
	if err != nil {
		return err
	}
	defer file.Close()

	lumps, err := resolveLumps(file, opts.lumps)
	if err != nil {
		return err
	}

	z, err := zone.New(logger, opts.zoneSize, zone.CreateOptions{Flags: zone.CreateExternallySynchronized})
	if err != nil {
		return err
	}
	cache := gfxcache.New(logger, z, file, nil)

	if opts.static {
		for _, lump := range lumps {
			if _, err := cache.FetchStatic(lump); err != nil {
				return err
			}
		}
	}

	for i := 0; i < opts.frames; i++ {
		if _, err := cache.PrepareFrame(lumps); err != nil {
			return errors.Wrapf(err, "frame %d", i)
		}
	}

	if err := z.Validate(); err != nil {
		return errors.Wrap(err, "zone failed validation")
	}
	if err := z.CheckCorruption(); err != nil {
		return err
	}

	writer := jwriter.NewWriter()
	obj := writer.Object()
	cache.PrintStatistics(obj.Name("Cache"))
	z.PrintDetailedMap(obj.Name("Zone"))
	obj.End()
	if err := writer.Error(); err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, string(writer.Bytes()))
	return err
}

func resolveLumps(file *wad.File, lumpList string) ([]int, error) {
	var lumps []int
	for _, name := range strings.Split(lumpList, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		if number, err := strconv.Atoi(name); err == nil {
			if number < 0 || number >= file.NumLumps() {
				return nil, errors.Wrapf(wad.ErrLumpOutOfRange, "lump %d of %d", number, file.NumLumps())
			}
			lumps = append(lumps, number)
			continue
		}

		lump, err := file.NumForName(name)
		if err != nil {
			return nil, err
		}
		lumps = append(lumps, lump)
	}

	return lumps, nil
}

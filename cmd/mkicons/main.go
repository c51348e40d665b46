// mkicons draws the camera launcher icon at every Android density and
// writes ic_launcher.png and ic_launcher_round.png into the mipmap
// directories.
//
// Usage: mkicons [--res-dir DIR] [--size N ...] [--dry-run]
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"

	"github.com/sanyoog/retro-cam/internal/icon"
)

// CLI is the mkicons command line.
type CLI struct {
	ResDir string `name:"res-dir" help:"Android resource directory" default:"app/src/main/res" type:"path"`
	Size   []int  `name:"size" help:"Only generate these pixel sizes (repeatable)"`
	DryRun bool   `name:"dry-run" help:"Print the files that would be written"`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("mkicons"),
		kong.Description("Generate the launcher icon for every mipmap density."),
	)
	if err := run(cli, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cli CLI, w io.Writer) error {
	for _, s := range cli.Size {
		if s <= 0 {
			return fmt.Errorf("size must be positive, got %d", s)
		}
	}
	targets := icon.FilterSizes(icon.Targets(cli.ResDir), cli.Size)
	if len(targets) == 0 {
		return fmt.Errorf("no density matches sizes %v", cli.Size)
	}

	if cli.DryRun {
		for _, t := range targets {
			fmt.Fprintf(w, "would write %s (%dx%d)\n", t.Path, t.Size, t.Size)
		}
		return nil
	}

	results, err := icon.Generate(targets)
	for _, r := range results {
		fmt.Fprintf(w, "%s (%dx%d, %s)\n", r.Path, r.Size, r.Size, humanize.Bytes(uint64(r.Bytes)))
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Icons created successfully!")
	return nil
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/8ryn/tomoscan/internal/image"
)

// NewImagesCmd creates the 'images' command for listing the catalog
// Flags: --json (machine-readable dump)
func NewImagesCmd(a *App) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "images",
		Short: "List the session image catalog",
		Long: `List the session images tomoscan knows how to build.

The catalog is built in; 'tomoscan build' with no arguments builds
every image listed here.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.RunImages(cmd.OutOrStdout(), jsonOut)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the catalog as JSON")

	return cmd
}

// RunImages renders the image catalog to stdout.
func (a *App) RunImages(stdout io.Writer, jsonOut bool) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	specs := image.Catalog()

	if jsonOut {
		return writeImagesJSON(stdout, specs, cfg.Images.TagPrefix)
	}

	displayImages(stdout, specs, cfg.Images.TagPrefix)
	return nil
}

// displayImages renders the catalog in tabular format using tabwriter.
// Columns: Name, Tag, Base, Packages, Start Command
func displayImages(stdout io.Writer, specs []image.Spec, tagPrefix string) {
	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	// Print header row
	fmt.Fprintln(w, "NAME\tTAG\tBASE\tPACKAGES\tSTART COMMAND")

	// Print each image
	for _, spec := range specs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			spec.Name,
			spec.Tag(tagPrefix),
			spec.BaseImage,
			len(spec.Packages),
			strings.Join(spec.Command, " "),
		)
	}
}

// imageJSON is the machine-readable catalog entry.
type imageJSON struct {
	Name      string   `json:"name"`
	Tag       string   `json:"tag"`
	BaseImage string   `json:"base_image"`
	Packages  []string `json:"packages"`
	Artifacts []string `json:"artifacts"`
	WorkDir   string   `json:"workdir"`
	Command   []string `json:"command"`
}

func writeImagesJSON(stdout io.Writer, specs []image.Spec, tagPrefix string) error {
	out := make([]imageJSON, 0, len(specs))
	for _, spec := range specs {
		entry := imageJSON{
			Name:      spec.Name,
			Tag:       spec.Tag(tagPrefix),
			BaseImage: spec.BaseImage,
			Packages:  spec.Packages,
			WorkDir:   spec.WorkDir,
			Command:   spec.Command,
		}
		for _, art := range spec.Artifacts {
			entry.Artifacts = append(entry.Artifacts, art.Dest)
		}
		out = append(out, entry)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

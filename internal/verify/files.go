package verify

import (
	"archive/tar"
	"fmt"
	"io"
	"path"
	"strings"

	v1 "github.com/google/go-containerregistry/pkg/v1"
)

// layerFiles walks the image layers in order and returns the set of
// paths present in the final filesystem. Whiteout markers (.wh.FILE)
// drop the named entry; opaque whiteouts (.wh..wh..opaque) clear the
// directory contents from earlier layers.
func layerFiles(img v1.Image) (map[string]bool, error) {
	layers, err := img.Layers()
	if err != nil {
		return nil, fmt.Errorf("list layers: %w", err)
	}

	files := make(map[string]bool)
	for i, layer := range layers {
		if err := applyLayer(files, layer); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return files, nil
}

func applyLayer(files map[string]bool, layer v1.Layer) error {
	rc, err := layer.Uncompressed()
	if err != nil {
		return fmt.Errorf("open layer: %w", err)
	}
	defer rc.Close()

	// Whiteouts target earlier layers, never entries of their own
	// layer, so deletions apply before this layer's additions.
	var adds, deletes, opaques []string

	tr := tar.NewReader(rc)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read layer tar: %w", err)
		}

		name := normalizePath(hdr.Name)
		dir, base := path.Split(name)

		switch {
		case base == ".wh..wh..opaque":
			opaques = append(opaques, strings.TrimSuffix(dir, "/"))
		case strings.HasPrefix(base, ".wh."):
			deletes = append(deletes, path.Join(dir, strings.TrimPrefix(base, ".wh.")))
		case hdr.Typeflag != tar.TypeDir:
			adds = append(adds, name)
		}
	}

	for _, dir := range opaques {
		clearDir(files, dir)
	}
	for _, name := range deletes {
		delete(files, name)
		clearDir(files, name)
	}
	for _, name := range adds {
		files[name] = true
	}
	return nil
}

// clearDir removes every entry below dir from the set.
func clearDir(files map[string]bool, dir string) {
	prefix := dir + "/"
	for name := range files {
		if strings.HasPrefix(name, prefix) {
			delete(files, name)
		}
	}
}

// normalizePath maps tar entry names and image paths onto one form so
// "/app/x.py", "./app/x.py" and "app/x.py" all compare equal.
func normalizePath(name string) string {
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}

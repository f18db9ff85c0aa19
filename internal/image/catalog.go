package image

import (
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// baseImage pins the Python base both catalog images build from.
const baseImage = "python:3.11"

// packages is the beamline software stack installed into both images.
// Order is fixed so the install layer is reproducible.
var packages = []string{
	"bluesky",
	"ophyd",
	"databroker",
	"apstools",
	"hdf5plugin",
	"ipython",
}

// Catalog returns the built-in image specs in build order.
func Catalog() []Spec {
	return []Spec{
		{
			Name:      "interactive",
			BaseImage: baseImage,
			Packages:  append([]string(nil), packages...),
			Artifacts: []Artifact{
				{Source: "mongo_catalog.yml", Dest: "/usr/local/share/intake/mongo_catalog.yml"},
				{Source: "ophyd_inter_setup.py", Dest: "/app/ophyd_inter_setup.py"},
			},
			WorkDir:      "/app",
			Command:      []string{"ipython", "-i", "ophyd_inter_setup.py"},
			ProbeSymbols: []string{"det", "motor1", "RE"},
			Labels: map[string]string{
				ocispec.AnnotationTitle: "interactive",
			},
		},
		{
			Name:      "clf-sim",
			BaseImage: baseImage,
			Packages:  append([]string(nil), packages...),
			Artifacts: []Artifact{
				{Source: "mongo_catalog.yml", Dest: "/usr/local/share/intake/mongo_catalog.yml"},
				{Source: "ophyd_clf_sim.py", Dest: "/app/ophyd_clf_sim.py"},
			},
			WorkDir:      "/app",
			Command:      []string{"ipython", "-i", "ophyd_clf_sim.py"},
			ProbeSymbols: []string{"det", "RE"},
			Labels: map[string]string{
				ocispec.AnnotationTitle: "clf-sim",
			},
		},
	}
}

// Lookup returns the catalog spec with the given name.
func Lookup(name string) (Spec, bool) {
	for _, spec := range Catalog() {
		if spec.Name == name {
			return spec, true
		}
	}
	return Spec{}, false
}

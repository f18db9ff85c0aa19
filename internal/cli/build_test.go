package cli

import (
	"strings"
	"testing"
)

func TestResolveSpecs_DefaultsToCatalog(t *testing.T) {
	specs, err := resolveSpecs(nil)
	if err != nil {
		t.Fatalf("resolveSpecs(nil) failed: %v", err)
	}

	if len(specs) != 2 {
		t.Fatalf("Expected 2 catalog specs, got %d", len(specs))
	}
	if specs[0].Name != "interactive" {
		t.Errorf("Expected first spec 'interactive', got %q", specs[0].Name)
	}
	if specs[1].Name != "clf-sim" {
		t.Errorf("Expected second spec 'clf-sim', got %q", specs[1].Name)
	}
}

func TestResolveSpecs_Named(t *testing.T) {
	specs, err := resolveSpecs([]string{"clf-sim"})
	if err != nil {
		t.Fatalf("resolveSpecs failed: %v", err)
	}

	if len(specs) != 1 {
		t.Fatalf("Expected 1 spec, got %d", len(specs))
	}
	if specs[0].Name != "clf-sim" {
		t.Errorf("Expected 'clf-sim', got %q", specs[0].Name)
	}
}

func TestResolveSpecs_PreservesArgumentOrder(t *testing.T) {
	specs, err := resolveSpecs([]string{"clf-sim", "interactive"})
	if err != nil {
		t.Fatalf("resolveSpecs failed: %v", err)
	}

	if len(specs) != 2 {
		t.Fatalf("Expected 2 specs, got %d", len(specs))
	}
	if specs[0].Name != "clf-sim" || specs[1].Name != "interactive" {
		t.Errorf("Expected [clf-sim interactive], got [%s %s]", specs[0].Name, specs[1].Name)
	}
}

func TestResolveSpecs_Unknown(t *testing.T) {
	_, err := resolveSpecs([]string{"nope"})
	if err == nil {
		t.Fatal("Expected error for unknown image")
	}

	if !strings.Contains(err.Error(), `unknown image "nope"`) {
		t.Errorf("Error should name the image, got: %v", err)
	}
	if !strings.Contains(err.Error(), "interactive") {
		t.Errorf("Error should list known images, got: %v", err)
	}
}

func TestKnownImages(t *testing.T) {
	names := knownImages()

	if names != "interactive, clf-sim" {
		t.Errorf("Expected 'interactive, clf-sim', got %q", names)
	}
}

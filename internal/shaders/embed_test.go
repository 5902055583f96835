package shaders

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbeddedSources(t *testing.T) {
	names := []string{ScreenVert, CopyFrag, TraceFrag, AverageFrag, PresentFrag, LineVert, LineFrag}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			src, err := Source{}.Read(name)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if !strings.HasPrefix(src, "#version 460 core") {
				t.Errorf("%s does not start with the version directive", name)
			}
		})
	}
}

func TestTraceShaderProtocol(t *testing.T) {
	src := Source{}.MustRead(TraceFrag)
	required := []string{
		"u_spheresBlock", "u_trianglesBlock", "u_meshesInfosBlock",
		"binding = 0", "binding = 1", "binding = 2",
		"MAX_SPHERES", "MAX_TRIANGLES", "MAX_MESHES",
		"u_numRenderedFrames", "u_groundColor", "u_skyHorizonColor", "u_skyZenithColor",
		"u_numRaysPerPixel", "u_numRayBounces", "u_numSpheres", "u_numMeshes",
		"u_enableEnvLight", "u_sunFocus", "u_sunIntensity",
		"u_divergeStrength", "u_defocusStrength", "u_focusDistance",
	}
	for _, want := range required {
		if !strings.Contains(src, want) {
			t.Errorf("rt.frag is missing %q", want)
		}
	}
}

func TestDirOverride(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, CopyFrag), []byte("override"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := Source{Dir: dir}
	got, err := s.Read(CopyFrag)
	if err != nil || got != "override" {
		t.Fatalf("Read(%s) = %q, %v", CopyFrag, got, err)
	}

	// files missing from the directory fall back to the embedded copy
	got, err = s.Read(LineFrag)
	if err != nil || !strings.Contains(got, "#version") {
		t.Fatalf("fallback Read(%s) = %q, %v", LineFrag, got, err)
	}

	if _, err := s.Read("missing.frag"); err == nil {
		t.Error("expected an error for an unknown shader")
	}
}

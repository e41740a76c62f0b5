package paramdeck

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
}

func TestParseScalarsListsAndBlocks(t *testing.T) {
	deck, err := parse(strings.NewReader(`
# a leading comment
Name cylinder_basic
Radius 25.4
Active true
Energies 140 159 511

Ring {
	MinZ -10.0
	MaxZ 10.0
	Layer {
		Material 1
		Active yes
	}
}
`), ".")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if v, _ := deck.Get("Name"); v != "cylinder_basic" {
		t.Errorf("Name = %q, want cylinder_basic", v)
	}
	if f, err := deck.GetFloat("Radius"); err != nil || f != 25.4 {
		t.Errorf("Radius = %v, %v; want 25.4, nil", f, err)
	}
	if b, err := deck.GetBool("Active"); err != nil || !b {
		t.Errorf("Active = %v, %v; want true, nil", b, err)
	}
	if got := deck.List("Energies"); len(got) != 3 || got[2] != "511" {
		t.Errorf("Energies = %v, want [140 159 511]", got)
	}

	ring, ok := deck.Block("Ring")
	if !ok {
		t.Fatal("Ring block missing")
	}
	if f := ring.GetFloatDefault("MinZ", 0); f != -10.0 {
		t.Errorf("Ring.MinZ = %v, want -10", f)
	}
	layer, ok := ring.Block("Layer")
	if !ok {
		t.Fatal("Layer block missing")
	}
	if active, err := layer.GetBool("Active"); err != nil || !active {
		t.Errorf("Layer.Active = %v, %v; want true, nil", active, err)
	}
}

func TestParseRepeatedBlocksPreserveOrder(t *testing.T) {
	deck, err := parse(strings.NewReader(`
Ring {
	MinZ 0.0
}
Ring {
	MinZ 10.0
}
Ring {
	MinZ 20.0
}
`), ".")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	rings := deck.BlockList("Ring")
	if len(rings) != 3 {
		t.Fatalf("got %d rings, want 3", len(rings))
	}
	for i, want := range []float64{0.0, 10.0, 20.0} {
		if got := rings[i].GetFloatDefault("MinZ", -1); got != want {
			t.Errorf("rings[%d].MinZ = %v, want %v", i, got, want)
		}
	}
}

func TestParseMissingValueIsError(t *testing.T) {
	if _, err := parse(strings.NewReader("Name\n"), "."); err == nil {
		t.Fatal("expected an error for a key with no value")
	}
}

func TestFromFileSplicesSubDeck(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ring1.par"), "MinZ -5.0\nMaxZ 5.0\n")
	writeFile(t, filepath.Join(dir, "main.par"), "FromFile Ring ring1.par\n")

	deck, err := Load(filepath.Join(dir, "main.par"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	ring, ok := deck.Block("Ring")
	if !ok {
		t.Fatal("Ring block missing")
	}
	if f := ring.GetFloatDefault("MaxZ", -1); f != 5.0 {
		t.Errorf("Ring.MaxZ = %v, want 5", f)
	}
}

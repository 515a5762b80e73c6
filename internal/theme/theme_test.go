package theme

import (
	"testing"

	"github.com/naviya/naviya/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := openStore(t)
	if err := Save(st, Light); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := Load(st); got != Light {
		t.Errorf("Load = %q, want light", got)
	}
}

func TestLoadIgnoresGarbageValue(t *testing.T) {
	st := openStore(t)
	if err := st.Set(store.KeyTheme, "sepia"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got := Load(st)
	if got != Dark && got != Light {
		t.Errorf("Load fell through to %q", got)
	}
}

func TestToggleFlipsAndPersists(t *testing.T) {
	st := openStore(t)
	if err := Save(st, Dark); err != nil {
		t.Fatalf("save: %v", err)
	}
	m, err := Toggle(st)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if m != Light {
		t.Errorf("Toggle = %q, want light", m)
	}
	if got := Load(st); got != Light {
		t.Errorf("Load after toggle = %q, want light", got)
	}
}

func TestPaletteModes(t *testing.T) {
	dark := PaletteFor(Dark)
	light := PaletteFor(Light)
	if dark.Text == light.Text {
		t.Error("modes should use different text colours")
	}
	if dark.Accent != light.Accent {
		t.Error("accent is shared across modes")
	}
}

package fractal

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestSettingsRoundTrip(t *testing.T) {
	p := DefaultParams(KindJulia)
	p.Zoom = 3.5
	p.CReal, p.CImag = -0.8, 0.156
	p.Palette = PaletteSunset

	var buf bytes.Buffer
	if err := SaveSettings(&buf, p); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"`+SettingsKey+`"`) || !strings.Contains(buf.String(), `"sunset"`) {
		t.Errorf("unexpected record: %s", buf.String())
	}

	got, err := LoadSettings(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got != p {
		t.Errorf("LoadSettings = %+v, want %+v", got, p)
	}
}

func TestLoadSettingsFillsDefaults(t *testing.T) {
	in := `{"fractal-explorer-settings": {"kind": "julia", "zoom": 2, "palette": "no-such"}}`
	got, err := LoadSettings(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	want := DefaultParams(KindJulia)
	want.Zoom = 2
	if got != want {
		t.Errorf("LoadSettings = %+v, want %+v", got, want)
	}
}

func TestLoadSettingsErrors(t *testing.T) {
	tests := map[string]string{
		"not json":    `{`,
		"missing key": `{"other": {}}`,
		"bad kind":    `{"fractal-explorer-settings": {"kind": "spiral"}}`,
		"bad field":   `{"fractal-explorer-settings": {"zoom": "big"}}`,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadSettings(strings.NewReader(in))
			if !errors.Is(err, ErrBadSettings) {
				t.Errorf("err = %v, want ErrBadSettings", err)
			}
		})
	}
}

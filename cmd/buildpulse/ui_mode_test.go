package main

import "testing"

func TestReadUIMode(t *testing.T) {
	cases := []struct {
		in      string
		want    uiMode
		wantErr bool
	}{
		{"auto", uiModeAuto, false},
		{"", uiModeAuto, false},
		{"on", uiModeOn, false},
		{"OFF", uiModeOff, false},
		{" On ", uiModeOn, false},
		{"maybe", "", true},
	}
	for _, tc := range cases {
		got, err := readUIMode(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("readUIMode(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("readUIMode(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("readUIMode(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestShouldUseTUIExplicitModes(t *testing.T) {
	if !shouldUseTUI(uiModeOn) {
		t.Error("ui=on must force the TUI")
	}
	if shouldUseTUI(uiModeOff) {
		t.Error("ui=off must disable the TUI")
	}
}

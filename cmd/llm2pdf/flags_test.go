package main

import "testing"

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		validate func(t *testing.T, f *cliFlags, positional []string)
	}{
		{
			name: "defaults",
			args: []string{"input.md"},
			validate: func(t *testing.T, f *cliFlags, positional []string) {
				if f.output != "" || f.directory != "" || f.verbose {
					t.Errorf("unexpected defaults: %+v", f)
				}
				if len(positional) != 1 || positional[0] != "input.md" {
					t.Errorf("positional = %v, want [input.md]", positional)
				}
			},
		},
		{
			name: "short flags",
			args: []string{"-o", "out.pdf", "-v", "-w", "4", "input.md"},
			validate: func(t *testing.T, f *cliFlags, _ []string) {
				if f.output != "out.pdf" || !f.verbose || f.workers != 4 {
					t.Errorf("short flags not parsed: %+v", f)
				}
			},
		},
		{
			name: "directory mode",
			args: []string{"-d", "./docs", "-o", "./pdfs"},
			validate: func(t *testing.T, f *cliFlags, positional []string) {
				if f.directory != "./docs" || f.output != "./pdfs" {
					t.Errorf("directory flags not parsed: %+v", f)
				}
				if len(positional) != 0 {
					t.Errorf("positional = %v, want none", positional)
				}
			},
		},
		{
			name: "render flags",
			args: []string{"--render-endpoint", "https://m.example.com", "--render-wait", "5s", "--keep-images", "in.md"},
			validate: func(t *testing.T, f *cliFlags, _ []string) {
				if f.renderEndpoint != "https://m.example.com" || f.renderWait != "5s" || !f.keepImages {
					t.Errorf("render flags not parsed: %+v", f)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, positional, err := parseFlags(tt.args)
			if err != nil {
				t.Fatalf("parseFlags() error = %v", err)
			}
			tt.validate(t, f, positional)
		})
	}
}

func TestParseFlagsUnknownFlag(t *testing.T) {
	_, _, err := parseFlags([]string{"--no-such-flag"})
	if err == nil {
		t.Error("parseFlags() accepted unknown flag")
	}
}

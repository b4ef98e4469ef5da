package commands_test

import (
	"bytes"
	"strings"
	"testing"

	"tasklist/internal/commands"
)

func TestTerminalDialogs_PromptDefault(t *testing.T) {
	var errOut bytes.Buffer
	d := commands.NewTerminalDialogs(strings.NewReader("\n"), &errOut)

	answer, ok := d.Prompt("Title?", "Buy milk")

	if !ok || answer != "Buy milk" {
		t.Errorf("expected default kept, got %q %v", answer, ok)
	}
	if errOut.String() != "Title? [Buy milk] " {
		t.Errorf("unexpected prompt %q", errOut.String())
	}
}

func TestTerminalDialogs_PromptLastLineWithoutNewline(t *testing.T) {
	d := commands.NewTerminalDialogs(strings.NewReader("Buy bread"), &bytes.Buffer{})

	answer, ok := d.Prompt("Title?", "Buy milk")

	if !ok || answer != "Buy bread" {
		t.Errorf("expected typed answer, got %q %v", answer, ok)
	}
}

func TestTerminalDialogs_PromptEOF(t *testing.T) {
	d := commands.NewTerminalDialogs(nil, &bytes.Buffer{})

	if _, ok := d.Prompt("Title?", "Buy milk"); ok {
		t.Error("expected cancel at end of input")
	}
	if !d.Cancelled() {
		t.Error("expected Cancelled to report the cancel")
	}
}

func TestTerminalDialogs_Answer(t *testing.T) {
	var errOut bytes.Buffer
	d := commands.NewTerminalDialogs(nil, &errOut)
	d.Answer("preset")

	answer, ok := d.Prompt("Title?", "Buy milk")

	if !ok || answer != "preset" {
		t.Errorf("expected preset answer, got %q %v", answer, ok)
	}
	if errOut.Len() != 0 {
		t.Errorf("expected no prompt, got %q", errOut.String())
	}
}

func TestTerminalDialogs_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\r\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		d := commands.NewTerminalDialogs(strings.NewReader(tt.input), &bytes.Buffer{})
		if got := d.Confirm("Sure?"); got != tt.want {
			t.Errorf("Confirm with input %q = %v, want %v", tt.input, got, tt.want)
		}
		if d.Cancelled() == tt.want {
			t.Errorf("Confirm with input %q: Cancelled() = %v, want %v", tt.input, d.Cancelled(), !tt.want)
		}
	}
}

func TestTerminalDialogs_AlertAndAssumeYes(t *testing.T) {
	var errOut bytes.Buffer
	d := commands.NewTerminalDialogs(nil, &errOut)
	d.AssumeYes = true

	d.Alert("Please write something!")
	if !d.Confirm("Sure?") {
		t.Error("expected AssumeYes to confirm")
	}
	if errOut.String() != "error: Please write something!\n" {
		t.Errorf("unexpected stderr %q", errOut.String())
	}
}

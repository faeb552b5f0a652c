package ui

import (
	"strings"
	"testing"

	appmodel "dealchat/model"
)

func TestBuildProposalContent(t *testing.T) {
	p := appmodel.ToolProposal{
		ToolName: "update_client_field",
		PreviewFields: []appmodel.PreviewField{
			{Key: "client", Value: "Acme"},
			{Key: "value", Value: "Closed Won"},
		},
	}

	card := stripANSI(buildProposalContent(p))

	for _, want := range []string{
		"╰── Action: update_client_field",
		"╰── client: Acme",
		"╰── value:  Closed Won",
		"[y] Confirm",
		"[n] Cancel",
	} {
		if !strings.Contains(card, want) {
			t.Errorf("card missing %q:\n%s", want, card)
		}
	}
}

func TestWordWrapWithIndent(t *testing.T) {
	got := wordWrapWithIndent("one two three four", "╰── Key: ", 20)

	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", got)
	}
	if lines[0] != "╰── Key: one two" {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if lines[1] != "         three four" {
		t.Errorf("continuation should align under the value, got %q", lines[1])
	}
}

func TestFrameCodeBlocks(t *testing.T) {
	in := "intro\n" + codeBar + " x := 1\n" + codeBar + " y := 2\noutro"

	out := stripANSI(frameCodeBlocks(in, 24))

	if strings.Contains(out, codeBar) {
		t.Errorf("code bar should be stripped, got %q", out)
	}
	if !strings.Contains(out, "[code]") {
		t.Error("expected a labelled top border")
	}
	if !strings.Contains(out, "x := 1\ny := 2") {
		t.Errorf("code lines should be kept in order, got %q", out)
	}
}

func TestFormatUserMessage(t *testing.T) {
	out := stripANSI(formatUserMessage("[10:00]", "You", "line one\nline two"))

	want := codeBar + " [10:00] You\n" + codeBar + " line one\n" + codeBar + " line two\n\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

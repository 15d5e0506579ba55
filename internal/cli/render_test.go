package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"bilancio/internal/budget"
	"bilancio/internal/core"
)

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Righe",
		Headers: []string{"Categoria", "Stanziato"},
		Rows: [][]string{
			{"Biglietteria", "€1,000.00"},
			{"---"},
			{"Città", "€5.00"},
		},
	})

	for _, want := range []string{"Righe", "Categoria", "Biglietteria", "€1,000.00", "Città"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// title + top + header + separator + 3 rows + bottom
	if len(lines) != 8 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	width := lipgloss.Width(lines[1])
	for i, l := range lines[1:] {
		if lipgloss.Width(l) != width {
			t.Errorf("line %d has width %d, want %d: %q", i+1, lipgloss.Width(l), width, l)
		}
	}
}

func TestRenderTable_Empty(t *testing.T) {
	if got := RenderTable(Table{}); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestRenderStatuses(t *testing.T) {
	for _, s := range []budget.LineStatus{budget.StatusOK, budget.StatusWarning, budget.StatusOverBudget, budget.StatusUnderTarget} {
		if !strings.Contains(RenderLineStatus(s), string(s)) {
			t.Errorf("RenderLineStatus(%s) lost its label", s)
		}
	}
	if !strings.Contains(RenderEntityStatus(core.StatusDraft), "draft") {
		t.Error("RenderEntityStatus lost its label")
	}
	if !strings.Contains(RenderResult(core.Cents(-150)), "-€1.50") {
		t.Error("RenderResult lost the amount")
	}
}

func TestRenderKV(t *testing.T) {
	out := RenderKV([][2]string{{"Entità", "3"}, {"Copertura", "66.7%"}})
	if !strings.Contains(out, "Copertura") || !strings.Contains(out, "66.7%") {
		t.Errorf("unexpected output %q", out)
	}
}

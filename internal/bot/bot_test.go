package bot

import "testing"

func TestParseDayInput(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"Понедельник", 1, true},
		{"среда", 3, true},
		{" ВОСКРЕСЕНЬЕ ", 0, true},
		{"5", 5, true},
		{"0", 0, true},
		{"7", 0, false},
		{"-1", 0, false},
		{"завтра", 0, false},
		{"", 0, false},
	}

	for _, tc := range cases {
		got, ok := parseDayInput(tc.in)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("parseDayInput(%q) = (%d, %t), want (%d, %t)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestShortTitle(t *testing.T) {
	if got := shortTitle("Матанализ", 20); got != "Матанализ" {
		t.Errorf("shortTitle short = %q", got)
	}
	if got := shortTitle("Дифференциальные уравнения", 10); got != "Дифференц…" {
		t.Errorf("shortTitle long = %q", got)
	}
	if got := shortTitle("Алгоритмы\nи структуры", 40); got != "Алгоритмы и структуры" {
		t.Errorf("shortTitle newline = %q", got)
	}
}

func TestSkipConfirmCancelInputs(t *testing.T) {
	if !isSkipInput(btnSkip) || !isSkipInput("пропустить") || !isSkipInput("-") {
		t.Error("skip inputs not recognized")
	}
	if isSkipInput("Среда") {
		t.Error("day name treated as skip")
	}
	if !isConfirmInput(btnConfirm) || !isConfirmInput("да") {
		t.Error("confirm inputs not recognized")
	}
	if !isCancelInput(btnCancel) || !isCancelDialogInput(btnCancelDialog) {
		t.Error("cancel inputs not recognized")
	}
}

package service

import (
	"strings"
	"testing"

	"binary_bot/internal/models"
)

func TestFormatEvaluation(t *testing.T) {
	got := formatEvaluation(models.Evaluation{Symbol: "EUR-USD", Side: models.SideCall, Reason: "отскок от нижней полосы"})
	if !strings.Contains(got, "CALL") || !strings.Contains(got, "EUR-USD") {
		t.Errorf("formatEvaluation: %q", got)
	}

	got = formatEvaluation(models.Evaluation{Symbol: "GBP-USD", Reason: "15m: нет сетапа"})
	if strings.Contains(got, "CALL") || strings.Contains(got, "PUT") {
		t.Errorf("no-signal evaluation must not carry a side: %q", got)
	}
	if !strings.Contains(got, "15m: нет сетапа") {
		t.Errorf("reason lost: %q", got)
	}
}

func TestFormatEvaluations_CountsDropped(t *testing.T) {
	evs := []models.Evaluation{
		{Symbol: "EUR-USD", Side: models.SidePut, Reason: "откат от верхней полосы"},
		{Symbol: "GBP-USD", Reason: "1m: сетап без подтверждения"},
	}
	got := formatEvaluations(evs, 4)
	if !strings.Contains(got, "Без ответа: 2") {
		t.Errorf("dropped count missing: %q", got)
	}
	if !strings.Contains(got, "PUT EUR-USD") {
		t.Errorf("signal line missing: %q", got)
	}
}

func TestFormatSettlement(t *testing.T) {
	got := formatSettlement(7, models.ResultWin, 2.40, 202.40)
	if !strings.Contains(got, "#7") || !strings.Contains(got, "+2.40") || !strings.Contains(got, "202.40") {
		t.Errorf("win settlement: %q", got)
	}

	got = formatSettlement(8, models.ResultLoss, -3.04, 196.96)
	if !strings.Contains(got, "3.04") || !strings.Contains(got, "196.96") {
		t.Errorf("loss settlement: %q", got)
	}
}

func TestFormatSignalTrade_ZeroStakeHint(t *testing.T) {
	ev := models.Evaluation{Symbol: "EUR-USD", Side: models.SideCall, Reason: "отскок"}
	got := formatSignalTrade(ev, 3, 0, "5m")
	if !strings.Contains(got, "/config") {
		t.Errorf("zero stake must point to /config: %q", got)
	}
}

func TestParseCallbackData(t *testing.T) {
	verb, id := parseCallbackData("WIN::42")
	if verb != "WIN" || id != "42" {
		t.Errorf("got %q %q", verb, id)
	}
	if v, p := parseCallbackData("garbage"); v != "" || p != "" {
		t.Errorf("garbage parsed: %q %q", v, p)
	}
}

func TestParseFloatComma(t *testing.T) {
	v, err := parseFloat("1,5")
	if err != nil || v != 1.5 {
		t.Errorf("parseFloat(1,5) = %v, %v", v, err)
	}
}

package forms

import (
	"testing"

	"github.com/Its-donkey/circuit-console/internal/ui/model"
)

func TestValidateToken(t *testing.T) {
	cases := []struct {
		name  string
		token string
		min   int
		ok    bool
	}{
		{name: "empty", token: "", min: 1, ok: false},
		{name: "blank", token: "   ", min: 1, ok: false},
		{name: "non-empty without minimum", token: "x", min: 0, ok: true},
		{name: "minimum of one", token: "x", min: 1, ok: true},
		{name: "too short", token: "abc123", min: DefaultMinTokenLength, ok: false},
		{name: "exact minimum", token: "abc1234567", min: DefaultMinTokenLength, ok: true},
		{name: "padded", token: "  abc1234567  ", min: DefaultMinTokenLength, ok: true},
	}
	for _, tc := range cases {
		err := ValidateToken(tc.token, tc.min)
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("%s: expected validation error", tc.name)
			}
			if err.Field != FieldToken {
				t.Fatalf("%s: expected token field, got %q", tc.name, err.Field)
			}
		}
	}
}

func TestValidateSubmissionOrder(t *testing.T) {
	disconnected := model.Session{}
	connected := model.Session{Connected: true}

	err := ValidateSubmission(disconnected, SubmitInput{Code: "", Mode: model.ModeSampler}, MatchSubstring)
	if err == nil || err.Field != FieldConnection {
		t.Fatalf("expected connection guard first, got %+v", err)
	}

	err = ValidateSubmission(connected, SubmitInput{Code: " \t", Mode: model.ModeSampler}, MatchSubstring)
	if err == nil || err.Field != FieldCode {
		t.Fatalf("expected code guard, got %+v", err)
	}

	err = ValidateSubmission(connected, SubmitInput{Code: "qc.h(0)", Mode: model.ModeSampler}, MatchSubstring)
	if err == nil || err.Field != FieldMeasure {
		t.Fatalf("expected measurement guard, got %+v", err)
	}

	if err := ValidateSubmission(connected, SubmitInput{Code: "qc.h(0)", Mode: model.ModeLocal}, MatchSubstring); err != nil {
		t.Fatalf("local mode should not require measurements: %v", err)
	}
	if err := ValidateSubmission(connected, SubmitInput{Code: "qc.measure(0, 0)", Mode: model.ModeSampler}, MatchSubstring); err != nil {
		t.Fatalf("expected measured circuit to pass: %v", err)
	}
}

func TestMeasureMatchStrategies(t *testing.T) {
	cases := []struct {
		code      string
		substring bool
		word      bool
	}{
		{code: "qc.measure(0, 0)", substring: true, word: true},
		{code: "qc.measure_all()", substring: true, word: true},
		{code: "# no measurements yet", substring: true, word: false},
		{code: "qc.remeasured = 1", substring: true, word: false},
		{code: "qc.h(0)", substring: false, word: false},
	}
	for _, tc := range cases {
		if got := MatchSubstring.HasMeasurement(tc.code); got != tc.substring {
			t.Fatalf("substring %q: expected %v got %v", tc.code, tc.substring, got)
		}
		if got := MatchWord.HasMeasurement(tc.code); got != tc.word {
			t.Fatalf("word %q: expected %v got %v", tc.code, tc.word, got)
		}
	}
}

func TestParseMeasureMatchDefaultsToSubstring(t *testing.T) {
	if ParseMeasureMatch("") != MatchSubstring {
		t.Fatal("expected substring default")
	}
	if ParseMeasureMatch(" WORD ") != MatchWord {
		t.Fatal("expected word match")
	}
}

func TestBuildSubmissionRequestTrims(t *testing.T) {
	req := BuildSubmissionRequest(SubmitInput{
		Code:   "\nqc.measure(0, 0)\n",
		Target: "ibmq_1",
		Mode:   model.ModeSampler,
		Shots:  1024,
		Token:  " abc1234567 ",
	})
	if req.Code != "qc.measure(0, 0)" || req.Token != "abc1234567" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if req.Target != "ibmq_1" || req.Mode != model.ModeSampler || req.Shots != 1024 {
		t.Fatalf("unexpected request fields: %+v", req)
	}
}

package ua

import "testing"

func TestStatusCodeSeverity(t *testing.T) {
	tests := []struct {
		code      StatusCode
		good, bad bool
	}{
		{Good, true, false},
		{BadNodeIDUnknown, false, true},
		{BadTimeout, false, true},
		{UncertainInitialValue, false, false},
	}

	for _, tt := range tests {
		if got := tt.code.IsGood(); got != tt.good {
			t.Errorf("%v.IsGood() = %v, want %v", tt.code, got, tt.good)
		}
		if got := tt.code.IsBad(); got != tt.bad {
			t.Errorf("%v.IsBad() = %v, want %v", tt.code, got, tt.bad)
		}
	}

	if !UncertainInitialValue.IsUncertain() {
		t.Error("uncertain severity not detected")
	}
}

func TestStatusCodeString(t *testing.T) {
	tests := []struct {
		code StatusCode
		want string
	}{
		{Good, "Good"},
		{BadNodeIDUnknown, "BadNodeIDUnknown"},
		{BadContinuationPointInvalid, "BadContinuationPointInvalid"},
		{StatusCode(0x812A0000), "0x812A0000"},
	}

	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("StatusCode(0x%08X).String() = %q, want %q", uint32(tt.code), got, tt.want)
		}
	}
}

func TestStatusCodeAsError(t *testing.T) {
	var err error = BadSessionNotActivated
	if err.Error() != "BadSessionNotActivated" {
		t.Errorf("error message = %q", err.Error())
	}
}

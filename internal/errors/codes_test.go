package errors

import "testing"

func TestErrorRegistryCoversEveryCode(t *testing.T) {
	codes := []string{
		TYP001, TYP002, TYP003, TYP004, TYP005, TYP006, TYP007, TYP008,
		NAM001, NAM002, NAM003,
		IDX001, IDX002, IDX003,
		RTT001, RTT002, RTT003,
		VER001, VER002, VER003, VER004,
		INT001, INT002, INT003,
	}
	for _, c := range codes {
		if _, ok := GetErrorInfo(c); !ok {
			t.Errorf("code %s missing from ErrorRegistry", c)
		}
	}
}

func TestIsKind(t *testing.T) {
	if !IsKind(TYP001, "TypeError") {
		t.Errorf("expected TYP001 to be a TypeError")
	}
	if !IsKind(VER001, "VerificationFailure") {
		t.Errorf("expected VER001 to be a VerificationFailure")
	}
	if IsKind(VER001, "TypeError") {
		t.Errorf("VER001 should not be a TypeError")
	}
	if IsKind("NOPE000", "TypeError") {
		t.Errorf("unknown code should not match any kind")
	}
}

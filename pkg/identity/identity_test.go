package identity

import (
	"fmt"
	"testing"
)

func TestComputeID_Vectors(t *testing.T) {
	tests := []struct {
		serial string
		secret string
		want   string
	}{
		{"IMEI123456789", "hunter2", "991462421015"},
		{"IMEI123456789", "hunter3", "458290554713"},
		{"IMEI123456789", "", "720723340141"},
		{"866123456789012", "s3cret", "459557316345"},
		{"", "", "977923228312"},
		// leading zero must survive formatting
		{"dev175", "x", "0548107660"},
	}

	for _, tt := range tests {
		t.Run(tt.serial+"/"+tt.secret, func(t *testing.T) {
			if got := ComputeID(tt.serial, tt.secret); got != tt.want {
				t.Errorf("ComputeID(%q, %q) = %q, want %q", tt.serial, tt.secret, got, tt.want)
			}
		})
	}
}

func TestComputeID_Deterministic(t *testing.T) {
	for i := 0; i < 50; i++ {
		serial := fmt.Sprintf("serial-%d", i)
		secret := fmt.Sprintf("secret-%d", i)
		a := ComputeID(serial, secret)
		b := ComputeID(serial, secret)
		if a != b {
			t.Fatalf("ComputeID not deterministic: %q vs %q", a, b)
		}
		if !Valid(a) {
			t.Errorf("ComputeID(%q, %q) = %q is not a valid id", serial, secret, a)
		}
	}
}

func TestComputeID_InputSensitivity(t *testing.T) {
	seen := make(map[string]string)
	for i := 0; i < 200; i++ {
		key := fmt.Sprintf("IMEI%09d", i)
		id := ComputeID(key, "secret")
		if prev, ok := seen[id]; ok {
			t.Errorf("ComputeID collision between %s and %s", prev, key)
		}
		seen[id] = key
	}

	if ComputeID("a", "b") == ComputeID("a", "c") {
		t.Error("changing the secret did not change the id")
	}
}

func TestComputeID_NoSeparator(t *testing.T) {
	// serial and secret are concatenated without a separator
	if ComputeID("ab", "c") != ComputeID("a", "bc") {
		t.Error("expected plain concatenation of serial and secret")
	}
}

func TestVerify(t *testing.T) {
	id := ComputeID("IMEI123456789", "hunter2")
	if !Verify("IMEI123456789", "hunter2", id) {
		t.Error("Verify() = false for matching id")
	}
	if Verify("IMEI123456789", "hunter2", "0000000000") {
		t.Error("Verify() = true for wrong id")
	}
	if Verify("IMEI123456789", "wrong", id) {
		t.Error("Verify() = true for wrong secret")
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"0000000000", true},
		{"1099511627775", true},
		{"123456789", false},
		{"12345678901234", false},
		{"12345abcde", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := Valid(tt.in); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIdentity_WithSecret(t *testing.T) {
	base := New("IMEI123456789")
	if base.HasSecret() {
		t.Error("New() should have no secret")
	}

	paired := base.WithSecret("hunter2")
	if base.Secret != "" {
		t.Error("WithSecret() mutated the receiver")
	}
	if !paired.HasSecret() {
		t.Error("WithSecret() result should have a secret")
	}
	if paired.ID() != ComputeID("IMEI123456789", "hunter2") {
		t.Errorf("ID() = %q", paired.ID())
	}
}

package repository

import "testing"

func TestSplitToken(t *testing.T) {
	tests := []struct {
		in     string
		id     int64
		hasID  bool
		secret string
	}{
		{in: "12|abc", id: 12, hasID: true, secret: "abc"},
		{in: "abc", secret: "abc"},
		{in: "x|abc", secret: "abc"},
		{in: "|abc", secret: "|abc"},
	}
	for _, tt := range tests {
		id, secret := splitToken(tt.in)
		if (id != nil) != tt.hasID || (id != nil && *id != tt.id) {
			t.Errorf("%q: unexpected id %v", tt.in, id)
		}
		if secret != tt.secret {
			t.Errorf("%q: expected secret %q, got %q", tt.in, tt.secret, secret)
		}
	}
}

func TestHashToken(t *testing.T) {
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := hashToken("abc"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

package source

import "testing"

func TestPosOrdering(t *testing.T) {
	a := Pos{Line: 3, Col: 7}
	b := Pos{Line: 3, Col: 9}
	c := Pos{Line: 4, Col: 1}

	if !a.Before(b) || !b.Before(c) || c.Before(a) {
		t.Fatalf("unexpected ordering between %v %v %v", a, b, c)
	}
	if a.Before(a) {
		t.Fatal("position must not precede itself")
	}
}

func TestPosString(t *testing.T) {
	if got := (Pos{Line: 12, Col: 4}).String(); got != "12:4" {
		t.Errorf("got %q", got)
	}
	if got := NoPos.String(); got != "?" {
		t.Errorf("zero position printed as %q", got)
	}
	if NoPos.IsValid() {
		t.Error("zero position must be invalid")
	}
}

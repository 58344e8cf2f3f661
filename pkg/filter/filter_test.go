package filter

import "testing"

func TestHardFilterIncludeExclude(t *testing.T) {
	f := NewHardFilter([]string{"*.txt"}, []string{"secret.txt"}, false)

	if !f.PassFile("notes.txt") {
		t.Fatal("expected notes.txt to pass")
	}
	if f.PassFile("secret.txt") {
		t.Fatal("expected secret.txt to be excluded")
	}
	if f.PassFile("image.png") {
		t.Fatal("expected image.png to fail the include mask")
	}
}

func TestHardFilterCaseInsensitive(t *testing.T) {
	f := NewHardFilter([]string{"*.TXT"}, nil, true)
	if !f.PassFile("notes.txt") {
		t.Fatal("expected case-insensitive match to pass")
	}
}

func TestSoftFilterMatchFolderDeactivatedByDateFilter(t *testing.T) {
	active := NewSoftFilter(1000, 0, 1<<40)
	if active.MatchFolder() {
		t.Fatal("expected folders to be deactivated when a date filter is active")
	}
	if !NoSoftFilter.MatchFolder() {
		t.Fatal("expected folders to remain active with no date filter")
	}
}

func TestSoftFilterSizeRange(t *testing.T) {
	f := NewSoftFilter(0, 10, 100)
	if f.MatchSize(5) {
		t.Fatal("expected size below minimum to fail")
	}
	if !f.MatchSize(50) {
		t.Fatal("expected size within range to pass")
	}
	if f.MatchSize(200) {
		t.Fatal("expected size above maximum to fail")
	}
}

func TestCombineTakesTighterBounds(t *testing.T) {
	a := NewSoftFilter(100, 10, 1000)
	b := NewSoftFilter(200, 20, 500)
	combined := Combine(a, b)
	if combined.timeFrom != 200 || combined.sizeMin != 20 || combined.sizeMax != 500 {
		t.Fatalf("unexpected combined filter: %+v", combined)
	}
}

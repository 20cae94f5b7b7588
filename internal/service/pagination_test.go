package service

import "testing"

func TestPaginate(t *testing.T) {
	cases := []struct {
		name     string
		total    int
		raw      string
		wantNum  int
		wantPgs  int
		wantOffs int
	}{
		{"empty list", 0, "", 1, 1, 0},
		{"empty list high page", 0, "7", 1, 1, 0},
		{"missing param", 9, "", 1, 3, 0},
		{"page zero", 9, "0", 1, 3, 0},
		{"negative", 9, "-2", 1, 3, 0},
		{"non numeric", 9, "abc", 1, 3, 0},
		{"second", 9, "2", 2, 3, 4},
		{"last", 9, "3", 3, 3, 8},
		{"beyond last", 9, "99", 3, 3, 8},
		{"exact multiple", 8, "2", 2, 2, 4},
		{"overflow", 9, "99999999999999999999999", 3, 3, 8},
		{"negative overflow", 9, "-99999999999999999999999", 1, 3, 0},
	}

	for _, tc := range cases {
		p := Paginate(tc.total, tc.raw, 4)
		if p.Number != tc.wantNum || p.NumPages != tc.wantPgs || p.Offset() != tc.wantOffs {
			t.Fatalf("%s: got page %d/%d offset %d; want %d/%d offset %d",
				tc.name, p.Number, p.NumPages, p.Offset(), tc.wantNum, tc.wantPgs, tc.wantOffs)
		}
	}
}

func TestPageNavigation(t *testing.T) {
	p := Paginate(9, "2", 4)
	if !p.HasPrev() || !p.HasNext() || p.Prev() != 1 || p.Next() != 3 {
		t.Fatalf("unexpected navigation for %+v", p)
	}
	first := Paginate(9, "1", 4)
	if first.HasPrev() {
		t.Fatalf("first page has no previous")
	}
	last := Paginate(9, "3", 4)
	if last.HasNext() {
		t.Fatalf("last page has no next")
	}
}

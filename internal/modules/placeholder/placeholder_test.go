package placeholder

import (
	"slices"
	"testing"

	"google.golang.org/api/docs/v1"
)

func para(runs ...string) *docs.StructuralElement {
	p := &docs.Paragraph{}
	for _, r := range runs {
		if r == "" {
			p.Elements = append(p.Elements, &docs.ParagraphElement{InlineObjectElement: &docs.InlineObjectElement{InlineObjectId: "img"}})
			continue
		}
		p.Elements = append(p.Elements, &docs.ParagraphElement{TextRun: &docs.TextRun{Content: r}})
	}
	return &docs.StructuralElement{Paragraph: p}
}

func table(cells ...[]*docs.StructuralElement) *docs.StructuralElement {
	row := &docs.TableRow{}
	for _, c := range cells {
		row.TableCells = append(row.TableCells, &docs.TableCell{Content: c})
	}
	return &docs.StructuralElement{Table: &docs.Table{TableRows: []*docs.TableRow{row}}}
}

func TestExtractDedupesCaseInsensitivelyKeepingFirstSpelling(t *testing.T) {
	content := []*docs.StructuralElement{
		para("Total: [Order Total]\n"),
		para("again [ORDER TOTAL] and [Customer Email]\n"),
		table(
			[]*docs.StructuralElement{para("[Screenshot Receipt]\n")},
			[]*docs.StructuralElement{para("[customer email]\n")},
		),
	}

	got := slices.Collect(Extract(content))
	want := []string{"[Customer Email]", "[Order Total]", "[Screenshot Receipt]"}
	if !slices.Equal(got, want) {
		t.Fatalf("got=%q want=%q", got, want)
	}
}

func TestExtractJoinsRunsBeforeMatching(t *testing.T) {
	content := []*docs.StructuralElement{para("Due: [Order ", "Total]\n")}
	if got := slices.Collect(Extract(content)); !slices.Equal(got, []string{"[Order Total]"}) {
		t.Fatalf("split token not joined: %q", got)
	}
}

func TestExtractIsRestartable(t *testing.T) {
	seq := Extract([]*docs.StructuralElement{para("[B] [a] [b]\n")})
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	if !slices.Equal(first, []string{"[a]", "[B]"}) {
		t.Fatalf("first pass: %q", first)
	}
	if !slices.Equal(first, second) {
		t.Fatalf("second pass differs: %q vs %q", first, second)
	}
}

func TestExtractEmpty(t *testing.T) {
	if got := slices.Collect(Extract(nil)); len(got) != 0 {
		t.Fatalf("nil content: %q", got)
	}
	if got := slices.Collect(Extract([]*docs.StructuralElement{para("no tokens here\n")})); len(got) != 0 {
		t.Fatalf("no tokens: %q", got)
	}
}

func TestLocateCountsNonTextElementsAndTables(t *testing.T) {
	content := []*docs.StructuralElement{
		// "Hi " is 3 units, the inline image counts 1, then the token.
		para("Hi ", "", "[Screenshot A]\n"),
		table([]*docs.StructuralElement{para("x[screenshot b]\n")}),
	}

	locs := Locate(content, IsScreenshot)
	if len(locs) != 2 {
		t.Fatalf("expected 2 locations, got %+v", locs)
	}
	if want := (Location{Token: "[Screenshot A]", StartIndex: 5, EndIndex: 19}); locs[0] != want {
		t.Fatalf("paragraph token: got=%+v want=%+v", locs[0], want)
	}
	// First paragraph spans 1..20 (3 + 1 + 15), the cell text starts at 20.
	if want := (Location{Token: "[screenshot b]", StartIndex: 21, EndIndex: 35}); locs[1] != want {
		t.Fatalf("cell token: got=%+v want=%+v", locs[1], want)
	}
}

func TestLocateUsesUTF16Units(t *testing.T) {
	// The emoji is two UTF-16 code units and four UTF-8 bytes.
	locs := Locate([]*docs.StructuralElement{para("😀é[Screenshot]\n")}, IsScreenshot)
	if len(locs) != 1 || locs[0].StartIndex != 4 || locs[0].EndIndex != 16 {
		t.Fatalf("unexpected locations %+v", locs)
	}
}

func TestLocateFiltersAndSortsDescending(t *testing.T) {
	content := []*docs.StructuralElement{para("[Screenshot 1] [Order Total] [Screenshot 2]\n")}
	locs := Locate(content, IsScreenshot)
	if len(locs) != 2 {
		t.Fatalf("expected 2 screenshot locations, got %+v", locs)
	}
	SortDescending(locs)
	if locs[0].Token != "[Screenshot 2]" || locs[0].StartIndex <= locs[1].StartIndex {
		t.Fatalf("not descending: %+v", locs)
	}
	if all := Locate(content, nil); len(all) != 3 {
		t.Fatalf("nil filter keeps every token, got %+v", all)
	}
}

func TestHelpers(t *testing.T) {
	if !IsScreenshot("[Refund SCREENSHOT]") || IsScreenshot("[Order Total]") {
		t.Fatal("IsScreenshot mismatch")
	}
	if got := Inner("[Order Total]"); got != "Order Total" {
		t.Fatalf("Inner: %q", got)
	}
	if got := Key("[Order Total]"); got != "[order total]" {
		t.Fatalf("Key: %q", got)
	}
}

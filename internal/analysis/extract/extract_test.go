package extract

import (
	"errors"
	"testing"
)

func TestAssemble_OrdersPages(t *testing.T) {
	pages := []rawPage{
		{Number: 3, Content: "page three"},
		{Number: 1, Content: "page one"},
	}

	extracted, err := assemble(pages, 3)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}

	if extracted.PageCount != 3 {
		t.Errorf("PageCount got %d, want 3", extracted.PageCount)
	}
	if len(extracted.Pages) != 3 {
		t.Fatalf("Pages length got %d, want 3", len(extracted.Pages))
	}
	if extracted.Pages[0] != "page one" || extracted.Pages[1] != "" || extracted.Pages[2] != "page three" {
		t.Errorf("page order wrong: %v", extracted.Pages)
	}
	if extracted.Text != "page one\n\npage three" {
		t.Errorf("Text got %q", extracted.Text)
	}
}

func TestAssemble_NoTextAnywhere(t *testing.T) {
	pages := []rawPage{
		{Number: 1, Content: "   "},
		{Number: 2, Content: "\n\t"},
	}

	_, err := assemble(pages, 2)
	if !errors.Is(err, ErrNoText) {
		t.Fatalf("want ErrNoText, got %v", err)
	}
}

func TestAssemble_IgnoresOutOfRangePages(t *testing.T) {
	pages := []rawPage{
		{Number: 0, Content: "bogus"},
		{Number: 5, Content: "bogus"},
		{Number: 1, Content: "real"},
	}

	extracted, err := assemble(pages, 2)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if extracted.Text != "real\n" {
		t.Errorf("Text got %q", extracted.Text)
	}
}

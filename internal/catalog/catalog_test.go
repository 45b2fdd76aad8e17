package catalog

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

const productsXML = `<?xml version="1.0" encoding="UTF-8"?>
<products>
  <product>
    <sku>1</sku>
    <name>Sony - 55" Class
LED TV</name>
    <categoryPath>
      <category><id>cat00000</id><name>Best Buy</name></category>
      <category><id>abcat0101001</id><name>TVs</name></category>
    </categoryPath>
  </product>
  <product>
    <sku>2</sku>
    <name></name>
    <categoryPath><category><id>abcat0101001</id></category></categoryPath>
  </product>
  <product>
    <sku>3</sku>
    <name>No category</name>
    <categoryPath></categoryPath>
  </product>
  <product>
    <sku>4</sku>
    <name>HDMI Cable</name>
    <categoryPath><category><id>abcat0107015</id></category></categoryPath>
  </product>
</products>`

func TestDecode(t *testing.T) {
	var got []Product
	skipped, err := Decode(strings.NewReader(productsXML), func(p Product) error {
		got = append(got, p)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if skipped != 2 {
		t.Errorf("skipped = %d, want 2", skipped)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 products, got %d", len(got))
	}
	if got[0].CategoryID != "abcat0101001" {
		t.Errorf("leaf category = %q", got[0].CategoryID)
	}
	if got[0].Name != `Sony - 55" Class LED TV` {
		t.Errorf("name = %q, newlines should become spaces", got[0].Name)
	}
}

func TestDecode_CallbackError(t *testing.T) {
	stop := errors.New("stop")
	_, err := Decode(strings.NewReader(productsXML), func(Product) error { return stop })
	if !errors.Is(err, stop) {
		t.Fatalf("expected callback error, got %v", err)
	}
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode(strings.NewReader("<products><product><name>x</products>"), func(Product) error { return nil })
	if err == nil {
		t.Fatal("expected error for malformed xml")
	}
}

func TestReadDir(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"a.xml":      productsXML,
		"b.xml":      productsXML,
		"readme.txt": "not xml",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	c := NewCollector()
	if err := ReadDir(context.Background(), dir, zap.NewNop(), c.Add); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.products) != 4 {
		t.Errorf("expected 4 products from 2 files, got %d", len(c.products))
	}
	if c.Categories() != 2 {
		t.Errorf("Categories() = %d", c.Categories())
	}
}

func TestReadDir_Cancelled(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.xml"), []byte(productsXML), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := ReadDir(ctx, dir, zap.NewNop(), NewCollector().Add); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSelect_MinMax(t *testing.T) {
	c := NewCollector()
	add := func(cat string, n int) {
		for i := 0; i < n; i++ {
			_ = c.Add(Product{Name: cat + " item", CategoryID: cat})
		}
	}
	add("small", 2)
	add("fits", 5)
	add("big", 8)

	got := c.Select(Options{MinPerCategory: 3, MaxPerCategory: 6})

	counts := map[string]int{}
	for _, p := range got {
		counts[p.CategoryID]++
	}
	if counts["small"] != 0 {
		t.Errorf("small category should be dropped, got %d", counts["small"])
	}
	if counts["fits"] != 5 {
		t.Errorf("fits = %d, want 5", counts["fits"])
	}
	if counts["big"] != 6 {
		t.Errorf("big = %d, want 6 (capped)", counts["big"])
	}
}

func TestSelect_NoCap(t *testing.T) {
	c := NewCollector()
	for i := 0; i < 3; i++ {
		_ = c.Add(Product{Name: "x", CategoryID: "c"})
	}
	if got := c.Select(Options{}); len(got) != 3 {
		t.Errorf("expected all 3 products, got %d", len(got))
	}
}

func TestWriteFastText(t *testing.T) {
	var buf bytes.Buffer
	products := []Product{
		{Name: "Sony TV", CategoryID: "abcat0101001"},
		{Name: "HDMI Cable", CategoryID: "abcat0107015"},
	}
	if err := WriteFastText(&buf, products); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "__label__abcat0101001 Sony TV\n__label__abcat0107015 HDMI Cable\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`Sony - 55" Class LED TV`, "sony 55 class led tv"},
		{"  Apple® iPod   Touch  ", "apple ipod touch"},
		{"Ünïcode Straße", "ünïcode straße"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSelect_Normalize(t *testing.T) {
	c := NewCollector()
	_ = c.Add(Product{Name: "HDMI-Cable", CategoryID: "c"})

	got := c.Select(Options{MinPerCategory: 1, Normalize: true})
	if len(got) != 1 || got[0].Name != "hdmi cable" {
		t.Errorf("got %+v", got)
	}
}

package catalog

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Default category size bounds for training data.
const (
	DefaultMinPerCategory = 5
	DefaultMaxPerCategory = 50
)

const labelPrefix = "__label__"

// Options controls which products make it into the training set.
type Options struct {
	// MinPerCategory drops categories with fewer products.
	MinPerCategory int
	// MaxPerCategory keeps at most this many products per category, in read order.
	MaxPerCategory int
	// Normalize lowercases names and strips punctuation.
	Normalize bool
}

// Collector accumulates products and selects a balanced training set.
type Collector struct {
	products []Product
	counts   map[string]int
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{counts: make(map[string]int)}
}

// Add records a product. It satisfies the ReadDir/Decode callback.
func (c *Collector) Add(p Product) error {
	c.products = append(c.products, p)
	c.counts[p.CategoryID]++
	return nil
}

// Categories returns the number of distinct categories seen.
func (c *Collector) Categories() int { return len(c.counts) }

// Select returns the products of categories with at least MinPerCategory
// entries, capped at MaxPerCategory each. Read order is preserved.
// A non-positive Max means no cap.
func (c *Collector) Select(opts Options) []Product {
	emitted := make(map[string]int, len(c.counts))
	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if c.counts[p.CategoryID] < opts.MinPerCategory {
			continue
		}
		if opts.MaxPerCategory > 0 && emitted[p.CategoryID] >= opts.MaxPerCategory {
			continue
		}
		emitted[p.CategoryID]++
		if opts.Normalize {
			p.Name = NormalizeName(p.Name)
		}
		out = append(out, p)
	}
	return out
}

// WriteFastText writes one "__label__<category> <name>" line per product.
func WriteFastText(w io.Writer, products []Product) error {
	bw := bufio.NewWriter(w)
	for _, p := range products {
		if _, err := fmt.Fprintf(bw, "%s%s %s\n", labelPrefix, p.CategoryID, p.Name); err != nil {
			return fmt.Errorf("write line: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

var lowerCaser = cases.Lower(language.English)

// NormalizeName lowercases a product name, replaces punctuation with spaces and
// collapses whitespace: "Sony - 55\" Class LED" -> "sony 55 class led".
func NormalizeName(name string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, lowerCaser.String(name))
	return strings.Join(strings.Fields(mapped), " ")
}

package catalog

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Product is a catalog entry reduced to what the category classifier needs.
type Product struct {
	Name string
	// CategoryID is the leaf of the product's category path.
	CategoryID string
}

type rawProduct struct {
	Name         string `xml:"name"`
	CategoryPath struct {
		Categories []struct {
			ID string `xml:"id"`
		} `xml:"category"`
	} `xml:"categoryPath"`
}

// product validates the raw element. Products without a name or a leaf category are skipped.
func (r rawProduct) product() (Product, bool) {
	cats := r.CategoryPath.Categories
	if r.Name == "" || len(cats) == 0 {
		return Product{}, false
	}
	leaf := strings.TrimSpace(cats[len(cats)-1].ID)
	if leaf == "" {
		return Product{}, false
	}
	return Product{
		Name:       strings.ReplaceAll(r.Name, "\n", " "),
		CategoryID: leaf,
	}, true
}

// Decode streams <product> elements from r and calls fn for every valid one.
// It returns the number of skipped products.
func Decode(r io.Reader, fn func(Product) error) (int, error) {
	dec := xml.NewDecoder(r)
	skipped := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return skipped, nil
		}
		if err != nil {
			return skipped, fmt.Errorf("read xml: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "product" {
			continue
		}

		var raw rawProduct
		if err := dec.DecodeElement(&raw, &start); err != nil {
			return skipped, fmt.Errorf("decode product: %w", err)
		}
		p, ok := raw.product()
		if !ok {
			skipped++
			continue
		}
		if err := fn(p); err != nil {
			return skipped, err
		}
	}
}

// ReadDir decodes every *.xml file in dir, in name order.
func ReadDir(ctx context.Context, dir string, logger *zap.Logger, fn func(Product) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read product dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".xml") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err //nolint:wrapcheck // cancellation is returned as is
		}

		path := filepath.Join(dir, e.Name())
		logger.Info("Processing product file", zap.String("file", path))

		skipped, err := decodeFile(path, fn)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if skipped > 0 {
			logger.Debug("Skipped products without name or category",
				zap.String("file", path), zap.Int("skipped", skipped))
		}
	}
	return nil
}

func decodeFile(path string, fn func(Product) error) (int, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return 0, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	return Decode(f, fn)
}

package filestore

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/quantshop/storefront/internal/domain/product"
)

var _ product.Repository = (*ProductStore)(nil)

// ProductStore reads the product catalog from a JSON document.
type ProductStore struct {
	path string
}

// NewProductStore returns a ProductStore backed by the given file.
func NewProductStore(path string) *ProductStore {
	return &ProductStore{path: path}
}

// ListActive returns every active product in the document.
func (s *ProductStore) ListActive(_ context.Context) ([]product.Product, error) {
	data, err := readDocument(s.path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	all, err := decodeProducts(data)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", s.path)
	}

	active := all[:0]
	for _, p := range all {
		if p.Active {
			active = append(active, p)
		}
	}
	return active, nil
}

func decodeProducts(data []byte) ([]product.Product, error) {
	var products []product.Product
	d := jx.DecodeBytes(data)
	err := d.Arr(func(d *jx.Decoder) error {
		var p product.Product
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "id":
				p.ID, err = d.Str()
			case "name":
				p.Name, err = d.Str()
			case "description":
				p.Description, err = d.Str()
			case "category":
				p.Category, err = d.Str()
			case "type":
				p.Type, err = d.Str()
			case "price":
				p.Price, err = decodeDecimal(d)
			case "featured":
				p.Featured, err = d.Bool()
			case "active":
				p.Active, err = d.Bool()
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		products = append(products, p)
		return nil
	})
	return products, err
}

package filestore

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/quantshop/storefront/internal/domain/order"
)

var _ order.Repository = (*OrderStore)(nil)

// OrderStore keeps the order history in a JSON document. Appends rewrite the
// whole document atomically; the mutex serializes concurrent writers.
type OrderStore struct {
	path string
	mu   sync.Mutex
}

// NewOrderStore returns an OrderStore backed by the given file.
func NewOrderStore(path string) *OrderStore {
	return &OrderStore{path: path}
}

// ListAll returns the full order history in document order.
func (s *OrderStore) ListAll(_ context.Context) ([]order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Create appends an order and rewrites the document.
func (s *OrderStore) Create(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.load()
	if err != nil {
		return err
	}
	orders = append(orders, *o)

	return writeDocument(s.path, encodeOrders(orders))
}

func (s *OrderStore) load() ([]order.Order, error) {
	data, err := readDocument(s.path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	orders, err := decodeOrders(data)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", s.path)
	}
	return orders, nil
}

func decodeOrders(data []byte) ([]order.Order, error) {
	var orders []order.Order
	d := jx.DecodeBytes(data)
	err := d.Arr(func(d *jx.Decoder) error {
		var o order.Order
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "id":
				o.ID, err = d.Str()
			case "productId":
				o.ProductID, err = d.Str()
			case "amount":
				o.Amount, err = decodeDecimal(d)
			case "createdAt":
				var raw string
				if raw, err = d.Str(); err == nil {
					o.CreatedAt, err = time.Parse(time.RFC3339, raw)
				}
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		orders = append(orders, o)
		return nil
	})
	return orders, err
}

func encodeOrders(orders []order.Order) []byte {
	var e jx.Encoder
	e.SetIdent(2)
	e.ArrStart()
	for _, o := range orders {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(o.ID)
		if o.ProductID != "" {
			e.FieldStart("productId")
			e.Str(o.ProductID)
		}
		e.FieldStart("amount")
		e.Str(o.Amount.String())
		e.FieldStart("createdAt")
		e.Str(o.CreatedAt.UTC().Format(time.RFC3339))
		e.ObjEnd()
	}
	e.ArrEnd()
	return e.Bytes()
}

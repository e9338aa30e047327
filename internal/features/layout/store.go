package layout

import (
	"context"
	"errors"
	"fmt"

	"go-hse/internal/kvstore"
)

// Bumping the version abandons every stored layout and starts users from the default.
const (
	layoutKeyPrefix  = "hse_unified_dashboard_layout_"
	LayoutKeyVersion = "v5"
)

var ErrCorruptLayout = errors.New("stored layout is not decodable")

// LayoutKey namespaces a layout document by company, user and dashboard.
func LayoutKey(companyID, userID, dashboard string) string {
	return fmt.Sprintf("%s%s:%s:%s:%s", layoutKeyPrefix, LayoutKeyVersion, companyID, userID, dashboard)
}

// LayoutStore reads and writes one layout document under a fixed key.
type LayoutStore struct {
	kv  kvstore.Store
	key string
}

func NewLayoutStore(kv kvstore.Store, key string) *LayoutStore {
	return &LayoutStore{kv: kv, key: key}
}

func (s *LayoutStore) Key() string {
	return s.key
}

// Load returns (nil, nil) when nothing is stored under the key and ErrCorruptLayout when
// the stored value cannot be decoded.
func (s *LayoutStore) Load(ctx context.Context) (*LayoutDocument, error) {
	raw, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	doc, err := DecodeDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptLayout, err)
	}
	return &doc, nil
}

// Save writes an already encoded document.
func (s *LayoutStore) Save(ctx context.Context, encoded string) error {
	return s.kv.Set(ctx, s.key, encoded)
}

func (s *LayoutStore) Reset(ctx context.Context) error {
	return s.kv.Remove(ctx, s.key)
}

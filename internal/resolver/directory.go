// Package resolver maps free-form tickers and coin names to provider asset ids.
package resolver

import (
	"errors"
	"fmt"
	"strings"

	"SignalSG/internal/model"
)

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("asset not found")

// NotFoundError reports a query that matched no lookup variant.
type NotFoundError struct {
	Query string // raw user input
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("could not find coin with ticker %q", e.Query)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Directory maps normalized symbols and hyphenated names to asset ids.
// It is read-only after NewDirectory returns.
type Directory struct {
	ids        map[string]string
	collisions map[string][]string
}

// NewDirectory indexes every asset under its symbol and its hyphen-joined
// name. On a key collision the asset listed last wins.
func NewDirectory(assets []model.Asset) *Directory {
	d := &Directory{
		ids:        make(map[string]string, len(assets)*2),
		collisions: make(map[string][]string),
	}
	for _, a := range assets {
		if a.ID == "" {
			continue
		}
		d.put(model.NormalizeQuery(a.Symbol), a.ID)
		d.put(nameKey(a.Name), a.ID)
	}
	return d
}

func nameKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

func (d *Directory) put(key, id string) {
	if key == "" {
		return
	}
	if prev, ok := d.ids[key]; ok && prev != id {
		if len(d.collisions[key]) == 0 {
			d.collisions[key] = []string{prev}
		}
		d.collisions[key] = append(d.collisions[key], id)
	}
	d.ids[key] = id
}

// Len returns the number of keys in the directory.
func (d *Directory) Len() int { return len(d.ids) }

// Collisions returns every id that was written under key, in insertion
// order, or nil if the key is unambiguous.
func (d *Directory) Collisions(key string) []string {
	return d.collisions[key]
}

// AmbiguousKeys returns the number of keys claimed by more than one asset.
func (d *Directory) AmbiguousKeys() int { return len(d.collisions) }

// Variants returns the keys tried for a query, in lookup order.
func Variants(query string) []string {
	q := model.NormalizeQuery(query)
	stripped := strings.ReplaceAll(strings.ReplaceAll(q, "usdt", ""), "usd", "")
	return []string{q, q + "-", "-" + q, stripped}
}

// Lookup resolves query to an asset id. key is the directory key that
// matched, which callers can pass to Collisions.
func (d *Directory) Lookup(query string) (id, key string, err error) {
	if model.NormalizeQuery(query) == "" {
		return "", "", &NotFoundError{Query: query}
	}
	for _, v := range Variants(query) {
		if v == "" {
			continue
		}
		if found, ok := d.ids[v]; ok {
			return found, v, nil
		}
	}
	return "", "", &NotFoundError{Query: query}
}

package catalog

import "sync"

// Index keeps the most recently fetched products by id so screens can resolve
// a product id back to its catalog record.
type Index struct {
	mu   sync.RWMutex
	byID map[string]Product
}

func NewIndex() *Index {
	return &Index{byID: make(map[string]Product)}
}

func (i *Index) Put(products ...Product) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, p := range products {
		if p.ID == "" {
			continue
		}
		i.byID[p.ID] = p
	}
}

func (i *Index) Lookup(id string) (Product, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	p, ok := i.byID[id]
	return p, ok
}

func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.byID)
}

package store

import (
	"sync"

	"backend/internal/domain"
)

// State is one immutable snapshot of the three collections. Transitions are
// pure functions from one State value to the next; nothing mutates a snapshot
// after it has been committed.
type State struct {
	Invoices  []domain.Invoice
	Products  []domain.Product
	Customers []domain.Customer
}

func (s State) Clone() State {
	next := State{
		Invoices:  make([]domain.Invoice, len(s.Invoices)),
		Products:  make([]domain.Product, len(s.Products)),
		Customers: make([]domain.Customer, len(s.Customers)),
	}
	copy(next.Invoices, s.Invoices)
	copy(next.Products, s.Products)
	copy(next.Customers, s.Customers)
	return next
}

// WithInvoice applies update to the invoice at index. Out-of-bounds indices
// are a silent no-op: the UI only issues indices it just rendered, so a miss
// is a stale view, not an error.
func (s State) WithInvoice(index int, update func(domain.Invoice) domain.Invoice) State {
	if index < 0 || index >= len(s.Invoices) {
		return s
	}
	next := s.Clone()
	next.Invoices[index] = update(next.Invoices[index])
	return next
}

// WithProduct applies update to the first product whose display name matches.
// Unknown names are a silent no-op.
func (s State) WithProduct(name string, update func(domain.Product) domain.Product) State {
	for i, product := range s.Products {
		if product.Name == name {
			next := s.Clone()
			next.Products[i] = update(next.Products[i])
			return next
		}
	}
	return s
}

// WithCustomer applies update to the first customer whose display name
// matches. Unknown names are a silent no-op.
func (s State) WithCustomer(name string, update func(domain.Customer) domain.Customer) State {
	for i, customer := range s.Customers {
		if customer.CustomerName == name {
			next := s.Clone()
			next.Customers[i] = update(next.Customers[i])
			return next
		}
	}
	return s
}

func (s State) ProductByName(name string) (domain.Product, bool) {
	for _, product := range s.Products {
		if product.Name == name {
			return product, true
		}
	}
	return domain.Product{}, false
}

func (s State) ProductByID(id string) (domain.Product, bool) {
	if id == "" {
		return domain.Product{}, false
	}
	for _, product := range s.Products {
		if product.ID == id {
			return product, true
		}
	}
	return domain.Product{}, false
}

func (s State) CustomerByName(name string) (domain.Customer, bool) {
	for _, customer := range s.Customers {
		if customer.CustomerName == name {
			return customer, true
		}
	}
	return domain.Customer{}, false
}

// Store holds the current snapshot. All writes go through Update or Replace,
// which serialize on the mutex; every transition chain reads the snapshot it
// was handed, never the shared field, so a recalculation pass always sees the
// edit that triggered it.
type Store struct {
	mu    sync.Mutex
	state State
}

func New() *Store {
	return &Store{state: State{
		Invoices:  []domain.Invoice{},
		Products:  []domain.Product{},
		Customers: []domain.Customer{},
	}}
}

// State returns a copy of the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Update applies a pure transition to the current snapshot and commits the
// result atomically.
func (s *Store) Update(transition func(State) State) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = transition(s.state.Clone())
	return s.state.Clone()
}

// Replace swaps in a whole new snapshot, discarding all prior data. Used for
// the bulk replacement that follows a successful upload.
func (s *Store) Replace(next State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = next.Clone()
}

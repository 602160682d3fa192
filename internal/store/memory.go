package store

import (
	"context"
	"sync"

	"gitlab.com/dirk.krummacker/clientes-service/internal/model"
)

// Memory is an in-memory customer repository with the same contract as Store. It keeps the
// email uniqueness guarantee under concurrent use. Emails are compared byte for byte, matching
// the binary collation of the email column in scripts/database.sql. Nothing survives a restart.
type Memory struct {
	mu        sync.RWMutex
	nextId    int64
	customers map[int64]model.Customer
	order     []int64
	emails    map[string]int64
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{
		nextId:    1,
		customers: make(map[int64]model.Customer),
		emails:    make(map[string]int64),
	}
}

func (m *Memory) List(_ context.Context) ([]model.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	customers := make([]model.Customer, 0, len(m.order))
	for _, id := range m.order {
		customers = append(customers, m.customers[id])
	}
	return customers, nil
}

func (m *Memory) Get(_ context.Context, id int64) (model.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	customer, ok := m.customers[id]
	if !ok {
		return model.Customer{}, ErrNotFound
	}
	return customer, nil
}

func (m *Memory) Create(_ context.Context, customer model.Customer) (model.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.emails[customer.Email]; taken {
		return model.Customer{}, ErrDuplicateEmail
	}
	customer.Id = m.nextId
	m.nextId++
	m.customers[customer.Id] = customer
	m.order = append(m.order, customer.Id)
	m.emails[customer.Email] = customer.Id
	return customer, nil
}

func (m *Memory) Update(_ context.Context, id int64, update model.CustomerUpdate) (model.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	customer, ok := m.customers[id]
	if !ok {
		return model.Customer{}, ErrNotFound
	}
	if update.Email != nil {
		if owner, taken := m.emails[*update.Email]; taken && owner != id {
			return model.Customer{}, ErrDuplicateEmail
		}
	}
	delete(m.emails, customer.Email)
	update.Apply(&customer)
	m.emails[customer.Email] = id
	m.customers[id] = customer
	return customer, nil
}

func (m *Memory) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	customer, ok := m.customers[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.customers, id)
	delete(m.emails, customer.Email)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Clear removes every customer. Ids are not reused afterwards, as with an auto increment column.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers = make(map[int64]model.Customer)
	m.emails = make(map[string]int64)
	m.order = nil
	return nil
}

// Close is a no-op; it lets Memory stand in wherever a Store is closed at shutdown.
func (m *Memory) Close() error {
	return nil
}

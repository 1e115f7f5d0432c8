package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/SIYAM1809/Real-Estate-Management-System/internal/models"
)

// MemoryPropertyCatalog is an in-process IPropertyCatalog for local runs and tests.
type MemoryPropertyCatalog struct {
	mu         sync.RWMutex
	properties map[string]models.Property
}

func NewMemoryPropertyCatalog(properties ...models.Property) *MemoryPropertyCatalog {
	c := &MemoryPropertyCatalog{properties: make(map[string]models.Property)}
	for _, p := range properties {
		c.Put(p)
	}
	return c
}

// Put adds or replaces a listing.
func (c *MemoryPropertyCatalog) Put(p models.Property) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.properties[p.ID] = p
}

func (c *MemoryPropertyCatalog) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.properties[id]
	if !ok {
		return nil, newError(KindNotFound, "property %s not found", id)
	}
	return &p, nil
}

// MemoryUserDirectory is an in-process IUserDirectory for local runs and tests.
type MemoryUserDirectory struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUserDirectory(users ...models.User) *MemoryUserDirectory {
	d := &MemoryUserDirectory{users: make(map[string]models.User)}
	for _, u := range users {
		d.Put(u)
	}
	return d
}

// Put adds or replaces a user.
func (d *MemoryUserDirectory) Put(u models.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = u
}

func (d *MemoryUserDirectory) FindByID(ctx context.Context, id string) (*models.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[id]
	if !ok {
		return nil, newError(KindNotFound, "user %s not found", id)
	}
	return &u, nil
}

// MemorySeed is the fixture format accepted by LoadMemorySeed.
type MemorySeed struct {
	Users      []models.User     `json:"users"`
	Properties []models.Property `json:"properties"`
}

// LoadMemorySeed reads users and properties from a JSON file.
func LoadMemorySeed(path string) (*MemorySeed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed MemorySeed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return &seed, nil
}

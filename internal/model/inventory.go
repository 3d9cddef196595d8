package model

import "github.com/google/uuid"

// RodPreset represents a reusable stock rod definition.
type RodPreset struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Length   float64 `json:"length"`
	Material string  `json:"material"`
	Price    float64 `json:"price"` // Price per rod (0 if not set)
}

// NewRodPreset creates a new RodPreset with a generated ID.
func NewRodPreset(name string, length float64, material string, price float64) RodPreset {
	return RodPreset{
		ID:       uuid.New().String()[:8],
		Name:     name,
		Length:   length,
		Material: material,
		Price:    price,
	}
}

// ToRod converts a RodPreset into a Rod with the given quantity.
func (rp RodPreset) ToRod(qty int) Rod {
	return NewRod(rp.Name, rp.Length, qty)
}

// Inventory holds the user's saved stock presets.
type Inventory struct {
	Rods []RodPreset `json:"rods"`
}

// DefaultInventory returns an inventory populated with common stock lengths.
func DefaultInventory() Inventory {
	return Inventory{
		Rods: []RodPreset{
			NewRodPreset("Steel bar 6000", 6000, "Steel", 0),
			NewRodPreset("Steel bar 3000", 3000, "Steel", 0),
			NewRodPreset("Aluminium extrusion 2000", 2000, "Aluminium", 0),
			NewRodPreset("Timber 2400", 2400, "Timber", 0),
			NewRodPreset("Timber 3600", 3600, "Timber", 0),
		},
	}
}

// FindRodByID returns a pointer to the preset with the given ID, or nil.
func (inv *Inventory) FindRodByID(id string) *RodPreset {
	for i := range inv.Rods {
		if inv.Rods[i].ID == id {
			return &inv.Rods[i]
		}
	}
	return nil
}

// FindRodByName returns a pointer to the first preset with the given name, or nil.
func (inv *Inventory) FindRodByName(name string) *RodPreset {
	for i := range inv.Rods {
		if inv.Rods[i].Name == name {
			return &inv.Rods[i]
		}
	}
	return nil
}

// RodNames returns the preset names in inventory order.
func (inv *Inventory) RodNames() []string {
	names := make([]string, len(inv.Rods))
	for i, r := range inv.Rods {
		names[i] = r.Name
	}
	return names
}

// AddOffcuts stores offcuts as presets so they can be cut in later projects.
func (inv *Inventory) AddOffcuts(offcuts []Offcut, material string) {
	for _, o := range offcuts {
		inv.Rods = append(inv.Rods, NewRodPreset("Offcut "+o.RodLabel, o.Length, material, 0))
	}
}

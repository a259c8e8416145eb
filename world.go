// Copyright (c) 2025, The Euclid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package euclid

import "cogentcore.org/core/base/ordmap"

// World is a drawable scene plus the set of portals embedded in it.
// A portal's destination world is whichever world contains its linked
// portal, found by membership in the [Worlds] registry.
type World struct {

	// Name identifies the world in the [Worlds] registry.
	Name string

	// Scene is the drawable content of the world.
	Scene Scene

	// Portals are the openings embedded in this world.
	Portals []*Portal
}

// NewWorld returns a new world with the given name and scene.
func NewWorld(name string, sc Scene) *World {
	return &World{Name: name, Scene: sc}
}

// AddPortal adds a portal to this world. Adding the same portal twice is
// a no-op.
func (wd *World) AddPortal(pt *Portal) {
	if wd.HasPortal(pt) {
		return
	}
	wd.Portals = append(wd.Portals, pt)
}

// RemovePortal removes the portal from this world, if present.
func (wd *World) RemovePortal(pt *Portal) {
	for i, p := range wd.Portals {
		if p == pt {
			wd.Portals = append(wd.Portals[:i], wd.Portals[i+1:]...)
			return
		}
	}
}

// HasPortal reports whether the portal belongs to this world.
func (wd *World) HasPortal(pt *Portal) bool {
	for _, p := range wd.Portals {
		if p == pt {
			return true
		}
	}
	return false
}

// Update refreshes the derived state of all portals after pose mutations.
func (wd *World) Update() {
	for _, pt := range wd.Portals {
		pt.Update()
	}
}

// Release releases all portals in the world.
func (wd *World) Release() {
	for _, pt := range wd.Portals {
		pt.Release()
	}
	wd.Portals = nil
}

// Worlds is the registry of all worlds, ordered by insertion and indexed
// by name.
type Worlds struct {
	ordmap.Map[string, *World]
}

// Add adds a world to the registry under its name.
func (ws *Worlds) Add(wd *World) {
	ws.Map.Add(wd.Name, wd)
}

// WorldOwning returns the world whose portal set contains the given
// portal, or nil if none. This is a linear scan over the registry:
// worlds are expected to number a handful, and the scan runs once per
// visible portal per frame.
func (ws *Worlds) WorldOwning(pt *Portal) *World {
	for _, kv := range ws.Order {
		if kv.Value.HasPortal(pt) {
			return kv.Value
		}
	}
	return nil
}

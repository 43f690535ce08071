// Package scene holds the sky transform hierarchy the day/night controller
// drives: Root -> Axis -> Sun and Root -> SkySphere. Lighting parameters are
// derived from the sun node on every update.
package scene

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-daynight/internal/engine/lighting"
	"github.com/Faultbox/midgard-daynight/pkg/math"
)

// Node names.
const (
	NodeRoot      = "Root"
	NodeAxis      = "Axis"
	NodeSun       = "Sun"
	NodeSkySphere = "SkySphere"
)

// Scene is the sky hierarchy plus the directional light derived from it. It is
// safe for concurrent use.
type Scene struct {
	mu  sync.RWMutex
	log *zap.Logger

	root      *Node
	axis      *Node
	sun       *Node
	skySphere *Node
	nodes     map[string]*Node

	// Lighting
	light lighting.SunLight
	// day/night transitions are logged once
	wasDay bool
}

// New creates the sky hierarchy with identity rotations.
func New(log *zap.Logger) *Scene {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scene{
		log:       log,
		root:      newNode(NodeRoot),
		axis:      newNode(NodeAxis),
		sun:       newNode(NodeSun),
		skySphere: newNode(NodeSkySphere),
	}
	s.root.attach(s.axis)
	s.axis.attach(s.sun)
	s.root.attach(s.skySphere)

	s.nodes = map[string]*Node{
		NodeRoot:      s.root,
		NodeAxis:      s.axis,
		NodeSun:       s.sun,
		NodeSkySphere: s.skySphere,
	}
	s.light = lighting.Sun(s.sun.world)
	s.wasDay = s.light.Elevation > 0
	return s
}

// ApplyAxis sets the world rotation of the axis node. The sun follows it until
// its own rotation is applied.
func (s *Scene) ApplyAxis(q math.Quat) {
	s.mu.Lock()
	s.axis.setWorld(q)
	s.updateLightLocked()
	s.mu.Unlock()
}

// ApplySun sets the world rotation of the sun node.
func (s *Scene) ApplySun(q math.Quat) {
	s.mu.Lock()
	s.sun.setWorld(q)
	s.updateLightLocked()
	s.mu.Unlock()
}

// ApplyStarField sets the world rotation of the sky sphere.
func (s *Scene) ApplyStarField(q math.Quat) {
	s.mu.Lock()
	s.skySphere.setWorld(q)
	s.mu.Unlock()
}

// SetRootRotation rotates the whole sky, e.g. to align it with a map's north.
func (s *Scene) SetRootRotation(q math.Quat) {
	s.mu.Lock()
	s.root.setLocal(q)
	s.updateLightLocked()
	s.mu.Unlock()
}

// WorldRotation returns the world rotation of the named node.
func (s *Scene) WorldRotation(name string) (math.Quat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[name]
	if !ok {
		return math.Quat{}, fmt.Errorf("scene: unknown node %q", name)
	}
	return n.world, nil
}

// LocalRotation returns the rotation of the named node relative to its parent.
func (s *Scene) LocalRotation(name string) (math.Quat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[name]
	if !ok {
		return math.Quat{}, fmt.Errorf("scene: unknown node %q", name)
	}
	return n.local, nil
}

// Updates returns how many times the named node was explicitly rotated.
func (s *Scene) Updates(name string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n, ok := s.nodes[name]; ok {
		return n.updates
	}
	return 0
}

// Light returns the current sun light.
func (s *Scene) Light() lighting.SunLight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.light
}

// LightViewMatrix returns the rotation from world space into the sun's light
// space, with the light travelling along -Z. Shadow passes build their
// projection on top of it.
func (s *Scene) LightViewMatrix() math.Mat4 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	x, y, z := s.sun.world.Axes()
	// light space: X' = local Z, Y' = local Y, Z' = -local X (towards the sun)
	basis := math.FromAxes(z, y, x.Scale(-1))
	return transpose(basis)
}

func (s *Scene) updateLightLocked() {
	s.light = lighting.Sun(s.sun.world)
	isDay := s.light.Elevation > 0
	if isDay != s.wasDay {
		s.wasDay = isDay
		if isDay {
			s.log.Info("sunrise", zap.Float64("elevation", s.light.Elevation))
		} else {
			s.log.Info("sunset", zap.Float64("elevation", s.light.Elevation))
		}
	}
}

func transpose(m math.Mat4) math.Mat4 {
	var t math.Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			t[c*4+r] = m[r*4+c]
		}
	}
	return t
}

// Package ik implements a cyclic coordinate descent solver over scene nodes.
package ik

import (
	"math"

	"posecap/internal/mathutil"
	"posecap/internal/scene"
)

// Link is one joint the solver may rotate.
type Link struct {
	Node    *scene.Node
	Enabled bool
}

// Chain pulls Effector towards Target by rotating Links, ordered from the
// effector's parent outward.
type Chain struct {
	Effector   *scene.Node
	Target     *scene.Node
	Links      []Link
	Iterations int
	// Per-step rotation bounds in radians. Both zero means unbounded.
	MinAngle float64
	MaxAngle float64
}

// CCDSolver updates every chain once per Update call.
type CCDSolver struct {
	Chains []Chain
}

// NewCCDSolver returns a solver over chains.
func NewCCDSolver(chains ...Chain) *CCDSolver {
	return &CCDSolver{Chains: chains}
}

// Update runs each chain's iterations, stopping a chain early once no link
// needs to turn.
func (s *CCDSolver) Update() {
	for i := range s.Chains {
		s.Chains[i].solve()
	}
}

func (c *Chain) solve() {
	if c.Effector == nil || c.Target == nil {
		return
	}
	iterations := c.Iterations
	if iterations < 1 {
		iterations = 1
	}
	targetPos := c.Target.WorldPosition()

	for it := 0; it < iterations; it++ {
		rotated := false
		for _, l := range c.Links {
			if !l.Enabled || l.Node == nil {
				continue
			}
			if c.step(l.Node, targetPos) {
				rotated = true
			}
		}
		if !rotated {
			return
		}
	}
}

// step turns link so the effector direction, seen from the link, points at
// the target. Reports whether the link rotated.
func (c *Chain) step(link *scene.Node, targetPos mathutil.Vec3) bool {
	linkPos, linkRot, _ := link.WorldMatrix().Decompose()
	inv := linkRot.Conjugate()

	effectorVec := inv.Rotate(c.Effector.WorldPosition().Sub(linkPos)).Normalize()
	targetVec := inv.Rotate(targetPos.Sub(linkPos)).Normalize()

	dot := math.Max(-1, math.Min(1, effectorVec.Dot(targetVec)))
	angle := math.Acos(dot)
	if angle < 1e-5 {
		return false
	}
	if c.MinAngle != 0 || c.MaxAngle != 0 {
		angle = math.Max(c.MinAngle, math.Min(c.MaxAngle, angle))
	}

	axis := effectorVec.Cross(targetVec)
	if axis.Len() < 1e-12 {
		return false
	}
	q := mathutil.QuatFromAxisAngle(axis, angle)
	link.Transform.Rotation = mathutil.QuatMul(link.Transform.Rotation, q).Normalize()
	return true
}

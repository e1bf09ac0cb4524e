// Package pose reads, writes and applies pose presets: body placements and
// joint rotations in degrees.
package pose

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"posecap/internal/mathutil"
	"posecap/internal/scene"
)

// Body poses one body. Joints maps joint names to XYZ Euler angles in degrees.
type Body struct {
	Position *[3]float64           `json:"position,omitempty" yaml:"position,omitempty"`
	Joints   map[string][3]float64 `json:"joints,omitempty" yaml:"joints,omitempty"`
}

// Pose is a named preset for a whole scene.
type Pose struct {
	Name   string `json:"name" yaml:"name"`
	Bodies []Body `json:"bodies" yaml:"bodies"`
}

// Load reads a .yaml, .yml or .json pose file. A missing name defaults to
// the file stem.
func Load(path string) (Pose, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pose{}, fmt.Errorf("pose: read %s: %w", path, err)
	}
	var p Pose
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &p)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &p)
	default:
		return Pose{}, fmt.Errorf("pose: unsupported format %q", ext)
	}
	if err != nil {
		return Pose{}, fmt.Errorf("pose: parse %s: %w", path, err)
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := p.Validate(); err != nil {
		return Pose{}, fmt.Errorf("pose: %s: %w", path, err)
	}
	return p, nil
}

// Save writes p as YAML.
func Save(path string, p Pose) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("pose: encode %s: %w", p.Name, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("pose: write %s: %w", path, err)
	}
	return nil
}

// Validate rejects joint names outside the joint set.
func (p Pose) Validate() error {
	for i, b := range p.Bodies {
		for name := range b.Joints {
			if _, ok := scene.ParseJoint(name); !ok {
				return fmt.Errorf("body %d: unknown joint %q", i, name)
			}
		}
	}
	return nil
}

// Apply poses the scene bodies in order. The scene must hold at least as
// many bodies as the pose describes.
func (p Pose) Apply(sc *scene.Scene) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("pose: %s: %w", p.Name, err)
	}
	bodies := sc.Bodies()
	if len(bodies) < len(p.Bodies) {
		return fmt.Errorf("pose: %s: needs %d bodies, scene has %d", p.Name, len(p.Bodies), len(bodies))
	}
	for i, bp := range p.Bodies {
		body := bodies[i]
		if bp.Position != nil {
			body.Transform.Position = mathutil.Vec3(*bp.Position)
		}
		for name, deg := range bp.Joints {
			j := findJoint(body, name)
			if j == nil {
				return fmt.Errorf("pose: %s: body %d has no joint %q", p.Name, i, name)
			}
			j.Transform.Rotation = mathutil.EulerToQuat(
				mathutil.Deg2Rad(deg[0]), mathutil.Deg2Rad(deg[1]), mathutil.Deg2Rad(deg[2]))
		}
	}
	return nil
}

// Capture records the current body placements and the rotation of every
// joint that is not at rest.
func Capture(name string, sc *scene.Scene) Pose {
	p := Pose{Name: name}
	for _, body := range sc.Bodies() {
		pos := [3]float64(body.Transform.Position)
		bp := Body{Position: &pos}
		for _, j := range scene.Joints() {
			n := findJoint(body, j.String())
			if n == nil || n.Transform.Rotation == mathutil.QuatIdentity() {
				continue
			}
			if bp.Joints == nil {
				bp.Joints = map[string][3]float64{}
			}
			bp.Joints[j.String()] = quatToEulerDeg(n.Transform.Rotation)
		}
		p.Bodies = append(p.Bodies, bp)
	}
	return p
}

// JointNames lists the posed joints of b in a stable order.
func (b Body) JointNames() []string {
	names := make([]string, 0, len(b.Joints))
	for n := range b.Joints {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// findJoint returns the outermost node named name in body, or nil. The body
// root itself is the torso joint.
func findJoint(body *scene.Node, name string) *scene.Node {
	var found *scene.Node
	body.Traverse(func(n *scene.Node) {
		if found == nil && n.Name == name {
			found, _ = scene.OutermostJoint(n)
		}
	})
	return found
}

// quatToEulerDeg inverts EulerToQuat (XYZ order).
func quatToEulerDeg(q mathutil.Quat) [3]float64 {
	m := mathutil.QuatToMat3(q)
	m11, m12, m13 := m[0], m[1], m[2]
	m22, m23 := m[4], m[5]
	m32, m33 := m[7], m[8]

	ry := math.Asin(math.Max(-1, math.Min(1, m13)))
	var rx, rz float64
	if math.Abs(m13) < 0.9999999 {
		rx = math.Atan2(-m23, m33)
		rz = math.Atan2(-m12, m11)
	} else {
		rx = math.Atan2(m32, m22)
	}
	return [3]float64{rx * 180 / math.Pi, ry * 180 / math.Pi, rz * 180 / math.Pi}
}

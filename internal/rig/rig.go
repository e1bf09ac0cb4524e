// Package rig builds the template body: a "torso" rooted joint hierarchy
// with box limbs and a skin patch.
package rig

import (
	"fmt"
	"image"
	"os"

	"gopkg.in/yaml.v3"

	"posecap/internal/mathutil"
	"posecap/internal/scene"
)

// Part is one joint of the body. Each part becomes a pivot node carrying
// the joint name, with an identically named child holding the limb mesh, so
// rotating the pivot moves the limb and every part below it.
type Part struct {
	ID     string     `yaml:"id"`
	Name   string     `yaml:"name"`
	Parent string     `yaml:"parent"` // ID of the parent part, empty for the root
	Offset [3]float64 `yaml:"offset"` // pivot relative to the parent pivot
	Size   [3]float64 `yaml:"size"`   // limb box size
	Center [3]float64 `yaml:"center"` // limb box center relative to the pivot
	Color  string     `yaml:"color"`
}

// Skin describes the skin patch hung under one part.
type Skin struct {
	Parent  string     `yaml:"parent"`
	Offset  [3]float64 `yaml:"offset"`
	Size    [3]float64 `yaml:"size"`
	Center  [3]float64 `yaml:"center"`
	Texture string     `yaml:"texture"`
}

// Definition is a complete body layout.
type Definition struct {
	Position [3]float64 `yaml:"position"`
	Parts    []Part     `yaml:"parts"`
	Skin     *Skin      `yaml:"skin"`
}

// LoadDefinition reads a YAML body layout.
func LoadDefinition(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("rig: read %s: %w", path, err)
	}
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Definition{}, fmt.Errorf("rig: parse %s: %w", path, err)
	}
	if err := def.Validate(); err != nil {
		return Definition{}, fmt.Errorf("rig: %s: %w", path, err)
	}
	return def, nil
}

// Validate checks part IDs, parent references and the root.
func (d Definition) Validate() error {
	if len(d.Parts) == 0 {
		return fmt.Errorf("no parts")
	}
	ids := make(map[string]bool, len(d.Parts))
	roots := 0
	for i, p := range d.Parts {
		if p.ID == "" {
			return fmt.Errorf("part %d: missing id", i)
		}
		if ids[p.ID] {
			return fmt.Errorf("part %q: duplicate id", p.ID)
		}
		if p.Name == "" {
			return fmt.Errorf("part %q: missing name", p.ID)
		}
		if p.Parent == "" {
			roots++
			if p.Name != scene.BodyRootName {
				return fmt.Errorf("part %q: root must be named %q", p.ID, scene.BodyRootName)
			}
		} else if !ids[p.Parent] {
			return fmt.Errorf("part %q: parent %q must be declared before it", p.ID, p.Parent)
		}
		if p.Color != "" {
			if _, err := scene.ParseHexColor(p.Color); err != nil {
				return fmt.Errorf("part %q: %w", p.ID, err)
			}
		}
		ids[p.ID] = true
	}
	if roots != 1 {
		return fmt.Errorf("want exactly one root part, got %d", roots)
	}
	if d.Skin != nil && !ids[d.Skin.Parent] {
		return fmt.Errorf("skin: unknown parent %q", d.Skin.Parent)
	}
	return nil
}

// Build creates the body tree. tex, when non-nil, textures the skin patch
// with a lit material; otherwise the patch gets a depth material.
func Build(def Definition, tex *image.NRGBA) (*scene.Node, error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("rig: %w", err)
	}

	pivots := make(map[string]*scene.Node, len(def.Parts))
	var root *scene.Node
	for _, p := range def.Parts {
		pivot := scene.NewNode(p.Name)
		pivot.Transform.Position = mathutil.Vec3(p.Offset)

		if p.Size != [3]float64{} {
			c := defaultPartColor
			if p.Color != "" {
				c, _ = scene.ParseHexColor(p.Color)
			}
			limb := scene.NewMeshNode(p.Name,
				scene.Box(mathutil.Vec3(p.Size), mathutil.Vec3(p.Center)),
				scene.NewColorMaterial(scene.MaterialLit, c))
			pivot.Add(limb)
		}

		if p.Parent == "" {
			root = pivot
		} else {
			pivots[p.Parent].Add(pivot)
		}
		pivots[p.ID] = pivot
	}
	root.Transform.Position = root.Transform.Position.Add(mathutil.Vec3(def.Position))

	if s := def.Skin; s != nil {
		mat := scene.NewMaterial(scene.MaterialDepth)
		if tex != nil {
			mat = scene.NewMaterial(scene.MaterialLit)
			mat.Texture = tex
		}
		patch := scene.NewMeshNode(scene.SkinPatchName,
			scene.Box(mathutil.Vec3(s.Size), mathutil.Vec3(s.Center)), mat)
		patch.Transform.Position = mathutil.Vec3(s.Offset)
		pivots[s.Parent].Add(patch)
	}
	return root, nil
}

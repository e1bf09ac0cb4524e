package rig

import "image/color"

var defaultPartColor = color.NRGBA{R: 200, G: 200, B: 200, A: 255}

// DefaultDefinition is a roughly 180 unit tall mannequin standing on the
// grid, facing +z. Every joint is a pivot with a same-named limb child, and
// the skin patch hangs at the end of the right forearm.
func DefaultDefinition() Definition {
	return Definition{
		Position: [3]float64{0, 105, 0},
		Parts: []Part{
			{ID: "torso", Name: "torso", Size: [3]float64{32, 50, 16}, Color: "#c8c8c8"},
			{ID: "neck", Name: "neck", Parent: "torso", Offset: [3]float64{0, 25, 0},
				Size: [3]float64{9, 10, 9}, Center: [3]float64{0, 5, 0}, Color: "#b4b4b4"},
			{ID: "head", Name: "head", Parent: "neck", Offset: [3]float64{0, 10, 0},
				Size: [3]float64{18, 22, 20}, Center: [3]float64{0, 11, 0}, Color: "#dcdcdc"},

			{ID: "right_shoulder", Name: "right_shoulder", Parent: "torso", Offset: [3]float64{-20, 21, 0},
				Size: [3]float64{8, 28, 8}, Center: [3]float64{0, -14, 0}, Color: "#d28c8c"},
			{ID: "right_elbow", Name: "right_elbow", Parent: "right_shoulder", Offset: [3]float64{0, -28, 0},
				Size: [3]float64{7, 26, 7}, Center: [3]float64{0, -13, 0}, Color: "#be7878"},
			{ID: "left_shoulder", Name: "left_shoulder", Parent: "torso", Offset: [3]float64{20, 21, 0},
				Size: [3]float64{8, 28, 8}, Center: [3]float64{0, -14, 0}, Color: "#8cd28c"},
			{ID: "left_elbow", Name: "left_elbow", Parent: "left_shoulder", Offset: [3]float64{0, -28, 0},
				Size: [3]float64{7, 26, 7}, Center: [3]float64{0, -13, 0}, Color: "#78be78"},

			{ID: "right_hip", Name: "right_hip", Parent: "torso", Offset: [3]float64{-9, -25, 0},
				Size: [3]float64{11, 40, 11}, Center: [3]float64{0, -20, 0}, Color: "#8c8cd2"},
			{ID: "right_knee", Name: "right_knee", Parent: "right_hip", Offset: [3]float64{0, -40, 0},
				Size: [3]float64{9, 40, 9}, Center: [3]float64{0, -20, 0}, Color: "#7878be"},
			{ID: "left_hip", Name: "left_hip", Parent: "torso", Offset: [3]float64{9, -25, 0},
				Size: [3]float64{11, 40, 11}, Center: [3]float64{0, -20, 0}, Color: "#d2d28c"},
			{ID: "left_knee", Name: "left_knee", Parent: "left_hip", Offset: [3]float64{0, -40, 0},
				Size: [3]float64{9, 40, 9}, Center: [3]float64{0, -20, 0}, Color: "#bebe78"},
		},
		Skin: &Skin{
			Parent: "right_elbow",
			Offset: [3]float64{0, -26, 0},
			Size:   [3]float64{9, 16, 4},
			Center: [3]float64{0, -8, 0},
		},
	}
}

package scene

// Joint is one of the closed set of pickable body-part names.
type Joint int

const (
	JointTorso Joint = iota
	JointNeck
	JointRightShoulder
	JointLeftShoulder
	JointRightElbow
	JointLeftElbow
	JointRightHip
	JointLeftHip
	JointRightKnee
	JointLeftKnee

	jointCount
)

var jointNames = [jointCount]string{
	JointTorso:         "torso",
	JointNeck:          "neck",
	JointRightShoulder: "right_shoulder",
	JointLeftShoulder:  "left_shoulder",
	JointRightElbow:    "right_elbow",
	JointLeftElbow:     "left_elbow",
	JointRightHip:      "right_hip",
	JointLeftHip:       "left_hip",
	JointRightKnee:     "right_knee",
	JointLeftKnee:      "left_knee",
}

var jointByName = func() map[string]Joint {
	m := make(map[string]Joint, jointCount)
	for j, name := range jointNames {
		m[name] = Joint(j)
	}
	return m
}()

func (j Joint) String() string {
	if j < 0 || j >= jointCount {
		return "unknown"
	}
	return jointNames[j]
}

// ParseJoint maps a node name to its joint. Names outside the set are not joints.
func ParseJoint(name string) (Joint, bool) {
	j, ok := jointByName[name]
	return j, ok
}

// Joints lists every pickable joint in declaration order.
func Joints() []Joint {
	js := make([]Joint, jointCount)
	for i := range js {
		js[i] = Joint(i)
	}
	return js
}

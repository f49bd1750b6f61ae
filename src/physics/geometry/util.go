package geometry

// IsClockwise reports whether the face winds clockwise on screen. Faces
// with an area within Epsilon of zero are degenerate and wind neither way.
func IsClockwise(f Face) bool {
	return f.SignedArea() < -Epsilon
}

func IsCounterClockwise(f Face) bool {
	return f.SignedArea() > Epsilon
}

func IsDegenerate(f Face) bool {
	a := f.SignedArea()
	return a >= -Epsilon && a <= Epsilon
}

package geometry

// Face is a triangle given by three points in the order they are drawn.
type Face struct {
	A, B, C Vector3
}

func NewFace(a, b, c Vector3) Face {
	return Face{A: a, B: b, C: c}
}

func (f Face) GetNormal() Vector3 {
	dir0 := f.B.Sub(&f.A)
	dir1 := f.C.Sub(&f.A)
	return dir0.Cross(&dir1)
}

// SignedArea is the area of the face projected onto the XY plane, using the
// rasterizer's convention for a y-down framebuffer: negative areas wind
// clockwise on screen, positive areas counter-clockwise.
func (f Face) SignedArea() Scalar {
	pts := [3]*Vector3{&f.A, &f.B, &f.C}
	var sum float64
	for i := range pts {
		p, q := pts[i], pts[(i+1)%len(pts)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return Scalar(-sum / 2)
}

package geometry

type Vector3 struct {
	X float64
	Y float64
	Z float64
}

// NewVector3 builds a point from single precision vertex data.
func NewVector3(x, y, z float32) Vector3 {
	return Vector3{X: float64(x), Y: float64(y), Z: float64(z)}
}

func (v3 Vector3) Dot(v *Vector3) Scalar {
	return Scalar(v3.X*v.X +
		v3.Y*v.Y +
		v3.Z*v.Z)
}

func (v3 Vector3) Sub(v *Vector3) Vector3 {
	return Vector3{X: v3.X - v.X, Y: v3.Y - v.Y, Z: v3.Z - v.Z}
}

func (v3 Vector3) Cross(v *Vector3) Vector3 {
	return Vector3{
		X: v3.Y*v.Z - v3.Z*v.Y, // y * b.z - z * b.y
		Y: v3.Z*v.X - v3.X*v.Z, // z * b.x - x * b.z
		Z: v3.X*v.Y - v3.Y*v.X, // x * b.y - y * b.x
	}
}

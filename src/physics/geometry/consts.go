package geometry

// Scalar is the component type of every vector in this package.
type Scalar float64

const Epsilon = 1.19209e-07 // defined by clang for x86

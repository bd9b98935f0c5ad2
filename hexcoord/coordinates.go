package hexcoord

import "math"

// Hexagonal is a non-orthogonal 3-axis hex coordinate. The vector (1,1,1)
// is the zero move: to_shortest_path exploits this to find a canonical
// representative of minimal Manhattan norm.
type Hexagonal struct {
	X, Y, Z int
}

// Add returns the element-wise sum.
func (v Hexagonal) Add(o Hexagonal) Hexagonal {
	return Hexagonal{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns the element-wise difference.
func (v Hexagonal) Sub(o Hexagonal) Hexagonal {
	return Hexagonal{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Magnitude returns the Manhattan norm of the vector's shortest-path
// representative.
func (v Hexagonal) Magnitude() int {
	return Manhattan(ToShortestPath(v))
}

// AddDirection returns the vector moved one unit in the given direction.
func AddDirection(v Hexagonal, d Direction) Hexagonal {
	return v.Add(d.Vector())
}

// Hexagonal2D is the z=0 projection of a Hexagonal coordinate.
type Hexagonal2D struct {
	X, Y int
}

// Add returns the element-wise sum.
func (v Hexagonal2D) Add(o Hexagonal2D) Hexagonal2D {
	return Hexagonal2D{v.X + o.X, v.Y + o.Y}
}

// Sub returns the element-wise difference.
func (v Hexagonal2D) Sub(o Hexagonal2D) Hexagonal2D {
	return Hexagonal2D{v.X - o.X, v.Y - o.Y}
}

// Cartesian2D is a standard Euclidean 2-vector.
type Cartesian2D struct {
	X, Y int
}

// Add returns the element-wise sum.
func (v Cartesian2D) Add(o Cartesian2D) Cartesian2D {
	return Cartesian2D{v.X + o.X, v.Y + o.Y}
}

// Sub returns the element-wise difference.
func (v Cartesian2D) Sub(o Cartesian2D) Cartesian2D {
	return Cartesian2D{v.X - o.X, v.Y - o.Y}
}

// Magnitude returns the l2 norm.
func (v Cartesian2D) Magnitude() float64 {
	return math.Hypot(float64(v.X), float64(v.Y))
}

// Cartesian3D is a standard Euclidean 3-vector, used for physical
// (metre-valued) positions, so its components are float64 rather than int.
type Cartesian3D struct {
	X, Y, Z float64
}

// Add returns the element-wise sum.
func (v Cartesian3D) Add(o Cartesian3D) Cartesian3D {
	return Cartesian3D{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns the element-wise difference.
func (v Cartesian3D) Sub(o Cartesian3D) Cartesian3D {
	return Cartesian3D{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Magnitude returns the l2 norm.
func (v Cartesian3D) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Cabinet is an integer (cabinet, frame, board) triple: a logical location
// in the physical containment hierarchy.
type Cabinet struct {
	Cabinet, Frame, Board int
}

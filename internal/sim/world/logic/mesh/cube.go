package mesh

import "github.com/go-gl/mathgl/mgl32"

// Faces in order: left (-x), right (+x), top (+y), bottom (-y), front (-z), back (+z).
var cubePositions = [6][4][3]float32{
	{{-1, -1, -1}, {-1, -1, +1}, {-1, +1, -1}, {-1, +1, +1}},
	{{+1, -1, -1}, {+1, -1, +1}, {+1, +1, -1}, {+1, +1, +1}},
	{{-1, +1, -1}, {-1, +1, +1}, {+1, +1, -1}, {+1, +1, +1}},
	{{-1, -1, -1}, {-1, -1, +1}, {+1, -1, -1}, {+1, -1, +1}},
	{{-1, -1, -1}, {-1, +1, -1}, {+1, -1, -1}, {+1, +1, -1}},
	{{-1, -1, +1}, {-1, +1, +1}, {+1, -1, +1}, {+1, +1, +1}},
}

var cubeNormals = [6][3]float32{
	{-1, 0, 0},
	{+1, 0, 0},
	{0, +1, 0},
	{0, -1, 0},
	{0, 0, -1},
	{0, 0, +1},
}

var cubeUVs = [6][4][2]float32{
	{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
	{{1, 0}, {0, 0}, {1, 1}, {0, 1}},
	{{0, 1}, {0, 0}, {1, 1}, {1, 0}},
	{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
	{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
	{{1, 0}, {1, 1}, {0, 0}, {0, 1}},
}

var (
	quadIndices    = [2][6]int{{0, 3, 2, 0, 1, 3}, {0, 3, 1, 0, 2, 3}}
	quadFlipped    = [2][6]int{{0, 1, 2, 1, 3, 2}, {0, 2, 1, 2, 3, 1}}
	atlasTile      = float32(1.0 / 16)
	atlasHalfTexel = float32(1.0 / 2048)
)

func tileOrigin(tile int) (du, dv float32) {
	return float32(tile%16) * atlasTile, float32(tile/16) * atlasTile
}

// appendCube emits the selected faces of a cube centered at (x, y, z) with half-size n.
// The quad diagonal follows the brighter corner pair so AO gradients do not seam.
func appendCube(data []float32, ao, light *[6][4]float32, faces [6]bool, tiles [6]int, x, y, z, n float32) []float32 {
	a := atlasHalfTexel
	b := atlasTile - atlasHalfTexel
	for i := 0; i < 6; i++ {
		if !faces[i] {
			continue
		}
		du, dv := tileOrigin(tiles[i])
		order := &quadIndices[i%2]
		if ao[i][0]+ao[i][3] > ao[i][1]+ao[i][2] {
			order = &quadFlipped[i%2]
		}
		for _, j := range order {
			p := cubePositions[i][j]
			u, v := a, a
			if cubeUVs[i][j][0] != 0 {
				u = b
			}
			if cubeUVs[i][j][1] != 0 {
				v = b
			}
			data = append(data,
				x+n*p[0], y+n*p[1], z+n*p[2],
				cubeNormals[i][0], cubeNormals[i][1], cubeNormals[i][2],
				du+u, dv+v,
				ao[i][j], light[i][j],
			)
		}
	}
	return data
}

// Two crossed double-sided quads.
var plantPositions = [4][4][3]float32{
	{{0, -1, -1}, {0, -1, +1}, {0, +1, -1}, {0, +1, +1}},
	{{0, -1, -1}, {0, -1, +1}, {0, +1, -1}, {0, +1, +1}},
	{{-1, -1, 0}, {-1, +1, 0}, {+1, -1, 0}, {+1, +1, 0}},
	{{-1, -1, 0}, {-1, +1, 0}, {+1, -1, 0}, {+1, +1, 0}},
}

var plantNormals = [4][3]float32{
	{-1, 0, 0},
	{+1, 0, 0},
	{0, 0, -1},
	{0, 0, +1},
}

var plantUVs = [4][4][2]float32{
	{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
	{{1, 0}, {0, 0}, {1, 1}, {0, 1}},
	{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
	{{1, 0}, {1, 1}, {0, 0}, {0, 1}},
}

// appendPlant emits a plant at (px, py, pz) turned by rotation degrees about +y.
// Positive rotations turn x toward -z.
func appendPlant(data []float32, ao, light, px, py, pz, n float32, tile int, rotation float32) []float32 {
	rot := mgl32.HomogRotate3DY(-mgl32.DegToRad(rotation))
	xf := mgl32.Translate3D(px, py, pz).Mul4(rot)
	du, dv := tileOrigin(tile)
	s := atlasTile
	for i := 0; i < 4; i++ {
		nrm := rot.Mul4x1(mgl32.Vec4{plantNormals[i][0], plantNormals[i][1], plantNormals[i][2], 0})
		for _, j := range quadIndices[i%2] {
			p := plantPositions[i][j]
			pos := xf.Mul4x1(mgl32.Vec4{n * p[0], n * p[1], n * p[2], 1})
			var u, v float32
			if plantUVs[i][j][0] != 0 {
				u = s
			}
			if plantUVs[i][j][1] != 0 {
				v = s
			}
			data = append(data,
				pos[0], pos[1], pos[2],
				nrm[0], nrm[1], nrm[2],
				du+u, dv+v,
				ao, light,
			)
		}
	}
	return data
}

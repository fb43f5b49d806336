package mesh

import (
	"strings"

	"voxelcraft.ai/voxelclient/internal/sim/world/terrain/store"
)

// Sign vertices are position + uv.
const (
	SignFloatsPerVertex = 5
	SignFloatsPerFace   = SignFloatsPerVertex * VertsPerFace

	signMaxWidth   = 64
	signLineHeight = 1.25
	signMaxRows    = 5
)

type SignMesh struct {
	Faces int
	Data  []float32
}

// Glyph advance in font pixels for ASCII 32..127.
var charWidths = [96]int{
	4, 2, 4, 7, 6, 9, 7, 2, 3, 3, 4, 6, 3, 5, 2, 7,
	6, 3, 6, 6, 6, 6, 6, 6, 6, 6, 2, 3, 5, 6, 5, 7,
	8, 6, 6, 6, 6, 6, 6, 6, 6, 4, 6, 6, 5, 8, 8, 6,
	6, 7, 6, 6, 6, 6, 8, 10, 8, 6, 6, 3, 6, 3, 6, 6,
	4, 7, 6, 6, 6, 6, 5, 6, 6, 2, 5, 5, 2, 9, 6, 6,
	6, 6, 6, 6, 5, 6, 6, 6, 6, 6, 6, 4, 2, 5, 7, 0,
}

func charWidth(c byte) int {
	if c < 32 || c > 127 {
		return 0
	}
	return charWidths[c-32]
}

func stringWidth(s string) int {
	w := 0
	for i := 0; i < len(s); i++ {
		w += charWidth(s[i])
	}
	return w
}

// Wrap breaks text into lines no wider than maxWidth font pixels. Explicit line breaks
// are kept; a single word wider than maxWidth gets a line of its own.
func Wrap(text string, maxWidth int) []string {
	space := charWidth(' ')
	var out []string
	for _, line := range strings.FieldsFunc(text, func(r rune) bool { return r == '\r' || r == '\n' }) {
		var b strings.Builder
		width := 0
		for _, tok := range strings.FieldsFunc(line, func(r rune) bool { return r == ' ' }) {
			tw := stringWidth(tok)
			if width > 0 {
				if width+tw > maxWidth {
					out = append(out, b.String())
					b.Reset()
					width = 0
				} else {
					b.WriteByte(' ')
				}
			}
			b.WriteString(tok)
			width += tw + space
		}
		out = append(out, b.String())
	}
	return out
}

// Per sign face: glyph advance direction in x/z and line advance direction.
var (
	glyphDX = [8]int{0, 0, -1, 1, 1, 0, -1, 0}
	glyphDZ = [8]int{1, -1, 0, 0, 0, -1, 0, 1}
	lineDX  = [8]int{0, 0, 0, 0, 0, 1, 0, -1}
	lineDY  = [8]int{-1, -1, -1, -1, 0, 0, 0, 0}
	lineDZ  = [8]int{0, 0, 0, 0, 1, 0, -1, 0}
)

// BuildSigns lays out the text of every sign as one textured quad per visible glyph.
func BuildSigns(signs []store.Sign) SignMesh {
	var m SignMesh
	for _, s := range signs {
		m.Data, m.Faces = appendSign(m.Data, m.Faces, float32(s.X), float32(s.Y), float32(s.Z), s.Face, s.Text)
	}
	return m
}

func appendSign(data []float32, count int, x, y, z float32, face int, text string) ([]float32, int) {
	if face < 0 || face >= 8 {
		return data, count
	}
	lines := Wrap(text, signMaxWidth)
	rows := min(len(lines), signMaxRows)
	lines = lines[:rows]

	dx, dz := float32(glyphDX[face]), float32(glyphDZ[face])
	ldx, ldy, ldz := float32(lineDX[face]), float32(lineDY[face]), float32(lineDZ[face])
	n := float32(1.0 / (signMaxWidth / 10.0))
	half := n * float32(rows-1) * (signLineHeight / 2)
	sx, sy, sz := x-half*ldx, y-half*ldy, z-half*ldz
	for _, line := range lines {
		lineWidth := min(stringWidth(line), signMaxWidth)
		rx := sx - dx*float32(lineWidth)/signMaxWidth/2
		ry := sy
		rz := sz - dz*float32(lineWidth)/signMaxWidth/2
		for i := 0; i < len(line); i++ {
			width := charWidth(line[i])
			lineWidth -= width
			if lineWidth < 0 {
				break
			}
			step := float32(width) / signMaxWidth / 2
			rx += dx * step
			rz += dz * step
			if line[i] > ' ' && line[i] < 127 {
				data = appendGlyph(data, rx, ry, rz, n/2, face, line[i])
				count++
			}
			rx += dx * step
			rz += dz * step
		}
		sx += n * signLineHeight * ldx
		sy += n * signLineHeight * ldy
		sz += n * signLineHeight * ldz
	}
	return data, count
}

var glyphPositions = [8][6][3]float32{
	{{0, -2, -1}, {0, +2, +1}, {0, +2, -1}, {0, -2, -1}, {0, -2, +1}, {0, +2, +1}},
	{{0, -2, -1}, {0, +2, +1}, {0, -2, +1}, {0, -2, -1}, {0, +2, -1}, {0, +2, +1}},
	{{-1, -2, 0}, {+1, +2, 0}, {+1, -2, 0}, {-1, -2, 0}, {-1, +2, 0}, {+1, +2, 0}},
	{{-1, -2, 0}, {+1, -2, 0}, {+1, +2, 0}, {-1, -2, 0}, {+1, +2, 0}, {-1, +2, 0}},
	{{-1, 0, +2}, {+1, 0, +2}, {+1, 0, -2}, {-1, 0, +2}, {+1, 0, -2}, {-1, 0, -2}},
	{{-2, 0, +1}, {+2, 0, -1}, {-2, 0, -1}, {-2, 0, +1}, {+2, 0, +1}, {+2, 0, -1}},
	{{+1, 0, +2}, {-1, 0, -2}, {-1, 0, +2}, {+1, 0, +2}, {+1, 0, -2}, {-1, 0, -2}},
	{{+2, 0, -1}, {-2, 0, +1}, {+2, 0, +1}, {+2, 0, -1}, {-2, 0, -1}, {-2, 0, +1}},
}

var glyphUVs = [8][6][2]float32{
	{{0, 0}, {1, 1}, {0, 1}, {0, 0}, {1, 0}, {1, 1}},
	{{1, 0}, {0, 1}, {0, 0}, {1, 0}, {1, 1}, {0, 1}},
	{{1, 0}, {0, 1}, {0, 0}, {1, 0}, {1, 1}, {0, 1}},
	{{0, 0}, {1, 0}, {1, 1}, {0, 0}, {1, 1}, {0, 1}},
	{{0, 0}, {1, 0}, {1, 1}, {0, 0}, {1, 1}, {0, 1}},
	{{0, 1}, {1, 0}, {1, 1}, {0, 1}, {0, 0}, {1, 0}},
	{{0, 1}, {1, 0}, {1, 1}, {0, 1}, {0, 0}, {1, 0}},
	{{0, 1}, {1, 0}, {1, 1}, {0, 1}, {0, 0}, {1, 0}},
}

// Glyphs sit half a block out from the block center along the face.
var glyphOffsets = [8][3]float32{
	{-1, 0, 0}, {+1, 0, 0}, {0, 0, -1}, {0, 0, +1},
	{0, +1, 0}, {0, +1, 0}, {0, +1, 0}, {0, +1, 0},
}

func appendGlyph(data []float32, x, y, z, n float32, face int, c byte) []float32 {
	s := atlasTile
	pu, pv := s/5, s/2.5
	u1, v1 := pu, pv
	u2, v2 := s-pu, s*2-pv
	w := int(c) - 32
	du := float32(w%16) * s
	dv := 1 - float32(w/16+1)*s*2
	x += 0.5 * glyphOffsets[face][0]
	y += 0.5 * glyphOffsets[face][1]
	z += 0.5 * glyphOffsets[face][2]
	for i := 0; i < 6; i++ {
		p := glyphPositions[face][i]
		u, v := u1, v1
		if glyphUVs[face][i][0] != 0 {
			u = u2
		}
		if glyphUVs[face][i][1] != 0 {
			v = v2
		}
		data = append(data, x+n*p[0], y+n*p[1], z+n*p[2], du+u, dv+v)
	}
	return data
}

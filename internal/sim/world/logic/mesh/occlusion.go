package mesh

// Per face and corner: the corner sample followed by its two edge samples.
var cornerSamples = [6][4][3]int{
	{{0, 1, 3}, {2, 1, 5}, {6, 3, 7}, {8, 5, 7}},
	{{18, 19, 21}, {20, 19, 23}, {24, 21, 25}, {26, 23, 25}},
	{{6, 7, 15}, {8, 7, 17}, {24, 15, 25}, {26, 17, 25}},
	{{0, 1, 9}, {2, 1, 11}, {18, 9, 19}, {20, 11, 19}},
	{{0, 3, 9}, {6, 3, 15}, {18, 9, 21}, {24, 15, 21}},
	{{2, 5, 11}, {8, 5, 17}, {20, 11, 23}, {26, 17, 23}},
}

// Per face and corner: the four samples averaged for shade and light.
var quadSamples = [6][4][4]int{
	{{0, 1, 3, 4}, {1, 2, 4, 5}, {3, 4, 6, 7}, {4, 5, 7, 8}},
	{{18, 19, 21, 22}, {19, 20, 22, 23}, {21, 22, 24, 25}, {22, 23, 25, 26}},
	{{6, 7, 15, 16}, {7, 8, 16, 17}, {15, 16, 24, 25}, {16, 17, 25, 26}},
	{{0, 1, 9, 10}, {1, 2, 10, 11}, {9, 10, 18, 19}, {10, 11, 19, 20}},
	{{0, 3, 9, 12}, {3, 6, 12, 15}, {9, 12, 18, 21}, {12, 15, 21, 24}},
	{{2, 5, 11, 14}, {5, 8, 14, 17}, {11, 14, 20, 23}, {14, 17, 23, 26}},
}

const centerSample = 13

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

func occlusion(s *samples, opts Options) (ao, light [6][4]float32) {
	maxLight := float32(opts.MaxLight)
	fullBright := s.light[centerSample] == opts.MaxLight
	for i := 0; i < 6; i++ {
		for j := 0; j < 4; j++ {
			c := cornerSamples[i][j]
			corner, side1, side2 := s.opaque[c[0]], s.opaque[c[1]], s.opaque[c[2]]
			value := 3
			if !(side1 && side2) {
				value = b2i(corner) + b2i(side1) + b2i(side2)
			}
			var shadeSum, lightSum float32
			for _, k := range quadSamples[i][j] {
				shadeSum += s.shade[k]
				lightSum += float32(s.light[k])
			}
			if fullBright {
				lightSum = maxLight * 4 * 10
			}
			ao[i][j] = min(opts.AOCurve[value]+shadeSum/4, 1)
			light[i][j] = lightSum / maxLight / 4
		}
	}
	return ao, light
}

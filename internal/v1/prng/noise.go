package prng

// Noise is a classic Perlin noise field over a seeded 256-entry permutation.
// The permutation is shuffled with a fixed LCG so equal seeds always yield
// equal fields.
type Noise struct {
	perm [512]int
}

// NewNoise builds a noise field for the given seed.
func NewNoise(seed int64) *Noise {
	n := &Noise{}
	var p [256]int
	for i := range p {
		p[i] = i
	}
	s := seed
	for i := 255; i > 0; i-- {
		s = s*6364136223846793005 + 1442695040888963407
		j := int((s>>32)&0x7FFFFFFF) % (i + 1)
		p[i], p[j] = p[j], p[i]
	}
	for i := 0; i < 512; i++ {
		n.perm[i] = p[i&255]
	}
	return n
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func grad2D(hash int, x, y float64) float64 {
	switch hash & 3 {
	case 0:
		return x + y
	case 1:
		return -x + y
	case 2:
		return x - y
	default:
		return -x - y
	}
}

func grad3D(hash int, x, y, z float64) float64 {
	h := hash & 15
	u := x
	if h >= 8 {
		u = y
	}
	v := y
	if h >= 4 {
		if h == 12 || h == 14 {
			v = x
		} else {
			v = z
		}
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}

// Noise2D returns a value in roughly [-1, 1] for the given point.
func (n *Noise) Noise2D(x, y float64) float64 {
	xi := int(floor(x)) & 255
	yi := int(floor(y)) & 255
	xf := x - floor(x)
	yf := y - floor(y)

	u := fade(xf)
	v := fade(yf)

	aa := n.perm[n.perm[xi]+yi]
	ab := n.perm[n.perm[xi]+yi+1]
	ba := n.perm[n.perm[xi+1]+yi]
	bb := n.perm[n.perm[xi+1]+yi+1]

	x1 := lerp(grad2D(aa, xf, yf), grad2D(ba, xf-1, yf), u)
	x2 := lerp(grad2D(ab, xf, yf-1), grad2D(bb, xf-1, yf-1), u)
	return lerp(x1, x2, v)
}

// Noise3D returns a value in roughly [-1, 1] for the given point.
func (n *Noise) Noise3D(x, y, z float64) float64 {
	xi := int(floor(x)) & 255
	yi := int(floor(y)) & 255
	zi := int(floor(z)) & 255
	xf := x - floor(x)
	yf := y - floor(y)
	zf := z - floor(z)

	u := fade(xf)
	v := fade(yf)
	w := fade(zf)

	aaa := n.perm[n.perm[n.perm[xi]+yi]+zi]
	aba := n.perm[n.perm[n.perm[xi]+yi+1]+zi]
	aab := n.perm[n.perm[n.perm[xi]+yi]+zi+1]
	abb := n.perm[n.perm[n.perm[xi]+yi+1]+zi+1]
	baa := n.perm[n.perm[n.perm[xi+1]+yi]+zi]
	bba := n.perm[n.perm[n.perm[xi+1]+yi+1]+zi]
	bab := n.perm[n.perm[n.perm[xi+1]+yi]+zi+1]
	bbb := n.perm[n.perm[n.perm[xi+1]+yi+1]+zi+1]

	x1 := lerp(grad3D(aaa, xf, yf, zf), grad3D(baa, xf-1, yf, zf), u)
	x2 := lerp(grad3D(aba, xf, yf-1, zf), grad3D(bba, xf-1, yf-1, zf), u)
	y1 := lerp(x1, x2, v)

	x3 := lerp(grad3D(aab, xf, yf, zf-1), grad3D(bab, xf-1, yf, zf-1), u)
	x4 := lerp(grad3D(abb, xf, yf-1, zf-1), grad3D(bbb, xf-1, yf-1, zf-1), u)
	y2 := lerp(x3, x4, v)

	return lerp(y1, y2, w)
}

// FBM2D sums octaves of Noise2D, normalized back to [-1, 1].
func (n *Noise) FBM2D(x, y float64, octaves int, lacunarity, gain float64) float64 {
	var total, maxAmp float64
	amp := 1.0
	freq := 1.0
	for i := 0; i < octaves; i++ {
		total += n.Noise2D(x*freq, y*freq) * amp
		maxAmp += amp
		amp *= gain
		freq *= lacunarity
	}
	if maxAmp == 0 {
		return 0
	}
	return total / maxAmp
}

// FBM3D sums octaves of Noise3D, normalized back to [-1, 1].
func (n *Noise) FBM3D(x, y, z float64, octaves int, lacunarity, gain float64) float64 {
	var total, maxAmp float64
	amp := 1.0
	freq := 1.0
	for i := 0; i < octaves; i++ {
		total += n.Noise3D(x*freq, y*freq, z*freq) * amp
		maxAmp += amp
		amp *= gain
		freq *= lacunarity
	}
	if maxAmp == 0 {
		return 0
	}
	return total / maxAmp
}

func floor(f float64) float64 {
	i := float64(int64(f))
	if f < i {
		return i - 1
	}
	return i
}

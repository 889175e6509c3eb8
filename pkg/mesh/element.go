package mesh

// q1Stiffness returns the Q1 element stiffness matrix ∫∇φi·∇φj
// of a hypercube cell with edge length h, in local vertex order.
//
// The Q1 basis is a tensor product of 1-D linear functions, so each entry
// is a sum over axes of the 1-D stiffness along that axis times the 1-D
// mass along the others.
func q1Stiffness(dim int, h float64) [][]float64 {
	mass := [2][2]float64{{h / 3, h / 6}, {h / 6, h / 3}}
	stiffness := [2][2]float64{{1 / h, -1 / h}, {-1 / h, 1 / h}}
	n := 1 << dim
	k := make([][]float64, n)
	for i := range k {
		k[i] = make([]float64, n)
		for j := range k[i] {
			for d := 0; d < dim; d++ {
				term := stiffness[(i>>d)&1][(j>>d)&1]
				for e := 0; e < dim; e++ {
					if e != d {
						term *= mass[(i>>e)&1][(j>>e)&1]
					}
				}
				k[i][j] += term
			}
		}
	}
	return k
}

// Package partition precomputes integer partition tables used as the
// genotype search space.  For a locus with copy number n, the candidate
// genotypes are exactly the partitions of n: nonincreasing positive integer
// vectors summing to n, zero-padded on the right to width n.
package partition

import (
	"fmt"
)

// MaxN is the largest copy number a table can be built for.  numPartitions
// grows quickly (numPartitions[50] is 204226); larger tables would dominate
// memory and scoring time for no biological gain.
const MaxN = 50

// numPartitions[n] is the number of partitions of n (OEIS A000041).  Used to
// preallocate result matrices exactly.
var numPartitions = [MaxN + 1]int{
	1, 1, 2, 3, 5, 7, 11, 15, 22, 30, 42, 56, 77, 101, 135, 176, 231, 297,
	385, 490, 627, 792, 1002, 1255, 1575, 1958, 2436, 3010, 3718, 4565, 5604,
	6842, 8349, 10143, 12310, 14883, 17977, 21637, 26015, 31185, 37338, 44583,
	53174, 63261, 75175, 89134, 105558, 124754, 147273, 173525, 204226,
}

// Matrix is a row-major numRows x n matrix holding every partition of n, one
// partition per row.  Entries are small nonnegative integers stored as
// float32 so the estimator can scale rows without conversion in its inner
// loop.
type Matrix struct {
	n       int
	numRows int
	data    []float32
}

// N returns the integer the matrix partitions, which is also the row width.
func (m Matrix) N() int { return m.n }

// NumRows returns the number of partitions in the matrix.
func (m Matrix) NumRows() int { return m.numRows }

// Row returns the i'th partition as a length-N slice.  The slice aliases the
// matrix; callers must not modify it.
func (m Matrix) Row(i int) []float32 {
	return m.data[i*m.n : (i+1)*m.n]
}

// Table maps a copy number to the matrix of its partitions.  A Table is
// immutable after Build and safe for concurrent readers.
type Table struct {
	matrices map[int]Matrix
}

// Build generates partition matrices for every distinct copy number in
// copyNumbers.  Copy number 0 yields an empty matrix.  Copy numbers above
// MaxN are refused.
func Build(copyNumbers []int) (*Table, error) {
	t := &Table{matrices: make(map[int]Matrix)}
	for _, n := range copyNumbers {
		if n < 0 || n > MaxN {
			return nil, fmt.Errorf("partition: copy number %d out of supported range [0, %d]", n, MaxN)
		}
		if _, ok := t.matrices[n]; ok {
			continue
		}
		t.matrices[n] = generate(n)
	}
	return t, nil
}

// Get returns the partition matrix for n, or ok=false if the table was not
// built for n.
func (t *Table) Get(n int) (Matrix, bool) {
	m, ok := t.matrices[n]
	return m, ok
}

// generate enumerates all partitions of n in the fixed descending order
// produced by Kelleher's iterative algorithm.  The enumeration order is part
// of the package contract: downstream tie-break behavior depends on every
// build producing rows in the same order.
func generate(n int) Matrix {
	if n == 0 {
		return Matrix{}
	}
	m := Matrix{
		n:       n,
		numRows: numPartitions[n],
		data:    make([]float32, numPartitions[n]*n),
	}
	// Kelleher emits partitions in ascending order; rows are filled from the
	// bottom up so that the table reads top-down in descending order.
	rowIdx := m.numRows - 1

	a := make([]int, n+1)
	k := 1
	a[1] = n
	for k != 0 {
		x := a[k-1] + 1
		y := a[k] - 1
		k--
		for x <= y {
			a[k] = x
			y -= x
			k++
		}
		a[k] = x + y
		row := m.Row(rowIdx)
		for i, v := range a[:k+1] {
			row[k-i] = float32(v)
		}
		if rowIdx == 0 {
			break
		}
		rowIdx--
	}
	return m
}

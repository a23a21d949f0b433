package wuziqi

import (
	"github.com/pkg/errors"
)

// NumSymmetries is the size of the dihedral group of the square: 4 rotations, each with and without a reflection.
const NumSymmetries = 8

// rows returns row views of a row major n x n board.
func rows(board []float32, n int) [][]float32 {
	retVal := make([][]float32, n)
	for i := range retVal {
		retVal[i] = board[i*n : (i+1)*n]
	}
	return retVal
}

func checkSquare(board []float32, m, n int) error {
	if m != n {
		return errors.Errorf("Cannot handle m %d, n %d. This function only takes square boards", m, n)
	}
	if len(board) != m*n {
		return errors.Errorf("Expected a board of %d cells. Got %d", m*n, len(board))
	}
	return nil
}

// RotateBoard rotates a square board a quarter turn counterclockwise. The input is not modified.
func RotateBoard(board []float32, m, n int) ([]float32, error) {
	if err := checkSquare(board, m, n); err != nil {
		return nil, err
	}
	copied := make([]float32, len(board))
	copy(copied, board)
	it := rows(copied, m)
	for i := 0; i < m/2; i++ {
		mi1 := m - i - 1
		for j := i; j < mi1; j++ {
			mj1 := m - j - 1
			tmp := it[i][j]
			// right to top
			it[i][j] = it[j][mi1]

			// bottom to right
			it[j][mi1] = it[mi1][mj1]

			// left to bottom
			it[mi1][mj1] = it[mj1][i]

			// tmp is left
			it[mj1][i] = tmp
		}
	}
	return copied, nil
}

// FlipBoard mirrors a square board left to right. The input is not modified.
func FlipBoard(board []float32, m, n int) ([]float32, error) {
	if err := checkSquare(board, m, n); err != nil {
		return nil, err
	}
	copied := make([]float32, len(board))
	copy(copied, board)
	for _, row := range rows(copied, m) {
		for i, j := 0, len(row)-1; i < j; i, j = i+1, j-1 {
			row[i], row[j] = row[j], row[i]
		}
	}
	return copied, nil
}

// Symmetry applies the kth symmetry (0 <= k < 8) to an n x n board: symmetries 4 to 7 mirror the board first,
// then every symmetry rotates it k%4 quarter turns. Symmetry 0 is the identity.
func Symmetry(board []float32, n, k int) (retVal []float32, err error) {
	if k < 0 || k >= NumSymmetries {
		return nil, errors.Errorf("Symmetry %d out of range [0, %d)", k, NumSymmetries)
	}
	if err = checkSquare(board, n, n); err != nil {
		return nil, err
	}
	retVal = make([]float32, len(board))
	copy(retVal, board)
	if k >= 4 {
		if retVal, err = FlipBoard(retVal, n, n); err != nil {
			return nil, err
		}
	}
	for r := 0; r < k%4; r++ {
		if retVal, err = RotateBoard(retVal, n, n); err != nil {
			return nil, err
		}
	}
	return retVal, nil
}

// InverseSymmetry undoes Symmetry(board, n, k).
func InverseSymmetry(board []float32, n, k int) (retVal []float32, err error) {
	if k < 0 || k >= NumSymmetries {
		return nil, errors.Errorf("Symmetry %d out of range [0, %d)", k, NumSymmetries)
	}
	if err = checkSquare(board, n, n); err != nil {
		return nil, err
	}
	retVal = make([]float32, len(board))
	copy(retVal, board)
	for r := 0; r < (4-k%4)%4; r++ {
		if retVal, err = RotateBoard(retVal, n, n); err != nil {
			return nil, err
		}
	}
	if k >= 4 {
		if retVal, err = FlipBoard(retVal, n, n); err != nil {
			return nil, err
		}
	}
	return retVal, nil
}

// Augment returns an Augmenter that expands an example on an n x n board into its 8 symmetries.
// The board and the policy go through the same transform. It panics if n is not a valid board size.
func Augment(n int) Augmenter {
	if n < 1 {
		panic("Cannot augment examples of a board with no cells")
	}
	return func(ex Example) ([]Example, error) {
		retVal := make([]Example, 0, NumSymmetries)
		for k := 0; k < NumSymmetries; k++ {
			board, err := Symmetry(ex.Board, n, k)
			if err != nil {
				return nil, errors.WithMessage(err, "board")
			}
			policy, err := Symmetry(ex.Policy, n, k)
			if err != nil {
				return nil, errors.WithMessage(err, "policy")
			}
			retVal = append(retVal, Example{Board: board, Policy: policy, Value: ex.Value})
		}
		return retVal, nil
	}
}

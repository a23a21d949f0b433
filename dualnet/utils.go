package dual

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// batcher cuts aligned minibatches out of the example tensors. The first error sticks.
type batcher struct {
	size int
	err  error
}

// batch returns rows [n*size, (n+1)*size) of each of ts.
func (b *batcher) batch(n int, ts ...*tensor.Dense) []*tensor.Dense {
	if b.err != nil {
		return nil
	}
	rows := rowRange{start: n * b.size, end: (n + 1) * b.size}
	retVal := make([]*tensor.Dense, len(ts))
	for i, t := range ts {
		if rows.end > t.Shape()[0] {
			b.err = errors.Errorf("batch %d needs rows up to %d but the tensor holds %d", n, rows.end, t.Shape()[0])
			return nil
		}
		v, err := t.Slice(rows)
		if err != nil {
			b.err = errors.Wrapf(err, "slicing batch %d", n)
			return nil
		}
		retVal[i] = v.(*tensor.Dense)
	}
	return retVal
}

// rowRange is a tensor.Slice over the leading axis.
type rowRange struct{ start, end int }

func (r rowRange) Start() int { return r.start }
func (r rowRange) End() int   { return r.end }
func (r rowRange) Step() int  { return 1 }

package dual

import (
	"bytes"
	"log"
	"time"

	"github.com/pkg/errors"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
	"gorgonia.org/tensor/native"
)

// Train is a basic trainer. Xs is (N, Features, Height, Width), policies is (N, ActionSpace) and values is (N).
// N must hold at least batches*BatchSize examples.
func Train(d *Dual, Xs, policies, values *tensor.Dense, batches, iterations int) error {
	if d.FwdOnly {
		return errors.New("cannot train a forward only network")
	}
	if n := Xs.Shape()[0]; n < batches*d.BatchSize {
		return errors.Errorf("Train: %d examples cannot fill %d batches of %d", n, batches, d.BatchSize)
	}

	m := G.NewTapeMachine(d.g, G.BindDualValues(d.Model()...))
	defer m.Close()
	model := G.NodesToValueGrads(d.Model())
	solver := G.NewVanillaSolver(G.WithLearnRate(d.LearnRate))

	bs := batcher{size: d.Config.BatchSize}
	for i := 0; i < iterations; i++ {
		var cost float32
		for bat := 0; bat < batches; bat++ {
			cut := bs.batch(bat, Xs, policies, values)
			if bs.err != nil {
				return bs.err
			}
			Xs2, π, v := cut[0], cut[1], cut[2]

			if err := G.Let(d.planes, Xs2); err != nil {
				return errors.WithStack(err)
			}
			if err := G.Let(d.Π, π); err != nil {
				return errors.WithStack(err)
			}
			if err := G.Let(d.V, v); err != nil {
				return errors.WithStack(err)
			}
			if err := m.RunAll(); err != nil {
				return err
			}
			cost += d.Cost()
			if err := solver.Step(model); err != nil {
				return err
			}
			m.Reset()
		}
		if err := shuffleBatch(Xs, policies, values); err != nil {
			return err
		}
		if batches > 0 {
			zlog.Debug().Int("iteration", i).Float32("cost", cost/float32(batches)).Msg("train")
		}
	}
	return nil
}

// shuffleBatch shuffles the examples, keeping boards, policies and values aligned.
func shuffleBatch(Xs, π, v *tensor.Dense) (err error) {
	r := rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	oriXs := Xs.Shape().Clone()
	oriPis := π.Shape().Clone()

	defer func() {
		if r := recover(); r != nil {
			zlog.Error().Msgf("shuffle batch: %v %v", Xs.Shape(), π.Shape())
			panic(r)
		}
	}()
	if err = Xs.Reshape(as2D(Xs.Shape())...); err != nil {
		return errors.Wrapf(err, "shuffle batch failed - reshape X")
	}
	if err = π.Reshape(as2D(π.Shape())...); err != nil {
		return errors.Wrapf(err, "shuffle batch failed - reshape pi")
	}
	defer func() {
		Xs.Reshape(oriXs...)
		π.Reshape(oriPis...)
	}()

	var matXs, matPis [][]float32
	if matXs, err = native.MatrixF32(Xs); err != nil {
		return errors.Wrapf(err, "shuffle batch failed - matX")
	}
	if matPis, err = native.MatrixF32(π); err != nil {
		return errors.Wrapf(err, "shuffle batch failed - pi")
	}
	vs := v.Data().([]float32)

	tmpX := make([]float32, Xs.Shape()[1])
	tmpPi := make([]float32, π.Shape()[1])
	for i := range matXs {
		j := r.Intn(i + 1)

		copy(tmpX, matXs[i])
		copy(matXs[i], matXs[j])
		copy(matXs[j], tmpX)

		copy(tmpPi, matPis[i])
		copy(matPis[i], matPis[j])
		copy(matPis[j], tmpPi)

		vs[i], vs[j] = vs[j], vs[i]
	}
	return nil
}

func as2D(s tensor.Shape) tensor.Shape {
	retVal := make(tensor.Shape, 2)
	retVal[0] = s[0]
	retVal[1] = 1
	for i := 1; i < len(s); i++ {
		retVal[1] *= s[i]
	}
	return retVal
}

// Inferencer is a struct that holds the state for a *Dual and a VM. By using an Inferencer,
// there is no longer a need to create a VM every time an inference needs to be done.
//
// Inferencer implements mcts.Predictor. It is not safe for concurrent use.
type Inferencer struct {
	d *Dual
	m G.VM

	input *tensor.Dense
	buf   *bytes.Buffer
}

// Infer takes a trained *Dual, and creates a interence data structure such that it'd be easy to infer
func Infer(d *Dual, toLog bool) (*Inferencer, error) {
	conf := d.Config
	conf.FwdOnly = true
	// batchnorm needs more than one row; only the first row is ever read.
	conf.BatchSize = conf.ActionSpace
	newShape := d.planes.Shape().Clone()
	newShape[0] = conf.BatchSize
	retVal := &Inferencer{
		d:     New(conf),
		input: tensor.New(tensor.WithShape(newShape...), tensor.Of(Float)),
	}
	if err := retVal.d.Init(); err != nil {
		return nil, err
	}
	retVal.d.SetTesting()

	infModel := retVal.d.Model()
	for i, n := range d.Model() {
		original := n.Value().Data().([]float32)
		cloned := infModel[i].Value().Data().([]float32)
		copy(cloned, original)
	}

	retVal.buf = new(bytes.Buffer)
	if toLog {
		logger := log.New(retVal.buf, "", 0)
		retVal.m = G.NewTapeMachine(retVal.d.g,
			G.WithLogger(logger),
			G.WithWatchlist(),
			G.TraceExec(),
			G.WithValueFmt("%+1.1v"),
			G.WithNaNWatch(),
		)
	} else {
		retVal.m = G.NewTapeMachine(retVal.d.g)
	}
	return retVal, nil
}

// Dual implements Dualer
func (m *Inferencer) Dual() *Dual { return m.d }

// Predict takes the canonical board and returns the policy logits and the value for the player to move.
func (m *Inferencer) Predict(board []float32) (logits []float32, value float32, err error) {
	if want := m.d.Width * m.d.Height * m.d.Features; len(board) != want {
		return nil, 0, errors.Errorf("Predict: expected a board of %d cells. Got %d", want, len(board))
	}
	for _, op := range m.d.ops {
		if err = op.Reset(); err != nil {
			return nil, 0, errors.WithStack(err)
		}
	}

	// copy board to the provided preallocated input tensor
	m.input.Zero()
	data := m.input.Data().([]float32)
	copy(data, board)

	m.m.Reset()
	m.buf.Reset()
	if err = G.Let(m.d.planes, m.input); err != nil {
		return nil, 0, errors.WithStack(err)
	}
	if err = m.m.RunAll(); err != nil {
		return nil, 0, err
	}
	policy := m.d.policyValue.Data().([]float32)
	value = m.d.value.Data().([]float32)[0]

	logits = make([]float32, m.d.ActionSpace)
	copy(logits, policy[:m.d.ActionSpace])
	return logits, value, nil
}

// ExecLog returns the execution log. If Infer was called with toLog = false, then it will return an empty string
func (m *Inferencer) ExecLog() string { return m.buf.String() }

// Close implements a closer, because well, a gorgonia VM is a resource.
func (m *Inferencer) Close() error { return m.m.Close() }

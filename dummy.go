package wuziqi

import (
	"bytes"
	"fmt"
)

// dummyInferer is used before there is a trained network. Equal logits become a uniform prior over the legal moves.
type dummyInferer struct{}

func (d dummyInferer) Predict(board []float32) (logits []float32, value float32, err error) {
	return make([]float32, len(board)), 0, nil
}

func (d dummyInferer) Close() error { return nil }

type manyErr []error

func (err manyErr) Error() string {
	var buf bytes.Buffer
	for _, e := range err {
		fmt.Fprintln(&buf, e.Error())
	}
	return buf.String()
}

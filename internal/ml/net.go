package ml

import (
	"fmt"
	"math"

	xml "github.com/drakos74/go-ex-machina/xmachina/ml"
	"github.com/drakos74/go-ex-machina/xmachina/net"
	"github.com/drakos74/go-ex-machina/xmachina/net/ff"
	"github.com/drakos74/go-ex-machina/xmath"
	"github.com/drakos74/scalearn/internal/dataset"
)

// Net is a feed forward network classifier backed by go-ex-machina.
type Net struct {
	hidden  int
	epochs  int
	classes int
	rate    float64
	network *ff.Network
}

func NewNet(p Params) *Net {
	return &Net{
		hidden:  p.GetInt("hidden", 16),
		epochs:  p.GetInt("epochs", 10),
		classes: p.GetInt("classes", 2),
		rate:    p.GetFloat64("rate", 0.1),
	}
}

func (n *Net) Fit(train dataset.Dataset) error {
	if train.Len() == 0 {
		return fmt.Errorf("empty training set")
	}

	rate := xml.Learn(1, n.rate)
	initW := xmath.Rand(-1, 1, math.Sqrt)
	initB := xmath.Rand(-1, 1, math.Sqrt)

	network := ff.New(train.Features(), n.classes).
		Add(n.hidden, net.NewBuilder().
			WithModule(xml.Base().
				WithRate(rate).
				WithActivation(xml.TanH)).
			WithWeights(initW, initB).
			Factory(net.NewActivationCell)).
		Add(n.classes, net.NewBuilder().
			WithModule(xml.Base().
				WithRate(rate).
				WithActivation(xml.TanH)).
			WithWeights(initW, initB).
			Factory(net.NewActivationCell)).
		Add(n.classes, net.NewBuilder().CellFactory(net.NewSoftCell))
	network.Loss(xml.Pow)

	for epoch := 0; epoch < n.epochs; epoch++ {
		for i, row := range train.X {
			out := make([]float64, n.classes)
			c := int(math.Round(train.Y[i]))
			if c < 0 || c >= n.classes {
				return fmt.Errorf("class out of range at %d : %d", i, c)
			}
			out[c] = 1
			inp := xmath.Vec(len(row)).With(row...)
			network.Train(inp, xmath.Vec(n.classes).With(out...))
		}
	}

	n.network = network
	return nil
}

func (n *Net) Score(test dataset.Dataset) (float64, error) {
	if n.network == nil {
		return 0, fmt.Errorf("no network trained")
	}
	got := make([]float64, test.Len())
	for i, row := range test.X {
		inp := xmath.Vec(len(row)).With(row...)
		outp := n.network.Predict(inp)
		got[i] = float64(argmax(outp))
	}
	return Accuracy(test.Y, got), nil
}

package sprt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidRejectsBadBounds(t *testing.T) {
	assert.True(t, Params{Elo0: 0, Elo1: 5, Alpha: 0.05, Beta: 0.05}.Valid())
	assert.False(t, Params{Elo0: 5, Elo1: 0, Alpha: 0.05, Beta: 0.05}.Valid())
	assert.False(t, Params{Elo0: 0, Elo1: 5, Alpha: 0, Beta: 0.05}.Valid())
	assert.False(t, Params{Elo0: 0, Elo1: 5, Alpha: 0.05, Beta: 1}.Valid())
}

func TestLLRZeroWithFewerThanTwoNonzeroBuckets(t *testing.T) {
	p := Params{Elo0: 0, Elo1: 10, Alpha: 0.05, Beta: 0.05}
	assert.Zero(t, p.LLR(5, 0, 0))
	assert.Zero(t, p.LLR(0, 0, 0))
}

func TestDoneAcceptsH1WithStrongWinningRecord(t *testing.T) {
	p := Params{Elo0: 0, Elo1: 30, Alpha: 0.05, Beta: 0.05}
	verdict, l := p.Done(400, 100, 100)
	assert.Equal(t, AcceptH1, verdict)
	_, upper := p.Bounds()
	assert.Greater(t, l, upper)
}

func TestDoneAcceptsH0WithEvenRecord(t *testing.T) {
	p := Params{Elo0: 0, Elo1: 30, Alpha: 0.05, Beta: 0.05}
	verdict, l := p.Done(250, 250, 500)
	assert.Equal(t, AcceptH0, verdict)
	lower, _ := p.Bounds()
	assert.Less(t, l, lower)
}

func TestDoneContinuesWithSmallSample(t *testing.T) {
	p := Params{Elo0: 0, Elo1: 30, Alpha: 0.05, Beta: 0.05}
	verdict, _ := p.Done(3, 2, 1)
	assert.Equal(t, Continuing, verdict)
}

func TestBoundsAreSymmetricInLogSpace(t *testing.T) {
	p := Params{Elo0: 0, Elo1: 10, Alpha: 0.05, Beta: 0.05}
	lower, upper := p.Bounds()
	assert.InDelta(t, -upper, lower, 1e-9, "equal alpha/beta should give symmetric bounds")
}

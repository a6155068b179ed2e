package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierFor(t *testing.T) {
	cases := map[int]Tier{
		0:  TierNew,
		1:  TierRegular,
		2:  TierRegular,
		3:  TierFrequent,
		4:  TierFrequent,
		5:  TierVIP,
		12: TierVIP,
	}
	for count, want := range cases {
		assert.Equal(t, want, TierFor(count), "count %d", count)
	}
}

func TestCancellationCanDropVIPToFrequent(t *testing.T) {
	assert.Equal(t, TierVIP, TierFor(5))
	assert.Equal(t, TierFrequent, TierFor(4))
}

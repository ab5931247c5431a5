package keeper

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupBySponsor(t *testing.T) {
	sponsorA := common.HexToAddress("0x000000000000000000000000000000000000000a")
	sponsorB := common.HexToAddress("0x000000000000000000000000000000000000000b")

	subscriptions := []*Subscription{
		{ID: common.Hash{0x01}, Sponsor: sponsorA},
		{ID: common.Hash{0x02}, Sponsor: sponsorB},
		{ID: common.Hash{0x03}, Sponsor: sponsorA},
		{ID: common.Hash{0x04}, Sponsor: sponsorB},
	}

	sponsors, grouped := groupBySponsor(subscriptions)

	// Sponsors appear in first-seen order
	require.Equal(t, []common.Address{sponsorA, sponsorB}, sponsors)

	// Subscriptions keep their relative order inside a sponsor, that order
	// is what nonces get assigned in
	require.Len(t, grouped[sponsorA], 2)
	assert.Equal(t, common.Hash{0x01}, grouped[sponsorA][0].ID)
	assert.Equal(t, common.Hash{0x03}, grouped[sponsorA][1].ID)

	require.Len(t, grouped[sponsorB], 2)
	assert.Equal(t, common.Hash{0x02}, grouped[sponsorB][0].ID)
	assert.Equal(t, common.Hash{0x04}, grouped[sponsorB][1].ID)
}

func TestGroupBySponsorEmpty(t *testing.T) {
	sponsors, grouped := groupBySponsor(nil)
	assert.Empty(t, sponsors)
	assert.Empty(t, grouped)
}

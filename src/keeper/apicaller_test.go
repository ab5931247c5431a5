package keeper

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/api3dao/airkeeper/src/adapter"
	"github.com/api3dao/airkeeper/src/utils/config"
	"github.com/api3dao/airkeeper/src/utils/protocol"
)

// fakeApi hands out canned values by the "from" parameter and can be told
// to fail a number of times first
type fakeApi struct {
	mtx      sync.Mutex
	values   map[string]*big.Int
	failures map[string]int
}

func (self *fakeApi) Call(ctx context.Context, request adapter.Request) (*big.Int, error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	from := request.Parameters["from"]
	if self.failures[from] > 0 {
		self.failures[from]--
		return nil, errors.New("Api call failed")
	}

	value, ok := self.values[from]
	if !ok {
		return nil, errors.New("Api call failed")
	}
	return value, nil
}

func TestApiCallerTestSuite(t *testing.T) {
	suite.Run(t, new(ApiCallerTestSuite))
}

type ApiCallerTestSuite struct {
	suite.Suite

	endpointID common.Hash

	ethParameters []byte
	btcParameters []byte

	ethSubscription *Subscription
	btcSubscription *Subscription
}

// encodeParameters builds a "1S" schema blob with a single string pair
func encodeParameters(t *testing.T, name string, value string) []byte {
	typeBytes32, err := gethabi.NewType("bytes32", "", nil)
	require.NoError(t, err)
	typeString, err := gethabi.NewType("string", "", nil)
	require.NoError(t, err)

	var header, nameWord [32]byte
	copy(header[:], "1S")
	copy(nameWord[:], name)

	args := gethabi.Arguments{{Type: typeBytes32}, {Type: typeBytes32}, {Type: typeString}}
	encoded, err := args.Pack(header, nameWord, value)
	require.NoError(t, err)
	return encoded
}

func (s *ApiCallerTestSuite) SetupSuite() {
	var err error
	s.endpointID, err = protocol.DeriveEndpointID("Currency Converter API", "convertToUSD")
	require.NoError(s.T(), err)

	s.ethParameters = encodeParameters(s.T(), "from", "ETH")
	s.btcParameters = encodeParameters(s.T(), "from", "BTC")

	s.ethSubscription = &Subscription{
		ID:      common.Hash{0xe1},
		Sponsor: common.HexToAddress("0x61648B2Ec3e6b3492E90184Ef281C2ba28a675ec"),
	}
	s.btcSubscription = &Subscription{
		ID:      common.Hash{0xb1},
		Sponsor: common.HexToAddress("0x61648B2Ec3e6b3492E90184Ef281C2ba28a675ec"),
	}
}

func (s *ApiCallerTestSuite) groups() []*GroupedSubscriptions {
	endpoint := config.Endpoint{OisTitle: "Currency Converter API", EndpointName: "convertToUSD"}
	return []*GroupedSubscriptions{
		{
			TemplateID:         protocol.DeriveTemplateID(s.endpointID, s.ethParameters),
			EndpointID:         s.endpointID,
			Endpoint:           endpoint,
			TemplateParameters: s.ethParameters,
			Subscriptions:      []*Subscription{s.ethSubscription},
		},
		{
			TemplateID:         protocol.DeriveTemplateID(s.endpointID, s.btcParameters),
			EndpointID:         s.endpointID,
			Endpoint:           endpoint,
			TemplateParameters: s.btcParameters,
			Subscriptions:      []*Subscription{s.btcSubscription},
		},
	}
}

func (s *ApiCallerTestSuite) coordinator(api ApiClient) *Coordinator {
	merged := &config.Merged{
		Mnemonic: testMnemonic,
		OIS: []config.OIS{
			{Title: "Currency Converter API"},
		},
	}

	coordinator, err := NewCoordinator(config.Default(), merged)
	require.NoError(s.T(), err)
	return coordinator.WithApiClient(api)
}

func (s *ApiCallerTestSuite) TestValuesDistributedToSubscriptions() {
	api := &fakeApi{
		values: map[string]*big.Int{
			"ETH": big.NewInt(723392020),
			"BTC": big.NewInt(41091123450),
		},
	}

	apiValues := s.coordinator(api).callPspApis(context.Background(), s.groups())

	require.Len(s.T(), apiValues, 2)
	assert.Equal(s.T(), big.NewInt(723392020), apiValues[s.ethSubscription.ID])
	assert.Equal(s.T(), big.NewInt(41091123450), apiValues[s.btcSubscription.ID])
}

func (s *ApiCallerTestSuite) TestTransientFailureRetries() {
	api := &fakeApi{
		values: map[string]*big.Int{
			"ETH": big.NewInt(723392020),
			"BTC": big.NewInt(41091123450),
		},
		// First ETH attempt throws, the retry succeeds
		failures: map[string]int{"ETH": 1},
	}

	apiValues := s.coordinator(api).callPspApis(context.Background(), s.groups())

	require.Len(s.T(), apiValues, 2)
	assert.Equal(s.T(), big.NewInt(723392020), apiValues[s.ethSubscription.ID])
}

func (s *ApiCallerTestSuite) TestFailedWorkUnitIsIsolated() {
	api := &fakeApi{
		values: map[string]*big.Int{
			"ETH": big.NewInt(723392020),
			// BTC keeps failing
		},
	}

	apiValues := s.coordinator(api).callPspApis(context.Background(), s.groups())

	// ETH made it, BTC's absence is what downstream phases key off
	require.Len(s.T(), apiValues, 1)
	assert.Equal(s.T(), big.NewInt(723392020), apiValues[s.ethSubscription.ID])
	assert.Nil(s.T(), apiValues[s.btcSubscription.ID])
}

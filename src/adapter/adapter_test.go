package adapter

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/api3dao/airkeeper/src/utils/config"
)

func TestAdapterTestSuite(t *testing.T) {
	suite.Run(t, new(AdapterTestSuite))
}

type AdapterTestSuite struct {
	suite.Suite

	server *httptest.Server

	// Captured by the handler
	lastQuery  map[string]string
	lastAPIKey string
}

func (s *AdapterTestSuite) SetupSuite() {
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.lastQuery = map[string]string{}
		for key := range r.URL.Query() {
			s.lastQuery[key] = r.URL.Query().Get(key)
		}
		s.lastAPIKey = r.Header.Get("X-Api-Key")

		prices := map[string]string{
			"ETH": "723.39202",
			"BTC": "41091.12345",
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"result":  prices[r.URL.Query().Get("from")],
		})
	}))
}

func (s *AdapterTestSuite) TearDownSuite() {
	s.server.Close()
}

func (s *AdapterTestSuite) ois() config.OIS {
	return config.OIS{
		Title: "Currency Converter API",
		APISpecifications: config.APISpecifications{
			Servers: []config.Server{{URL: s.server.URL}},
		},
		Endpoints: []config.OISEndpoint{
			{
				Name:      "convertToUSD",
				Operation: config.Operation{Method: "GET", Path: "/convert"},
				FixedOperationParameters: []config.FixedOperationParameter{
					{
						OperationParameter: config.OperationParameter{In: "query", Name: "to"},
						Value:              "USD",
					},
				},
				ReservedParameters: []config.ReservedParameter{
					{Name: "_type", Default: "int256"},
					{Name: "_path", Default: "result"},
					{Name: "_times"},
				},
				Parameters: []config.EndpointParameter{
					{
						Name:               "from",
						OperationParameter: config.OperationParameter{In: "query", Name: "from"},
						Default:            "EUR",
					},
				},
			},
		},
	}
}

func (s *AdapterTestSuite) TestCall() {
	client := NewClient()

	value, err := client.Call(context.Background(), Request{
		OIS:          s.ois(),
		EndpointName: "convertToUSD",
		Parameters: map[string]string{
			"from":   "ETH",
			"_times": "1000000",
		},
		Credentials: []config.APICredential{
			{
				OisTitle:            "Currency Converter API",
				SecuritySchemeName:  "X-Api-Key",
				SecuritySchemeValue: "secret",
				In:                  "header",
			},
			{
				// Credentials of other OISes never leak into the request
				OisTitle:            "Another API",
				SecuritySchemeName:  "token",
				SecuritySchemeValue: "nope",
				In:                  "query",
			},
		},
	})
	require.NoError(s.T(), err)

	assert.Equal(s.T(), big.NewInt(723392020), value)
	assert.Equal(s.T(), "ETH", s.lastQuery["from"])
	assert.Equal(s.T(), "USD", s.lastQuery["to"])
	assert.Equal(s.T(), "secret", s.lastAPIKey)
	assert.NotContains(s.T(), s.lastQuery, "token")
}

func (s *AdapterTestSuite) TestCallUsesParameterDefault() {
	client := NewClient()

	_, err := client.Call(context.Background(), Request{
		OIS:          s.ois(),
		EndpointName: "convertToUSD",
		Parameters: map[string]string{
			"_times": "1000000",
		},
	})
	// EUR has no canned price, the response value is empty and extraction
	// fails, but the default still went on the wire
	assert.Error(s.T(), err)
	assert.Equal(s.T(), "EUR", s.lastQuery["from"])
}

func (s *AdapterTestSuite) TestCallUnknownEndpoint() {
	client := NewClient()

	_, err := client.Call(context.Background(), Request{
		OIS:          s.ois(),
		EndpointName: "noSuchEndpoint",
	})
	assert.ErrorIs(s.T(), err, ErrUnknownEndpoint)
}

func (s *AdapterTestSuite) TestCallMissingTypeDropsUnit() {
	ois := s.ois()
	ois.Endpoints[0].ReservedParameters = []config.ReservedParameter{
		{Name: "_path", Default: "result"},
	}

	client := NewClient()
	_, err := client.Call(context.Background(), Request{
		OIS:          ois,
		EndpointName: "convertToUSD",
		Parameters:   map[string]string{"from": "ETH"},
	})
	assert.ErrorIs(s.T(), err, ErrMissingType)
}

package eth

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Client is a JSON-RPC client bound to one chain and one provider URL.
// All calls go through a rate limiter so one misbehaving cycle can't
// hammer the provider.
type Client struct {
	inner   *ethclient.Client
	limiter *rate.Limiter
	chainID *big.Int
}

// Dial connects to the provider and verifies it serves the expected chain
func Dial(ctx context.Context, log *logrus.Entry, url string, expectedChainID *big.Int, requestsPerSecond int) (self *Client, err error) {
	inner, err := ethclient.DialContext(ctx, url)
	if err != nil {
		log.WithError(err).WithField("url", url).Error("Cannot dial provider")
		return
	}

	self = &Client{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		chainID: expectedChainID,
	}

	chainID, err := self.ChainID(ctx)
	if err != nil {
		inner.Close()
		return nil, err
	}
	if chainID.Cmp(expectedChainID) != 0 {
		inner.Close()
		return nil, fmt.Errorf("provider %s serves chain %s, expected %s", url, chainID, expectedChainID)
	}

	return
}

func (self *Client) Close() {
	self.inner.Close()
}

func (self *Client) ChainID(ctx context.Context) (*big.Int, error) {
	if err := self.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return self.inner.ChainID(ctx)
}

func (self *Client) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	if err := self.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return self.inner.HeaderByNumber(ctx, number)
}

func (self *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	if err := self.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return self.inner.SuggestGasPrice(ctx)
}

func (self *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if err := self.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return self.inner.CallContract(ctx, msg, blockNumber)
}

// NonceAt returns the transaction count of the account at the given block
func (self *Client) NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error) {
	if err := self.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	return self.inner.NonceAt(ctx, account, blockNumber)
}

func (self *Client) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	if err := self.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return self.inner.FilterLogs(ctx, query)
}

func (self *Client) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := self.limiter.Wait(ctx); err != nil {
		return err
	}
	return self.inner.SendTransaction(ctx, tx)
}

package adapter

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/api3dao/airkeeper/src/utils/config"
	"github.com/api3dao/airkeeper/src/utils/logger"
)

var (
	ErrUnknownEndpoint = errors.New("endpoint not found in OIS")
	ErrNoServer        = errors.New("OIS has no API server")
)

// Request resolves one endpoint specification against an off-chain API
type Request struct {
	OIS          config.OIS
	EndpointName string

	// Decoded template parameters, reserved ones included
	Parameters map[string]string

	Credentials []config.APICredential
}

// Client executes adapter requests over HTTP and reduces responses to a
// single signed 256-bit value
type Client struct {
	rest *resty.Client
	log  *logrus.Entry
}

func NewClient() (self *Client) {
	self = new(Client)
	self.rest = resty.New()
	self.log = logger.NewSublogger("adapter")
	return
}

// Call performs the endpoint operation and extracts the numeric result.
// The per-attempt timeout comes in through ctx.
func (self *Client) Call(ctx context.Context, request Request) (value *big.Int, err error) {
	endpoint, err := findEndpoint(request.OIS, request.EndpointName)
	if err != nil {
		return
	}

	if len(request.OIS.APISpecifications.Servers) == 0 {
		err = ErrNoServer
		return
	}
	baseURL := request.OIS.APISpecifications.Servers[0].URL

	req := self.rest.R().SetContext(ctx)

	// Endpoint parameters carry request values onto operation parameters
	for _, parameter := range endpoint.Parameters {
		requestValue, ok := request.Parameters[parameter.Name]
		if !ok {
			requestValue = parameter.Default
		}
		if requestValue == "" {
			continue
		}
		applyOperationParameter(req, parameter.OperationParameter, requestValue)
	}

	// Parameters hardcoded by the OIS author
	for _, fixed := range endpoint.FixedOperationParameters {
		applyOperationParameter(req, fixed.OperationParameter, fixed.Value)
	}

	for _, credential := range request.Credentials {
		if credential.OisTitle != request.OIS.Title {
			continue
		}
		switch credential.In {
		case "header":
			req.SetHeader(credential.SecuritySchemeName, credential.SecuritySchemeValue)
		default:
			req.SetQueryParam(credential.SecuritySchemeName, credential.SecuritySchemeValue)
		}
	}

	url := strings.TrimSuffix(baseURL, "/") + endpoint.Operation.Path

	var response *resty.Response
	switch strings.ToUpper(endpoint.Operation.Method) {
	case "", "GET":
		response, err = req.Get(url)
	case "POST":
		response, err = req.Post(url)
	default:
		err = fmt.Errorf("unsupported operation method %q", endpoint.Operation.Method)
		return
	}
	if err != nil {
		return
	}
	if response.IsError() {
		err = fmt.Errorf("API call failed with status %d", response.StatusCode())
		return
	}

	reserved := resolveReservedParameters(endpoint, request.Parameters)
	return ExtractAndEncode(response.Body(), reserved)
}

func findEndpoint(ois config.OIS, name string) (endpoint config.OISEndpoint, err error) {
	for _, candidate := range ois.Endpoints {
		if candidate.Name == name {
			return candidate, nil
		}
	}
	err = ErrUnknownEndpoint
	return
}

func applyOperationParameter(req *resty.Request, parameter config.OperationParameter, value string) {
	switch parameter.In {
	case "header":
		req.SetHeader(parameter.Name, value)
	default:
		req.SetQueryParam(parameter.Name, value)
	}
}

// Reserved parameter values come from the request when it sets them,
// otherwise from the OIS defaults
func resolveReservedParameters(endpoint config.OISEndpoint, requestParameters map[string]string) (reserved map[string]string) {
	reserved = map[string]string{}
	for _, parameter := range endpoint.ReservedParameters {
		if value, ok := requestParameters[parameter.Name]; ok && value != "" {
			reserved[parameter.Name] = value
			continue
		}
		if parameter.Default != "" {
			reserved[parameter.Name] = parameter.Default
		}
	}
	return
}

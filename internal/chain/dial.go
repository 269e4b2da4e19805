package chain

import (
	"crypto/tls"
	"net/http"
	"net/url"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// HTTPOptions carries the connection options for an endpoint handle. A handle
// is replaced wholesale on failover, never partially mutated.
type HTTPOptions struct {
	Timeout            time.Duration
	ProxyURL           string
	InsecureSkipVerify bool
	UserAgent          string
}

// Dial connects to one RPC endpoint with the given HTTP options and returns
// the raw rpc client together with its ethclient wrapper.
func Dial(endpoint string, opts HTTPOptions) (*rpc.Client, *ethclient.Client, error) {
	transport := &http.Transport{}
	if opts.ProxyURL != "" {
		proxy, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, nil, err
		}
		transport.Proxy = http.ProxyURL(proxy)
	}
	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	httpClient := &http.Client{
		Timeout:   opts.Timeout,
		Transport: transport,
	}
	rpcClient, err := rpc.DialHTTPWithClient(endpoint, httpClient)
	if err != nil {
		return nil, nil, err
	}
	if opts.UserAgent != "" {
		rpcClient.SetHeader("User-Agent", opts.UserAgent)
	}
	return rpcClient, ethclient.NewClient(rpcClient), nil
}

package http

import (
	"crypto/tls"
	"fmt"
	"net"
	nethttp "net/http"
	"net/url"

	ntlmssp "github.com/Azure/go-ntlmssp"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http/httpproxy"

	"github.com/bellycard/apigee-cli/internal/config"
	"github.com/bellycard/apigee-cli/internal/constants"
)

// ConfigureHTTPClient configures an HTTP client with proxy settings
func ConfigureHTTPClient(s *config.Settings) (*nethttp.Client, error) {
	transport := &nethttp.Transport{
		DialContext: (&net.Dialer{
			Timeout:   constants.HTTPDialTimeout,
			KeepAlive: constants.HTTPDialKeepAlive,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		MaxIdleConns:          10,
		IdleConnTimeout:       constants.HTTPIdleConnTimeout,
		TLSHandshakeTimeout:   constants.HTTPTLSHandshakeTimeout,
		ExpectContinueTimeout: constants.HTTPExpectContinueTimeout,
	}

	client := &nethttp.Client{
		Transport: transport,
		Timeout:   constants.HTTPRequestTimeout,
	}

	switch config.NormalizeProxyMode(s.ProxyMode) {
	case "no-proxy", "":
		transport.Proxy = nil

	case "system":
		transport.Proxy = nethttp.ProxyFromEnvironment

	case "ntlm":
		// Incomplete saved settings fall back to a direct connection so that
		// 'settings init' can still be used to repair them.
		if s.ProxyHost == "" {
			log.Warn().Msg("Proxy mode is NTLM but host is missing - falling back to no-proxy mode")
			return client, nil
		}

		transport.Proxy = proxyFuncWithBypass(buildProxyURL(s), s.NoProxy)
		client.Transport = ntlmssp.Negotiator{
			RoundTripper: transport,
		}

	case "basic":
		if s.ProxyHost == "" {
			log.Warn().Msg("Proxy mode is basic but host is missing - falling back to no-proxy mode")
			return client, nil
		}

		if s.ProxyUser != "" && s.ProxyPassword == "" {
			log.Warn().Msg("Proxy user configured but password missing - proxy auth disabled until password is set")
		}
		transport.Proxy = proxyFuncWithBypass(buildProxyURL(s), s.NoProxy)

	default:
		return nil, fmt.Errorf("unsupported proxy mode: %s", s.ProxyMode)
	}

	return client, nil
}

// buildProxyURL constructs a proxy URL from settings
func buildProxyURL(s *config.Settings) *url.URL {
	port := s.ProxyPort
	if port == 0 {
		port = config.DefaultProxyPort
	}

	proxyURL := &url.URL{
		Scheme: "http",
		Host:   fmt.Sprintf("%s:%d", s.ProxyHost, port),
	}

	// An empty password in the URL makes some proxies reject the request outright
	if s.ProxyUser != "" && s.ProxyPassword != "" {
		proxyURL.User = url.UserPassword(s.ProxyUser, s.ProxyPassword)
	}

	return proxyURL
}

// proxyFuncWithBypass returns a proxy function that respects the NoProxy bypass list.
// If noProxy is empty, behaves identically to nethttp.ProxyURL.
func proxyFuncWithBypass(proxyURL *url.URL, noProxy string) func(*nethttp.Request) (*url.URL, error) {
	if noProxy == "" {
		return nethttp.ProxyURL(proxyURL)
	}
	cfg := httpproxy.Config{
		HTTPProxy:  proxyURL.String(),
		HTTPSProxy: proxyURL.String(),
		NoProxy:    noProxy,
	}
	proxyFunc := cfg.ProxyFunc()
	return func(req *nethttp.Request) (*url.URL, error) {
		result, err := proxyFunc(req.URL)
		if result == nil {
			log.Debug().Str("host", req.URL.Host).Msg("proxy bypass (direct connection)")
		} else {
			log.Debug().Str("host", req.URL.Host).Str("proxy", result.Host).Msg("proxied")
		}
		return result, err
	}
}

// NeedsProxyPassword returns true if the proxy configuration requires a password
// but one has not been provided. Used by the CLI to decide whether to prompt.
func NeedsProxyPassword(s *config.Settings) bool {
	mode := config.NormalizeProxyMode(s.ProxyMode)
	if mode != "basic" && mode != "ntlm" {
		return false
	}
	return s.ProxyUser != "" && s.ProxyPassword == ""
}

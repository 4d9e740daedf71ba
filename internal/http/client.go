// Package http builds the HTTP clients used to reach the Apigee management API.
package http

import (
	"context"
	"fmt"
	nethttp "net/http"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/bellycard/apigee-cli/internal/config"
	"github.com/bellycard/apigee-cli/internal/logging"
)

// leveledLogger implements the retryablehttp.LeveledLogger interface on top of zerolog.
type leveledLogger struct {
	logger *logging.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	withFields(l.logger.Error(), keysAndValues).Msg(msg)
}

// Info and Debug go to trace; the API client logs one debug line per call itself.
func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	withFields(l.logger.Trace(), keysAndValues).Msg(msg)
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	withFields(l.logger.Trace(), keysAndValues).Msg(msg)
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	withFields(l.logger.Warn(), keysAndValues).Msg(msg)
}

func withFields(ev *zerolog.Event, keysAndValues []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		ev = ev.Interface(fmt.Sprint(keysAndValues[i]), keysAndValues[i+1])
	}
	return ev
}

// neverRetry surfaces every outcome to the caller after the first attempt.
func neverRetry(ctx context.Context, _ *nethttp.Response, _ error) (bool, error) {
	return false, ctx.Err()
}

// NewAPIClient returns the client used for management API calls.
//
// The proxy-aware client from ConfigureHTTPClient is wrapped by retryablehttp for its
// leveled logger only: RetryMax is zero and CheckRetry never retries, so every
// call is issued exactly once and any failure (transport error or status code) reaches
// the caller untouched.
func NewAPIClient(s *config.Settings, logger *logging.Logger) (*nethttp.Client, error) {
	httpClient, err := ConfigureHTTPClient(s)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = httpClient
	rc.RetryMax = 0
	rc.CheckRetry = neverRetry
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = &leveledLogger{logger: logger}

	client := rc.StandardClient()
	client.Timeout = httpClient.Timeout
	return client, nil
}

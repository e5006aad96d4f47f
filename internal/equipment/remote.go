package equipment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go"
	"golang.org/x/time/rate"
)

// RemoteProvider queries an equipment spec service over HTTP. Requests are
// rate limited and retried on server errors; on any final failure it falls
// back to the static tables so analysis never blocks on the network.
type RemoteProvider struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	fallback *StaticProvider
}

func NewRemoteProvider(endpoint string, fallback *StaticProvider) *RemoteProvider {
	return &RemoteProvider{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(1*time.Second), 1),
		fallback: fallback,
	}
}

type httpStatusError struct {
	code int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("spec service returned status %d", e.code)
}

func (p *RemoteProvider) Console(ctx context.Context, name string) (ConsoleProfile, error) {
	var profile ConsoleProfile
	if err := p.fetch(ctx, "consoles", name, &profile); err != nil {
		return p.fallback.Console(ctx, name)
	}
	profile.Known = true
	return profile, nil
}

func (p *RemoteProvider) PA(ctx context.Context, name string) (PAProfile, error) {
	var profile PAProfile
	if err := p.fetch(ctx, "pa-systems", name, &profile); err != nil {
		return p.fallback.PA(ctx, name)
	}
	profile.Known = true
	return profile, nil
}

func (p *RemoteProvider) fetch(ctx context.Context, kind, name string, out interface{}) error {
	if p.endpoint == "" || normalize(name) == "" {
		return fmt.Errorf("no spec service configured")
	}

	query := url.Values{"q": {name}}
	target := fmt.Sprintf("%s/%s?%s", p.endpoint, kind, query.Encode())

	return retry.Do(
		func() error {
			if err := p.limiter.Wait(ctx); err != nil {
				return err
			}
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
			if err != nil {
				return err
			}
			resp, err := p.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return &httpStatusError{code: resp.StatusCode}
			}
			return json.NewDecoder(resp.Body).Decode(out)
		},
		retry.Attempts(3),
		retry.RetryIf(func(err error) bool {
			if serr, ok := err.(*httpStatusError); ok {
				return serr.code/100 == 5
			}
			return false
		}),
	)
}

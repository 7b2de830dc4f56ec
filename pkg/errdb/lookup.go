// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package errdb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// LookupOutcome is delivered by LookupOnlineAsync
type LookupOutcome struct {
	Result Result
	Err    error
}

// LookupOffline finds the first record in the local snapshot whose code
// equals code exactly
func (d *Directory) LookupOffline(code string) (Result, error) {
	f, err := d.openSnapshot()
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	rec, found, err := scan(f, func(c string) bool { return c == code })
	if err != nil {
		return Result{}, err
	}

	d.log.Debug().Str("code", code).Bool("found", found).Msg("offline lookup")
	return Result{Record: rec, Code: code, Found: found, Source: Offline}, nil
}

// LookupOnline queries the directory service for code.
//
// The code is read back from the query of the request that produced the
// response. If that comes back empty (a redirect that drops the query, for
// instance) the first record in the reply is taken as the answer.
func (d *Directory) LookupOnline(ctx context.Context, code string) (Result, error) {
	if code == "" {
		return Result{}, ErrInvalidInput
	}

	u, err := url.Parse(d.serviceURL)
	if err != nil {
		return Result{}, fmt.Errorf("%w: invalid service URL: %v", ErrNetwork, err)
	}
	q := u.Query()
	q.Set(queryParam, code)
	u.RawQuery = q.Encode()

	resp, err := d.get(ctx, u.String())
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	canonical := code
	if resp.Request != nil && resp.Request.URL != nil {
		canonical = resp.Request.URL.Query().Get(queryParam)
	}

	rec, found, err := scan(resp.Body, func(c string) bool {
		return canonical == "" || c == canonical
	})
	if err != nil {
		return Result{}, err
	}

	result := Result{Record: rec, Code: canonical, Found: found, Source: Online}
	if canonical == "" {
		result.Code = code
	}

	d.log.Debug().Str("code", result.Code).Bool("found", found).Msg("online lookup")
	return result, nil
}

// LookupOnlineAsync runs LookupOnline in the background. The channel
// receives exactly one outcome and is then closed.
func (d *Directory) LookupOnlineAsync(ctx context.Context, code string) <-chan LookupOutcome {
	out := make(chan LookupOutcome, 1)
	go func() {
		defer close(out)
		result, err := d.LookupOnline(ctx, code)
		out <- LookupOutcome{Result: result, Err: err}
	}()
	return out
}

// get issues a GET and maps transport failures and non-2xx replies to
// ErrNetwork. The caller closes the body.
func (d *Directory) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: HTTP %s", ErrNetwork, resp.Status)
	}
	return resp, nil
}

package stream

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/timewasted/nhl-gamecenter/internal/providers"
)

// authorize finalizes a chosen variant URL. The variant playlist is
// fetched; when it references an encryption key, the key resource is
// fetched too and the cookies it sets are harvested into the extra
// header block playback must carry. Unencrypted content passes through
// with no extra headers.
func (r *Resolver) authorize(ctx context.Context, variantURL string) (string, url.Values, error) {
	const op = "authorize_stream"

	body, _, err := r.fetchURL(ctx, op, variantURL)
	if err != nil {
		return "", nil, err
	}

	keyURI := encryptionKeyURI(body)
	if keyURI == "" {
		return variantURL, nil, nil
	}

	_, keyResp, err := r.fetchURL(ctx, op, keyURI)
	if err != nil {
		return "", nil, err
	}

	var cookiePairs []string
	for _, c := range keyResp.Cookies() {
		cookiePairs = append(cookiePairs, c.Name+"="+c.Value)
	}
	_, qs := splitQuery(variantURL)
	cookiePairs = append(cookiePairs, "nlqptid="+qs)

	headers := url.Values{}
	headers.Set("Cookie", strings.Join(cookiePairs, "; "))
	headers.Set("User-Agent", r.userAgent())
	return variantURL, headers, nil
}

// withHeaderSuffix appends the pipe-delimited header block convention
// the player consumes.
func withHeaderSuffix(streamURL string, headers url.Values) string {
	if len(headers) == 0 {
		return streamURL
	}
	return streamURL + "|" + headers.Encode()
}

// fetchURL GETs a URL through the session client, returning the body and
// the response for cookie inspection.
func (r *Resolver) fetchURL(ctx context.Context, op, rawURL string) ([]byte, *http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, &providers.NetworkError{Op: op, Err: err}
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, nil, &providers.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, nil, &providers.NetworkError{Op: op, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &providers.NetworkError{Op: op, Err: err}
	}
	return body, resp, nil
}

package composure

import (
	"context"
	"encoding/base64"
)

// HeaderParams configures [SetHeader]. Tags name the arguments accepted
// through [WithArgs].
type HeaderParams struct {
	Name  string `mapstructure:"name"`
	Value string `mapstructure:"value"`
	// Overwrite replaces a value already present on the request.
	Overwrite bool `mapstructure:"overwrite"`
}

// SetHeader returns a feature setting a header on every outgoing request,
// replacing any value already there.
func SetHeader(name, value string) Feature {
	return Named("header:"+name, Parameterized(HeaderStep, HeaderParams{
		Name:      name,
		Value:     value,
		Overwrite: true,
	}))
}

// HeaderStep is the composition function behind [SetHeader].
func HeaderStep(_ *Client, next Step, params HeaderParams) Step {
	return func(ctx context.Context, req *Request) (*Response, error) {
		if req.Headers == nil {
			req.Headers = make(map[string]string, 1)
		}

		if _, present := req.Headers[params.Name]; params.Overwrite || !present {
			req.Headers[params.Name] = params.Value
		}

		return next(ctx, req)
	}
}

// BearerToken returns a feature sending "Authorization: Bearer <token>".
func BearerToken(token string) Feature {
	return Named("bearer_auth", Parameterized(HeaderStep, HeaderParams{
		Name:      "Authorization",
		Value:     "Bearer " + token,
		Overwrite: true,
	}))
}

// BasicAuth returns a feature sending HTTP basic credentials.
func BasicAuth(username, password string) Feature {
	creds := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))

	return Named("basic_auth", Parameterized(HeaderStep, HeaderParams{
		Name:      "Authorization",
		Value:     "Basic " + creds,
		Overwrite: true,
	}))
}

// APIKey returns a feature sending key in header, "X-API-Key" when header
// is empty.
func APIKey(key, header string) Feature {
	if header == "" {
		header = "X-API-Key"
	}

	return Named("api_key", Parameterized(HeaderStep, HeaderParams{
		Name:      header,
		Value:     key,
		Overwrite: true,
	}))
}

package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jellydator/ttlcache/v3"
)

// Informational reads against the service. Responses are cached with a
// short TTL so editor UI polling does not hammer the backend.

// Healthy reports service availability. The result is cached for
// healthTTL; pass force to bypass the cache after a connectivity
// prompt.
func (d *Dispatcher) Healthy(ctx context.Context, force bool) bool {
	const key = "health"
	if !force {
		if item := d.health.Get(key); item != nil {
			return item.Value()
		}
	}
	req, err := http.NewRequestWithContext(ctx, "GET", d.baseURL+healthPath, nil)
	if err != nil {
		return false
	}
	resp, err := d.client.Do(req)
	if err != nil {
		d.health.Set(key, false, ttlcache.DefaultTTL)
		return false
	}
	resp.Body.Close()
	ok := resp.StatusCode >= 200 && resp.StatusCode <= 299
	d.health.Set(key, ok, ttlcache.DefaultTTL)
	return ok
}

// Models returns the service's model listing as raw JSON text.
func (d *Dispatcher) Models(ctx context.Context) (string, error) {
	return d.cachedGet(ctx, "models", d.baseURL+modelsPath)
}

// LanguageConfig returns the service-side configuration for a language
// as raw JSON text.
func (d *Dispatcher) LanguageConfig(ctx context.Context, language string) (string, error) {
	return d.cachedGet(ctx, "langconfig:"+language, d.baseURL+langConfigPath+language)
}

func (d *Dispatcher) cachedGet(ctx context.Context, key, url string) (string, error) {
	if item := d.infoText.Get(key); item != nil {
		return item.Value(), nil
	}
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("service returned %s", statusDetail(resp.StatusCode))
	}
	text := string(body)
	d.infoText.Set(key, text, ttlcache.DefaultTTL)
	return text, nil
}

// ClearRemoteCache asks the service to drop its own cached responses,
// optionally scoped to one language. Local info caches are invalidated
// alongside.
func (d *Dispatcher) ClearRemoteCache(ctx context.Context, language string) error {
	payload := map[string]string{}
	if language != "" {
		payload["language"] = language
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", d.baseURL+cacheClearPath, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("cache clear rejected with %s", statusDetail(resp.StatusCode))
	}
	d.infoText.DeleteAll()
	return nil
}

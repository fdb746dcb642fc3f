// Package client is the consumer-side counterpart of the vehicle API:
// an HTTP client plus the list-synchronization and optimistic-mutation
// controllers the dashboard logic is built on. The original browser
// implementation hung this state off React hooks and a global event
// target; here the same contracts are explicit types: a Controller
// owning the synced list, a Mutator owning apply/confirm/rollback, and a
// Bus as the typed observer registry replacing the event target.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dararith/vehicle-inventory/backend/internal/domain"
)

// API is the HTTP client for the vehicle inventory backend.
type API struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewAPI constructs an API client. token is the session token sent as an
// Authorization bearer; http may be nil for http.DefaultClient.
func NewAPI(baseURL, token string, hc *http.Client) *API {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &API{baseURL: baseURL, token: token, http: hc}
}

// ListOptions mirrors the list endpoint's response projections.
type ListOptions struct {
	Lite    bool
	MaxRows int
}

// apiEnvelope is the server's uniform response shape.
type apiEnvelope struct {
	OK    bool                `json:"ok"`
	Data  json.RawMessage     `json:"data"`
	Meta  *domain.VehicleMeta `json:"meta"`
	Error string              `json:"error"`
}

// List fetches the vehicle list and its full-dataset aggregates.
func (a *API) List(ctx context.Context, opts ListOptions) ([]domain.Vehicle, domain.VehicleMeta, error) {
	q := url.Values{}
	if opts.Lite {
		q.Set("lite", "1")
	}
	if opts.MaxRows > 0 {
		q.Set("maxRows", strconv.Itoa(opts.MaxRows))
	}
	target := a.baseURL + "/api/vehicles"
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	env, err := a.do(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, domain.VehicleMeta{}, err
	}

	var vehicles []domain.Vehicle
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &vehicles); err != nil {
			return nil, domain.VehicleMeta{}, fmt.Errorf("client.API.List: malformed data: %w", err)
		}
	}
	var meta domain.VehicleMeta
	if env.Meta != nil {
		meta = *env.Meta
	}
	return vehicles, meta, nil
}

// Get fetches one vehicle by ID.
func (a *API) Get(ctx context.Context, id string) (domain.Vehicle, error) {
	env, err := a.do(ctx, http.MethodGet, a.baseURL+"/api/vehicles/"+url.PathEscape(id), nil)
	if err != nil {
		return domain.Vehicle{}, err
	}
	var v domain.Vehicle
	if err := json.Unmarshal(env.Data, &v); err != nil {
		return domain.Vehicle{}, fmt.Errorf("client.API.Get: malformed data: %w", err)
	}
	return v, nil
}

// Create posts a new vehicle.
func (a *API) Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	env, err := a.do(ctx, http.MethodPost, a.baseURL+"/api/vehicles", v)
	if err != nil {
		return domain.Vehicle{}, err
	}
	var created domain.Vehicle
	if err := json.Unmarshal(env.Data, &created); err != nil {
		return domain.Vehicle{}, fmt.Errorf("client.API.Create: malformed data: %w", err)
	}
	return created, nil
}

// Update puts a full vehicle record over the given ID.
func (a *API) Update(ctx context.Context, id string, v domain.Vehicle) (domain.Vehicle, error) {
	env, err := a.do(ctx, http.MethodPut, a.baseURL+"/api/vehicles/"+url.PathEscape(id), v)
	if err != nil {
		return domain.Vehicle{}, err
	}
	var updated domain.Vehicle
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		return domain.Vehicle{}, fmt.Errorf("client.API.Update: malformed data: %w", err)
	}
	return updated, nil
}

// Delete removes a vehicle, passing along whatever image reference the
// caller still holds so the server can garbage-collect the Drive file.
func (a *API) Delete(ctx context.Context, id, imageFileID, imageURL string) error {
	body := map[string]string{}
	if imageFileID != "" {
		body["imageFileId"] = imageFileID
	}
	if imageURL != "" {
		body["imageUrl"] = imageURL
	}
	_, err := a.do(ctx, http.MethodDelete, a.baseURL+"/api/vehicles/"+url.PathEscape(id), body)
	return err
}

func (a *API) do(ctx context.Context, method, target string, body any) (apiEnvelope, error) {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return apiEnvelope{}, fmt.Errorf("client.API: marshal body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return apiEnvelope{}, fmt.Errorf("client.API: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return apiEnvelope{}, fmt.Errorf("client.API: %w", err)
	}
	defer resp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return apiEnvelope{}, fmt.Errorf("client.API: server returned HTTP %d with a non-JSON body", resp.StatusCode)
	}
	if !env.OK {
		msg := env.Error
		if msg == "" {
			msg = fmt.Sprintf("server returned HTTP %d", resp.StatusCode)
		}
		return apiEnvelope{}, fmt.Errorf("client.API: %s", msg)
	}
	return env, nil
}

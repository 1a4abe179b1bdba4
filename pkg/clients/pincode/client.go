package pincode

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrNotFound indicates the service returned no post office for the pincode.
var ErrNotFound = errors.New("pincode not found")

// ErrInvalidPincode indicates the input is not a six digit pincode.
var ErrInvalidPincode = errors.New("pincode must be 6 digits")

// Client resolves Indian postal pincodes to locality details.
type Client interface {
	Lookup(ctx context.Context, pin string) (*PostOffice, error)
}

// PostOffice is the locality attached to a pincode.
type PostOffice struct {
	Name     string `json:"Name"`
	District string `json:"District"`
	State    string `json:"State"`
	Pincode  string `json:"Pincode"`
}

// lookupResponse mirrors one element of the service's response array.
type lookupResponse struct {
	Message    string       `json:"Message"`
	Status     string       `json:"Status"`
	PostOffice []PostOffice `json:"PostOffice"`
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a pincode client against baseURL, for example
// https://api.postalpincode.in.
func NewClient(baseURL string) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(10 * time.Second)

	return &APIClient{httpClient: restyClient}
}

// Lookup returns the first post office registered for pin.
func (c *APIClient) Lookup(ctx context.Context, pin string) (*PostOffice, error) {
	pin = strings.TrimSpace(pin)
	if !valid(pin) {
		return nil, ErrInvalidPincode
	}

	var result []lookupResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&result).
		Get(fmt.Sprintf("/pincode/%s", pin))
	if err != nil {
		return nil, fmt.Errorf("lookup pincode %s: %w", pin, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("pincode api error: status=%d", resp.StatusCode())
	}

	if len(result) == 0 || result[0].Status != "Success" || len(result[0].PostOffice) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, pin)
	}

	office := result[0].PostOffice[0]
	if office.Pincode == "" {
		office.Pincode = pin
	}
	return &office, nil
}

func valid(pin string) bool {
	if len(pin) != 6 {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
